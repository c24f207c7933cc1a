// Package api assembles the HTTP surface: middleware chain, routes and the
// websocket endpoint.
package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/codesellers/backend/internal/api/handlers"
	"github.com/codesellers/backend/internal/dataset"
	"github.com/codesellers/backend/internal/metrics"
	"github.com/codesellers/backend/internal/middleware/ratelimit"
	"github.com/codesellers/backend/internal/middleware/security"
	"github.com/codesellers/backend/internal/middleware/validation"
	"github.com/codesellers/backend/internal/query"
	"github.com/codesellers/backend/pkg/config"
	"github.com/codesellers/backend/pkg/logger"
)

type Deps struct {
	Engine *query.Engine
	Store  *dataset.Store
	Loader *dataset.Loader
	Chats  handlers.ChatRepository
	// ReadyChecks must all pass, in addition to a non-empty corpus, for
	// /ready to report ready.
	ReadyChecks map[string]func() error
}

type Server struct {
	App         *fiber.App
	rateLimiter *ratelimit.RateLimiter
}

func NewServer(server config.ServerConfig, ranking config.RankingConfig, deps Deps) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(server.WriteTimeout) * time.Second,
		BodyLimit:    server.BodyLimit,
	})

	rl := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: server.RateLimitPerMinute,
		Logger:               logger.GetLogger(),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(server.AllowedOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: server.AllowedOrigins,
		IsDevelopment:  server.IsDevelopment,
	}))

	salesHandler := handlers.NewSalesHandler(deps.Engine)
	queryHandler := handlers.NewQueryHandler(deps.Engine, ranking.DefaultK, ranking.MaxK)
	chatHandler := handlers.NewChatHandler(deps.Chats)
	datasetHandler := handlers.NewDatasetHandler(deps.Store, deps.Loader)
	wsHandler := handlers.NewWebSocketHandler(deps.Engine, ranking.DefaultK, ranking.MaxK, server.MaxQueryLength)

	api := app.Group("/api/v1")
	api.Use(rl.Middleware())
	api.Use(validation.Middleware(validation.Config{
		MaxQueryLength: server.MaxQueryLength,
		Logger:         logger.GetLogger(),
	}))

	api.Get("/regions", salesHandler.GetRegions)
	api.Get("/sales/:region", salesHandler.GetRegionSales)

	api.Post("/context", queryHandler.HandleContext)
	api.Post("/query", queryHandler.HandleQuery)

	api.Get("/chats", chatHandler.ListChats)
	api.Get("/chats/:id/messages", chatHandler.ListMessages)
	api.Delete("/chats/:id", chatHandler.DeleteChat)

	api.Post("/dataset/reload", datasetHandler.Reload)
	api.Get("/dataset/stats", datasetHandler.Stats)
	api.Get("/dataset/skipped", datasetHandler.Skipped)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		failing := fiber.Map{}
		if deps.Store.Snapshot().Len() == 0 {
			failing["dataset"] = "no records loaded"
		}
		for name, check := range deps.ReadyChecks {
			if err := check(); err != nil {
				failing[name] = err.Error()
			}
		}
		if len(failing) > 0 {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"checks": failing,
			})
		}
		return c.JSON(fiber.Map{"status": "ready"})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(wsHandler.HandleConnection))

	return &Server{App: app, rateLimiter: rl}
}

func (s *Server) Listen(addr string) error {
	return s.App.Listen(addr)
}

func (s *Server) Shutdown() error {
	s.rateLimiter.Stop()
	return s.App.Shutdown()
}
