package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/codesellers/backend/internal/api"
	"github.com/codesellers/backend/internal/cache/redis"
	"github.com/codesellers/backend/internal/dataset"
	"github.com/codesellers/backend/internal/llm"
	"github.com/codesellers/backend/internal/metrics"
	"github.com/codesellers/backend/internal/query"
	"github.com/codesellers/backend/internal/ranking"
	"github.com/codesellers/backend/internal/storage/sqlite"
	"github.com/codesellers/backend/pkg/config"
	appLogger "github.com/codesellers/backend/pkg/logger"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting regional sales API server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	store := dataset.NewStore(dataset.Options{Latin1Fallback: cfg.Dataset.Latin1Fallback})
	loader := dataset.NewLoader(store, cfg.Dataset.Path, sqliteClient)

	var answerCache query.AnswerCache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, answer cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			answerCache = redisClient
			loader.OnLoad(func(ctx context.Context, c *dataset.Corpus) {
				if err := redisClient.InvalidateAnswers(ctx); err != nil {
					appLogger.Warn("Failed to invalidate cached answers", zap.Error(err))
				}
			})
		}
	}

	if _, err := loader.Reload(context.Background()); err != nil {
		appLogger.Warn("Initial dataset load failed, serving an empty dataset", zap.Error(err))
	}

	llmClient := llm.NewClient(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
	})

	ranker := ranking.NewRanker(ranking.Options{
		MaxFeatures: cfg.Ranking.MaxFeatures,
		MaxNGram:    cfg.Ranking.MaxNGram,
		Stemming:    cfg.Ranking.Stemming,
	})

	queryEngine := query.NewEngine(store, ranker, llmClient, sqliteClient, answerCache, query.Options{
		DefaultK: cfg.Ranking.DefaultK,
		CacheTTL: time.Duration(cfg.Redis.TTLSec) * time.Second,
	})

	server := api.NewServer(cfg.Server, cfg.Ranking, api.Deps{
		Engine: queryEngine,
		Store:  store,
		Loader: loader,
		Chats:  sqliteClient,
		ReadyChecks: map[string]func() error{
			"sqlite": sqliteClient.Ping,
		},
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := server.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	server.Shutdown()
	appLogger.Info("Server stopped")
}
