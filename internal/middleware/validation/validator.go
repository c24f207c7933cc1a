package validation

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var xssPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

type Config struct {
	MaxQueryLength      int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// textField maps a validated route to the JSON field holding its free text.
var textField = map[string]string{
	"/api/v1/query":   "message",
	"/api/v1/context": "query",
}

// Middleware rejects malformed question bodies before they reach handlers:
// the text field must pass CheckText and k, when present, must be a positive
// whole number. Large k values are left to the handlers to clamp.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxQueryLength <= 0 {
		cfg.MaxQueryLength = 2000
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{fiber.MIMEApplicationJSON}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		contentType := c.Get(fiber.HeaderContentType)
		if contentType != "" && !allowedType(contentType, cfg.AllowedContentTypes) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"error": "Unsupported content type",
			})
		}

		field, ok := textField[strings.TrimSuffix(c.Path(), "/")]
		if !ok {
			return c.Next()
		}

		var req map[string]interface{}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON format",
			})
		}

		text, _ := req[field].(string)
		if err := CheckText(text, cfg.MaxQueryLength); err != nil {
			if errors.Is(err, ErrSuspiciousText) {
				cfg.Logger.Warn("Potential XSS attempt",
					zap.String("ip", c.IP()),
					zap.String("path", c.Path()),
				)
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": field + ": " + err.Error(),
			})
		}

		if raw, present := req["k"]; present && raw != nil {
			k, ok := raw.(float64)
			if !ok || k != math.Trunc(k) || k < 1 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "k must be a positive integer",
				})
			}
		}

		return c.Next()
	}
}

var (
	ErrEmptyText      = errors.New("is required and must be a non-empty string")
	ErrTextTooLong    = errors.New("exceeds maximum length")
	ErrSuspiciousText = errors.New("contains disallowed content")
)

// CheckText applies the free-text rules shared by the HTTP and websocket
// question paths.
func CheckText(text string, maxLength int) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if utf8.RuneCountInString(text) > maxLength {
		return ErrTextTooLong
	}
	if xssPattern.MatchString(text) {
		return ErrSuspiciousText
	}
	return nil
}

func allowedType(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}
