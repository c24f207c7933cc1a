package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/codesellers/backend/internal/middleware/validation"
	"github.com/codesellers/backend/internal/query"
	"github.com/codesellers/backend/internal/sales"
	"github.com/codesellers/backend/internal/storage/sqlite"
	"github.com/codesellers/backend/pkg/logger"
)

type WebSocketHandler struct {
	queryEngine    *query.Engine
	defaultK       int
	maxK           int
	maxQueryLength int
}

func NewWebSocketHandler(queryEngine *query.Engine, defaultK, maxK, maxQueryLength int) *WebSocketHandler {
	if maxQueryLength <= 0 {
		maxQueryLength = 2000
	}
	return &WebSocketHandler{
		queryEngine:    queryEngine,
		defaultK:       defaultK,
		maxK:           maxK,
		maxQueryLength: maxQueryLength,
	}
}

type wsRequest struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	ChatID  string `json:"chat_id"`
	K       int    `json:"k"`
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg wsRequest
		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "query" {
			continue
		}

		if err := h.streamResponse(c, msg); err != nil {
			logger.Error("Failed to stream response", zap.Error(err))
			h.sendError(c, clientMessage(err))
		}
	}
}

// askRequest applies the same text rules as the HTTP question routes and
// resolves k against the configured default and cap.
func (h *WebSocketHandler) askRequest(msg wsRequest) (query.AskRequest, error) {
	if err := validation.CheckText(msg.Content, h.maxQueryLength); err != nil {
		return query.AskRequest{}, fmt.Errorf("%w: content %v", sales.ErrInvalidArgument, err)
	}

	k := msg.K
	if k == 0 {
		k = h.defaultK
	}

	return query.AskRequest{
		ChatID:  msg.ChatID,
		Message: msg.Content,
		K:       clampK(k, h.maxK),
	}, nil
}

func (h *WebSocketHandler) streamResponse(c *websocket.Conn, msg wsRequest) error {
	req, err := h.askRequest(msg)
	if err != nil {
		return err
	}

	if err := h.sendChunk(c, "status", "Processing query..."); err != nil {
		return err
	}

	response, err := h.queryEngine.AskStream(context.Background(), req, func(delta string) error {
		return h.sendChunk(c, "chunk", delta)
	})
	if err != nil {
		return err
	}

	return c.WriteJSON(map[string]interface{}{
		"type":       "complete",
		"message_id": response.ID,
		"chat_id":    response.ChatID,
		"sources":    response.Sources,
		"cached":     response.Cached,
		"latency_ms": response.LatencyMS,
	})
}

func (h *WebSocketHandler) sendChunk(c *websocket.Conn, msgType, content string) error {
	return c.WriteJSON(map[string]interface{}{
		"type":    msgType,
		"content": content,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}

func clientMessage(err error) string {
	switch {
	case errors.Is(err, sales.ErrInvalidArgument), errors.Is(err, sqlite.ErrChatNotFound):
		return err.Error()
	default:
		return "Failed to process query"
	}
}
