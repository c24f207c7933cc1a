package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesellers/backend/internal/sales"
)

func TestWebSocketHandler_AskRequest(t *testing.T) {
	h := NewWebSocketHandler(nil, 5, 50, 20)

	req, err := h.askRequest(wsRequest{Type: "query", Content: "vendas no sul", ChatID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, 5, req.K)
	assert.Equal(t, "c1", req.ChatID)

	req, err = h.askRequest(wsRequest{Content: "vendas", K: 500})
	require.NoError(t, err)
	assert.Equal(t, 50, req.K)

	req, err = h.askRequest(wsRequest{Content: "vendas", K: -1})
	require.NoError(t, err)
	assert.Equal(t, -1, req.K)

	for _, content := range []string{"", "   ", strings.Repeat("a", 21), "<script>alert(1)</script>", "onerror=x"} {
		_, err := h.askRequest(wsRequest{Content: content})
		assert.ErrorIs(t, err, sales.ErrInvalidArgument, content)
	}
}

func TestClampK(t *testing.T) {
	assert.Equal(t, 10, clampK(10, 50))
	assert.Equal(t, 50, clampK(500, 50))
	assert.Equal(t, 500, clampK(500, 0))
	assert.Equal(t, 0, clampK(0, 50))
}
