package delivery

import (
	"io"
	"net/http"
	"strconv"

	"localsync-backend/internal/delta/usecase"

	"github.com/gin-gonic/gin"
)

// DeltaHandler exposes the streaming delta endpoints
type DeltaHandler struct {
	deltaUsecase usecase.DeltaUsecase
}

// NewDeltaHandler creates a new DeltaHandler
func NewDeltaHandler(deltaUsecase usecase.DeltaUsecase) *DeltaHandler {
	return &DeltaHandler{deltaUsecase: deltaUsecase}
}

// Streaming serves the long-lived newline-delimited JSON delta stream
// GET /api/delta/streaming?cursor=42
func (h *DeltaHandler) Streaming(c *gin.Context) {
	accountID := c.GetString("accountID")

	var cursor *uint64
	if raw := c.Query("cursor"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cursor"})
			return
		}
		cursor = &parsed
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	// The request context is cancelled when the client disconnects,
	// which tears down the subscription's listener and ticker.
	lines := h.deltaUsecase.Subscribe(c.Request.Context(), accountID, cursor)

	c.Stream(func(w io.Writer) bool {
		line, ok := <-lines
		if !ok {
			return false
		}
		_, err := w.Write(line)
		return err == nil
	})
}

// LatestCursor returns the account's highest transaction id
// POST /api/delta/latest_cursor
func (h *DeltaHandler) LatestCursor(c *gin.Context) {
	accountID := c.GetString("accountID")

	cursor, err := h.deltaUsecase.LatestCursor(accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cursor": cursor})
}
