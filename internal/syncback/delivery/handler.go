package delivery

import (
	"errors"
	"net/http"

	"localsync-backend/internal/syncback/domain"
	"localsync-backend/internal/syncback/usecase"

	"github.com/gin-gonic/gin"
)

// SyncbackHandler handles syncback request submission and status queries
type SyncbackHandler struct {
	syncbackUsecase usecase.SyncbackUsecase
}

// NewSyncbackHandler creates a new SyncbackHandler
func NewSyncbackHandler(syncbackUsecase usecase.SyncbackUsecase) *SyncbackHandler {
	return &SyncbackHandler{syncbackUsecase: syncbackUsecase}
}

// EnqueueRequest represents the request body for queueing a syncback task
type EnqueueRequest struct {
	Type  string         `json:"type" binding:"required"`
	Props domain.JSONMap `json:"props"`
}

// Enqueue queues a local-to-remote mutation for execution
// POST /api/syncback
func (h *SyncbackHandler) Enqueue(c *gin.Context) {
	accountID := c.GetString("accountID")

	var req EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.syncbackUsecase.Enqueue(accountID, req.Type, req.Props)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownTaskType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, request)
}

// GetRequest returns the current status of a syncback request
// GET /api/syncback/:id
func (h *SyncbackHandler) GetRequest(c *gin.Context) {
	accountID := c.GetString("accountID")
	id := c.Param("id")

	request, err := h.syncbackUsecase.GetRequest(accountID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if request == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "syncback request not found"})
		return
	}

	c.JSON(http.StatusOK, request)
}
