package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"localsync-backend/internal/mail/usecase"

	"github.com/gin-gonic/gin"
)

// MailHandler handles message ingestion and thread requests
type MailHandler struct {
	mailUsecase usecase.MailUsecase
}

// NewMailHandler creates a new MailHandler
func NewMailHandler(mailUsecase usecase.MailUsecase) *MailHandler {
	return &MailHandler{mailUsecase: mailUsecase}
}

// IngestMessage accepts a raw RFC 822 message body and runs it through
// thread matching
// POST /api/messages?folder=INBOX&uid=4321
func (h *MailHandler) IngestMessage(c *gin.Context) {
	accountID := c.GetString("accountID")

	folder := c.DefaultQuery("folder", "INBOX")
	uid64, err := strconv.ParseUint(c.DefaultQuery("uid", "0"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uid"})
		return
	}

	message, err := h.mailUsecase.IngestMessage(accountID, c.Request.Body, folder, uint32(uid64))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message_id": message.ID,
		"thread_id":  message.ThreadID,
	})
}

// GetThread returns a thread with its messages
// GET /api/threads/:id
func (h *MailHandler) GetThread(c *gin.Context) {
	accountID := c.GetString("accountID")
	threadID := c.Param("id")

	thread, err := h.mailUsecase.GetThread(accountID, threadID)
	if err != nil {
		if errors.Is(err, usecase.ErrThreadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "thread not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, thread)
}

// CreateLabelRequest represents the request body for creating a label
type CreateLabelRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateLabel creates a label for the account
// POST /api/labels
func (h *MailHandler) CreateLabel(c *gin.Context) {
	accountID := c.GetString("accountID")

	var req CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	label, err := h.mailUsecase.CreateLabel(accountID, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, label)
}
