package delivery

import (
	"errors"
	"net/http"

	"localsync-backend/internal/account/usecase"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles account registration requests
type AccountHandler struct {
	accountUsecase usecase.AccountUsecase
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountUsecase usecase.AccountUsecase) *AccountHandler {
	return &AccountHandler{accountUsecase: accountUsecase}
}

// RegisterRequest represents the request body for registering an account
type RegisterRequest struct {
	EmailAddress string `json:"email_address" binding:"required,email"`
	Provider     string `json:"provider"`
}

// Register creates a new account and returns its API token
// POST /api/accounts
func (h *AccountHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, token, err := h.accountUsecase.Register(req.EmailAddress, req.Provider)
	if err != nil {
		if errors.Is(err, usecase.ErrAccountExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"account": account,
		"token":   token,
	})
}
