package api

import (
	accountDelivery "localsync-backend/internal/account/delivery"
	accountUsecasePkg "localsync-backend/internal/account/usecase"
	deltaDelivery "localsync-backend/internal/delta/delivery"
	deltaUsecasePkg "localsync-backend/internal/delta/usecase"
	mailDelivery "localsync-backend/internal/mail/delivery"
	mailUsecasePkg "localsync-backend/internal/mail/usecase"
	syncbackDelivery "localsync-backend/internal/syncback/delivery"
	syncbackUsecasePkg "localsync-backend/internal/syncback/usecase"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	accountUsecase accountUsecasePkg.AccountUsecase

	accountHandler  *accountDelivery.AccountHandler
	mailHandler     *mailDelivery.MailHandler
	deltaHandler    *deltaDelivery.DeltaHandler
	syncbackHandler *syncbackDelivery.SyncbackHandler
}

func NewHandler(accountUc accountUsecasePkg.AccountUsecase, mailUc mailUsecasePkg.MailUsecase, deltaUc deltaUsecasePkg.DeltaUsecase, syncbackUc syncbackUsecasePkg.SyncbackUsecase) *Handler {
	return &Handler{
		accountUsecase:  accountUc,
		accountHandler:  accountDelivery.NewAccountHandler(accountUc),
		mailHandler:     mailDelivery.NewMailHandler(mailUc),
		deltaHandler:    deltaDelivery.NewDeltaHandler(deltaUc),
		syncbackHandler: syncbackDelivery.NewSyncbackHandler(syncbackUc),
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Setup routes
	SetupRoutes(r, h.accountUsecase, h.accountHandler, h.mailHandler, h.deltaHandler, h.syncbackHandler)

	return r.Run(addr)
}
