package api

import (
	"net/http"

	accountDelivery "localsync-backend/internal/account/delivery"
	accountUsecase "localsync-backend/internal/account/usecase"
	deltaDelivery "localsync-backend/internal/delta/delivery"
	mailDelivery "localsync-backend/internal/mail/delivery"
	syncbackDelivery "localsync-backend/internal/syncback/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, accountUc accountUsecase.AccountUsecase, accountHandler *accountDelivery.AccountHandler, mailHandler *mailDelivery.MailHandler, deltaHandler *deltaDelivery.DeltaHandler, syncbackHandler *syncbackDelivery.SyncbackHandler) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Account registration (no auth required)
		api.POST("/accounts", accountHandler.Register)

		// Delta routes (protected)
		delta := api.Group("/delta")
		delta.Use(accountDelivery.AuthMiddleware(accountUc))
		{
			delta.GET("/streaming", deltaHandler.Streaming)
			delta.POST("/latest_cursor", deltaHandler.LatestCursor)
		}

		// Syncback routes (protected)
		syncback := api.Group("/syncback")
		syncback.Use(accountDelivery.AuthMiddleware(accountUc))
		{
			syncback.POST("", syncbackHandler.Enqueue)
			syncback.GET("/:id", syncbackHandler.GetRequest)
		}

		// Mail routes (protected)
		mail := api.Group("")
		mail.Use(accountDelivery.AuthMiddleware(accountUc))
		{
			mail.POST("/messages", mailHandler.IngestMessage)
			mail.GET("/threads/:id", mailHandler.GetThread)
			mail.POST("/labels", mailHandler.CreateLabel)
		}
	}
}
