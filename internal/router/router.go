package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/abdxl-cloud/RuqyaHub/internal/handler"
	"github.com/abdxl-cloud/RuqyaHub/internal/middleware"
	"github.com/abdxl-cloud/RuqyaHub/internal/service"
	"github.com/abdxl-cloud/RuqyaHub/internal/ws"
)

// SetupRouter builds the HTTP surface: REST facade, auth endpoints and
// the realtime upgrade route.
func SetupRouter(h *handler.Handlers, svc *service.Services, gateway *ws.Gateway, rdb *redis.Client, log zerolog.Logger) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RecoveryMiddleware(log))
	r.Use(middleware.LoggingMiddleware(log))
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	guestLimit := middleware.RateLimit(rdb, &svc.Config.RateLimit, log)
	requireAuth := middleware.RequireAuth(svc)
	requireAdmin := middleware.RequireAdmin()

	v1 := r.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", h.Auth.Login)
			authGroup.GET("/me", requireAuth, h.Auth.Me)
		}

		chatGroup := v1.Group("/chat")
		{
			chatGroup.POST("/sessions", guestLimit, h.Chat.OpenSession)
			chatGroup.GET("/sessions", requireAuth, requireAdmin, h.Chat.ListSessions)
			chatGroup.GET("/sessions/:id", h.Chat.GetSession)
			chatGroup.GET("/sessions/:id/messages", h.Chat.ListMessages)
			chatGroup.POST("/sessions/:id/messages", guestLimit, h.Chat.PostMessage)
			chatGroup.GET("/sessions/:id/presence", h.Chat.Presence)
			chatGroup.PATCH("/sessions/:id/close", requireAuth, requireAdmin, h.Chat.CloseSession)
			chatGroup.PATCH("/sessions/:id/mark-read", requireAuth, requireAdmin, h.Chat.MarkRead)
			chatGroup.GET("/unread-count", requireAuth, requireAdmin, h.Chat.UnreadCount)

			// Token travels as a query parameter: browsers cannot set
			// headers on a websocket handshake.
			chatGroup.GET("/ws/:id", gateway.Handle)
		}
	}

	return r
}
