package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/goaccelovate/ai-chat-backend/internal/common"
	"github.com/goaccelovate/ai-chat-backend/internal/config"
	"github.com/goaccelovate/ai-chat-backend/internal/httpapi/handlers"
	"github.com/goaccelovate/ai-chat-backend/internal/httpapi/middleware"
	"github.com/goaccelovate/ai-chat-backend/internal/store/rabbitmq"
	"github.com/goaccelovate/ai-chat-backend/internal/store/redisstore"
)

func NewRouter(db *gorm.DB, cfg config.Config, rds *redisstore.Store, events *rabbitmq.Publisher) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(db, cfg, events)

	r.GET("/ping", h.Ping)

	// Visitor-facing widget API, guarded by the embed key.
	widget := r.Group("/widget")
	widget.Use(middleware.WidgetKeyRequired(h.Settings))
	widget.GET("/bootstrap", h.WidgetBootstrap)
	widget.POST("/sessions", h.CreateWidgetSession)
	widget.POST("/messages", middleware.RateLimit(rds, cfg.RateLimitPerMin), h.SendWidgetMessage)
	widget.GET("/sessions/:session_id/messages", h.LoadWidgetHistory)

	// Admin API (JWT required).
	r.POST("/admin/login", h.AdminLogin)
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(cfg.JWTSecret))
	admin.GET("/conversations", h.ListConversations)
	admin.GET("/conversations/:session_id/messages", h.GetConversationMessages)
	admin.DELETE("/conversations/:session_id", h.DeleteConversation)
	admin.GET("/exact-replies", h.ListExactReplies)
	admin.PUT("/exact-replies", h.UpsertExactReply)
	admin.DELETE("/exact-replies/:id", h.DeleteExactReply)
	admin.GET("/settings", h.GetSettings)
	admin.PUT("/settings", h.UpdateSettings)
	admin.POST("/widget-key", h.RegenerateWidgetKey)

	return r
}
