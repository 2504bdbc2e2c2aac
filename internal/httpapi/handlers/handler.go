package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/goaccelovate/ai-chat-backend/internal/ai"
	"github.com/goaccelovate/ai-chat-backend/internal/chat"
	"github.com/goaccelovate/ai-chat-backend/internal/common"
	"github.com/goaccelovate/ai-chat-backend/internal/config"
	"github.com/goaccelovate/ai-chat-backend/internal/settings"
	"github.com/goaccelovate/ai-chat-backend/internal/store/rabbitmq"
)

type Handler struct {
	DB       *gorm.DB
	Cfg      config.Config
	Settings *settings.Store
	ChatSvc  *chat.Service
	Events   *rabbitmq.Publisher // nil when event publishing is disabled
}

func NewHandler(db *gorm.DB, cfg config.Config, events *rabbitmq.Publisher) *Handler {
	repo := chat.NewRepo(db)

	reg := ai.NewRegistry()
	reg.Register("openai", func() ai.Strategy { return ai.NewOpenAIStrategy(cfg.OpenAIBaseURL) })
	reg.Register("gemini", func() ai.Strategy { return ai.NewGeminiStrategy(cfg.GeminiBaseURL) })

	return &Handler{
		DB:       db,
		Cfg:      cfg,
		Settings: settings.NewStore(db),
		ChatSvc:  chat.NewService(repo, reg),
		Events:   events,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}
