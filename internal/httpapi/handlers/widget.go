package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/goaccelovate/ai-chat-backend/internal/chat"
	"github.com/goaccelovate/ai-chat-backend/internal/common"
	"github.com/goaccelovate/ai-chat-backend/internal/store/rabbitmq"
)

// WidgetBootstrap hands the embed script everything it needs to render
// before the visitor has a session.
func (h *Handler) WidgetBootstrap(c *gin.Context) {
	cfg, err := h.Settings.Load(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{
		"welcome_message": cfg.WelcomeMessage,
		"badge_title":     cfg.BadgeTitle,
		"badge_subtitle":  cfg.BadgeSubtitle,
		"badge_icon":      cfg.BadgeIcon,
	})
}

type createSessionReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	Phone   string `json:"phone"`
}

func (h *Handler) CreateWidgetSession(c *gin.Context) {
	var req createSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	conv, err := h.ChatSvc.CreateSession(c.Request.Context(), req.Name, req.Email, req.Purpose, req.Phone)
	if err != nil {
		if errors.Is(err, chat.ErrMissingFields) {
			common.Fail(c, http.StatusBadRequest, 10002, "name and email required")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create session")
		return
	}

	h.publishEvent(rabbitmq.Event{
		Type:      rabbitmq.EventConversationCreated,
		SessionID: conv.SessionID,
		Name:      conv.Name,
		Email:     conv.Email,
		Purpose:   conv.Purpose,
	})

	common.OK(c, gin.H{"session_id": conv.SessionID})
}

type sendMessageReq struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

func (h *Handler) SendWidgetMessage(c *gin.Context) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	cfg, err := h.Settings.Load(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	reply, err := h.ChatSvc.SendMessage(c.Request.Context(), cfg, req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40004, "invalid session")
			return
		}
		log.Printf("[SendWidgetMessage] session_id=%s err=%v", req.SessionID, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to send message")
		return
	}

	h.publishEvent(rabbitmq.Event{
		Type:      rabbitmq.EventMessageAppended,
		SessionID: req.SessionID,
		Role:      "user",
	})

	common.OK(c, gin.H{
		"session_id": req.SessionID,
		"reply":      reply,
	})
}

func (h *Handler) LoadWidgetHistory(c *gin.Context) {
	sessionID := c.Param("session_id")

	msgs, err := h.ChatSvc.LoadHistory(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40004, "invalid session")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to load history")
		return
	}

	common.OK(c, gin.H{"messages": msgs})
}

// Event publishing is best effort; a broker outage never blocks a chat.
func (h *Handler) publishEvent(ev rabbitmq.Event) {
	if h.Events == nil {
		return
	}
	if err := h.Events.Publish(context.Background(), ev); err != nil {
		log.Printf("[events] publish %s failed: %v", ev.Type, err)
	}
}
