package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goaccelovate/ai-chat-backend/internal/auth"
	"github.com/goaccelovate/ai-chat-backend/internal/common"
)

type adminLoginReq struct {
	Password string `json:"password" binding:"required"`
}

func (h *Handler) AdminLogin(c *gin.Context) {
	var req adminLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if h.Cfg.AdminPasswordHash == "" {
		common.Fail(c, http.StatusUnauthorized, 40103, "admin login not configured")
		return
	}
	if !auth.CheckPassword(h.Cfg.AdminPasswordHash, req.Password) {
		common.Fail(c, http.StatusUnauthorized, 40104, "wrong password")
		return
	}

	token, err := auth.SignAdminToken(h.Cfg.JWTSecret, 24*time.Hour)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to sign token")
		return
	}
	common.OK(c, gin.H{"token": token})
}

func (h *Handler) ListConversations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	convs, err := h.ChatSvc.ListConversations(c.Request.Context(), limit)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to list conversations")
		return
	}
	common.OK(c, gin.H{"conversations": convs})
}

func (h *Handler) GetConversationMessages(c *gin.Context) {
	msgs, err := h.ChatSvc.GetMessages(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to load messages")
		return
	}
	common.OK(c, gin.H{"messages": msgs})
}

func (h *Handler) DeleteConversation(c *gin.Context) {
	if err := h.ChatSvc.DeleteConversation(c.Request.Context(), c.Param("session_id")); err != nil {
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to delete conversation")
		return
	}
	common.OK(c, nil)
}

func (h *Handler) ListExactReplies(c *gin.Context) {
	rules, err := h.ChatSvc.ListExactReplies(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to list exact replies")
		return
	}
	common.OK(c, gin.H{"exact_replies": rules})
}

type upsertExactReplyReq struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}

func (h *Handler) UpsertExactReply(c *gin.Context) {
	var req upsertExactReplyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	rule, err := h.ChatSvc.UpsertExactReply(c.Request.Context(), req.Question, req.Answer)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to save exact reply")
		return
	}
	common.OK(c, gin.H{"exact_reply": rule})
}

func (h *Handler) DeleteExactReply(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid id")
		return
	}
	if err := h.ChatSvc.DeleteExactReply(c.Request.Context(), id); err != nil {
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to delete exact reply")
		return
	}
	common.OK(c, nil)
}

func (h *Handler) GetSettings(c *gin.Context) {
	cfg, err := h.Settings.Load(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{
		"settings":   cfg,
		"widget_key": cfg.WidgetKey,
	})
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	cfg, err := h.Settings.Load(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	// Bind over the current snapshot so omitted fields keep their value.
	if err := c.ShouldBindJSON(&cfg); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if cfg.Provider != "openai" && cfg.Provider != "gemini" {
		common.Fail(c, http.StatusBadRequest, 10005, "api_provider must be openai or gemini")
		return
	}

	if err := h.Settings.Save(c.Request.Context(), cfg); err != nil {
		common.Fail(c, http.StatusInternalServerError, 50005, "failed to save settings")
		return
	}

	fresh, err := h.Settings.Load(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{"settings": fresh})
}

func (h *Handler) RegenerateWidgetKey(c *gin.Context) {
	key, err := h.Settings.RegenerateWidgetKey(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50005, "failed to regenerate widget key")
		return
	}
	common.OK(c, gin.H{"widget_key": key})
}
