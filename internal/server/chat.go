package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	chatdomain "github.com/lexorahq/lexora/internal/chat/domain"
)

type chatRequest struct {
	Message  string `json:"message"`
	Email    string `json:"email"`
	Model    string `json:"model"`
	UseCache *bool  `json:"use_cache"`
}

func (s *Server) HandleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	email := strings.TrimSpace(req.Email)
	setAccountContext(c, email)
	if !s.chatLimiter.Allow(strings.ToLower(email)) {
		s.metrics.RecordRateLimitDenied(c.Request.Context(), "/chat")
		AbortWithError(c, ErrRateLimited)
		return
	}

	useCache := true
	if req.UseCache != nil {
		useCache = *req.UseCache
	}

	resp, err := s.chatSvc.Ask(c.Request.Context(), chatdomain.AskRequest{
		Email:    email,
		Message:  req.Message,
		Model:    strings.TrimSpace(req.Model),
		UseCache: useCache,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("chat_model", resp.Model)
	c.JSON(http.StatusOK, gin.H{
		"response":          resp.Answer,
		"credits_remaining": resp.CreditsRemaining,
		"model_used":        resp.Model,
		"provider":          resp.Provider,
		"cached":            resp.Cached,
	})
}

func (s *Server) HandleChatHistory(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	limit := parseLimit(c.Query("limit"), 20, 100)
	records, err := s.chatSvc.History(c.Request.Context(), email, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

func parseLimit(raw string, fallback, ceiling int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	if value > ceiling {
		return ceiling
	}
	return value
}
