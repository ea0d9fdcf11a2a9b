package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/lexorahq/lexora/internal/account/domain"
)

type registerAccountRequest struct {
	Email string `json:"email"`
}

func (s *Server) HandleAccountRegister(c *gin.Context) {
	var req registerAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	email := strings.TrimSpace(req.Email)
	balance, err := s.accounts.Authorize(c.Request.Context(), email)
	if errors.Is(err, accountdomain.ErrInsufficientCredits) {
		// Registering an existing depleted account is not an error.
		balance, err = s.accounts.Get(c.Request.Context(), email)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"credits": balance.Credits,
		"plan":    balance.Plan,
	})
}

func (s *Server) HandleAccountBalance(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	balance, err := s.accounts.Get(c.Request.Context(), email)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"credits": balance.Credits,
		"plan":    balance.Plan,
	})
}
