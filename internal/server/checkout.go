package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/lexorahq/lexora/internal/payment/domain"
)

type createCheckoutRequest struct {
	Email string `json:"email"`
	Plan  string `json:"plan"`
}

func (s *Server) HandleCreateCheckout(c *gin.Context) {
	var req createCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	session, err := s.checkoutSvc.CreateCheckout(c.Request.Context(), paymentdomain.CheckoutRequest{
		Email: strings.TrimSpace(req.Email),
		Plan:  strings.TrimSpace(req.Plan),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":   session.ID,
		"checkout_url": session.URL,
	})
}
