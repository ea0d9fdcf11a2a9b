package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type applyCouponRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (s *Server) HandleCouponApply(c *gin.Context) {
	var req applyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	email := strings.TrimSpace(req.Email)
	setAccountContext(c, email)
	if !s.couponLimiter.Allow(strings.ToLower(email)) {
		s.metrics.RecordRateLimitDenied(c.Request.Context(), "/coupon/apply")
		AbortWithError(c, ErrRateLimited)
		return
	}

	result, err := s.coupons.Redeem(c.Request.Context(), email, req.Code)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"credits_added": result.Bonus,
		"credits":       result.Credits,
		"plan":          result.Plan,
	})
}
