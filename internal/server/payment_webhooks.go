package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/lexorahq/lexora/internal/payment/domain"
)

// HandlePaymentWebhook ingests a signed billing event. When fixedProvider is
// empty the provider comes from the route parameter.
func (s *Server) HandlePaymentWebhook(fixedProvider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := fixedProvider
		if provider == "" {
			provider = strings.TrimSpace(c.Param("provider"))
		}

		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			AbortWithError(c, paymentdomain.ErrInvalidPayload)
			return
		}

		err = s.webhooks.IngestWebhook(c.Request.Context(), provider, payload, c.Request.Header)
		if err != nil && !errors.Is(err, paymentdomain.ErrEventAlreadyProcessed) {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
