package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/lexorahq/lexora/internal/account/domain"
	aidomain "github.com/lexorahq/lexora/internal/ai/domain"
	chatdomain "github.com/lexorahq/lexora/internal/chat/domain"
	contentdomain "github.com/lexorahq/lexora/internal/content/domain"
	coupondomain "github.com/lexorahq/lexora/internal/coupon/domain"
	documentdomain "github.com/lexorahq/lexora/internal/document/domain"
	paymentdomain "github.com/lexorahq/lexora/internal/payment/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	UpgradeURL string `json:"upgrade_url,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrRateLimited    = errors.New("rate_limited")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
	ErrInternal       = errors.New("internal_error")
)

const upgradeURL = "/pricing"

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	case errors.Is(err, accountdomain.ErrInsufficientCredits):
		return http.StatusForbidden, errorPayload{
			Type:       "insufficient_credits",
			Message:    "no credits remaining",
			UpgradeURL: upgradeURL,
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: validationErrorMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, aidomain.ErrProviderUnavailable):
		return http.StatusBadGateway, errorPayload{
			Type:    "provider_unavailable",
			Message: "upstream provider unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, accountdomain.ErrInvalidEmail),
		errors.Is(err, accountdomain.ErrInvalidAmount),
		errors.Is(err, chatdomain.ErrEmptyMessage),
		errors.Is(err, aidomain.ErrEmptyMessage),
		errors.Is(err, coupondomain.ErrInvalidCode),
		errors.Is(err, coupondomain.ErrCouponNotFound),
		errors.Is(err, coupondomain.ErrCouponExhausted),
		errors.Is(err, paymentdomain.ErrInvalidSignature),
		errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, paymentdomain.ErrInvalidEvent),
		errors.Is(err, paymentdomain.ErrUnknownPlan),
		errors.Is(err, contentdomain.ErrInvalidPost),
		errors.Is(err, documentdomain.ErrEmptyFile),
		errors.Is(err, documentdomain.ErrUnsupportedType),
		errors.Is(err, documentdomain.ErrNoText):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, accountdomain.ErrAccountNotFound),
		errors.Is(err, contentdomain.ErrPostNotFound),
		errors.Is(err, paymentdomain.ErrProviderNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorMessage(err error) string {
	switch {
	case errors.Is(err, coupondomain.ErrInvalidCode),
		errors.Is(err, coupondomain.ErrCouponNotFound),
		errors.Is(err, coupondomain.ErrCouponExhausted):
		return "Cupom inválido"
	case errors.Is(err, chatdomain.ErrEmptyMessage),
		errors.Is(err, aidomain.ErrEmptyMessage):
		return "message is required"
	case errors.Is(err, accountdomain.ErrInvalidEmail):
		return "valid email is required"
	default:
		return "invalid request"
	}
}

// classifyErrorForLog maps an error to (type, code) labels for request logs.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", payload.Type
	case status == http.StatusTooManyRequests:
		return "rate_limited", payload.Type
	default:
		return "client_error", payload.Type
	}
}
