package domain

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

var (
	ErrInvalidProvider       = errors.New("invalid_provider")
	ErrProviderNotFound      = errors.New("provider_not_found")
	ErrInvalidSignature      = errors.New("invalid_signature")
	ErrInvalidPayload        = errors.New("invalid_payload")
	ErrInvalidEvent          = errors.New("invalid_event")
	ErrEventIgnored          = errors.New("event_ignored")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")
	ErrInvalidConfig         = errors.New("invalid_config")
	ErrUnknownPlan           = errors.New("unknown_plan")
)

const EventTypeSubscriptionStarted = "subscription.started"

// EventRecord is the dedupe row for a delivered webhook. The unique
// (provider, provider_event_id) index is what makes redelivery a no-op.
type EventRecord struct {
	ID              snowflake.ID   `gorm:"primaryKey"`
	Provider        string         `gorm:"uniqueIndex:idx_billing_events_provider_event"`
	ProviderEventID string         `gorm:"uniqueIndex:idx_billing_events_provider_event"`
	EventType       string
	Email           string
	Plan            string
	Payload         datatypes.JSON
	ReceivedAt      time.Time
	ProcessedAt     *time.Time
}

func (EventRecord) TableName() string {
	return "billing_events"
}

// SubscriptionEvent is the provider-neutral view of a completed checkout.
type SubscriptionEvent struct {
	Provider        string
	ProviderEventID string
	Type            string
	Email           string
	Plan            string
	CustomerRef     string
	OccurredAt      time.Time
	RawPayload      []byte
}

// BillingAdapter verifies and parses one provider's webhook deliveries.
type BillingAdapter interface {
	Provider() string
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*SubscriptionEvent, error)
}

type CheckoutRequest struct {
	Email string
	Plan  string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutProvider starts a hosted checkout for a paid plan.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest, priceID string) (CheckoutSession, error)
}

type Service interface {
	// IngestWebhook verifies, dedupes and applies one webhook delivery.
	// Redelivery of an already-processed event returns
	// ErrEventAlreadyProcessed without touching any account.
	IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error
}

type CheckoutService interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
}
