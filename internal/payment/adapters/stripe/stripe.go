package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lexorahq/lexora/internal/clock"
	paymentdomain "github.com/lexorahq/lexora/internal/payment/domain"
)

const (
	defaultBaseURL   = "https://api.stripe.com"
	defaultTolerance = 5 * time.Minute
)

type Config struct {
	SecretKey     string
	WebhookSecret string
	BaseURL       string
	SuccessURL    string
	CancelURL     string
	Tolerance     time.Duration
}

// Adapter handles stripe webhook verification, event parsing and hosted
// checkout creation.
type Adapter struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	successURL    string
	cancelURL     string
	tolerance     time.Duration
	clock         clock.Clock
	client        *http.Client
}

func New(cfg Config, clk clock.Clock) (*Adapter, error) {
	webhookSecret := strings.TrimSpace(cfg.WebhookSecret)
	if webhookSecret == "" {
		return nil, paymentdomain.ErrInvalidConfig
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	tolerance := cfg.Tolerance
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}
	if clk == nil {
		clk = clock.NewSystemClock()
	}
	return &Adapter{
		secretKey:     strings.TrimSpace(cfg.SecretKey),
		webhookSecret: webhookSecret,
		baseURL:       baseURL,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		tolerance:     tolerance,
		clock:         clk,
		client:        &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (a *Adapter) Provider() string {
	return "stripe"
}

func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	sigHeader := strings.TrimSpace(headers.Get("Stripe-Signature"))
	if sigHeader == "" {
		return paymentdomain.ErrInvalidSignature
	}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return paymentdomain.ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return paymentdomain.ErrInvalidSignature
	}
	// Replayed or badly skewed timestamps fail even with a valid MAC.
	if age := a.clock.Now().Sub(time.Unix(ts, 0)); age > a.tolerance || age < -a.tolerance {
		return paymentdomain.ErrInvalidSignature
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(a.webhookSecret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}

	return paymentdomain.ErrInvalidSignature
}

type stripeEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Created int64           `json:"created"`
	Data    stripeEventData `json:"data"`
}

type stripeEventData struct {
	Object json.RawMessage `json:"object"`
}

type stripeCheckoutSession struct {
	ID       string            `json:"id"`
	Customer string            `json:"customer"`
	Metadata map[string]string `json:"metadata"`
}

func (a *Adapter) Parse(ctx context.Context, payload []byte) (*paymentdomain.SubscriptionEvent, error) {
	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	switch strings.TrimSpace(event.Type) {
	case "checkout.session.completed":
		return a.parseCheckoutCompleted(event, payload)
	default:
		return nil, paymentdomain.ErrEventIgnored
	}
}

func (a *Adapter) parseCheckoutCompleted(event stripeEvent, payload []byte) (*paymentdomain.SubscriptionEvent, error) {
	var session stripeCheckoutSession
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}

	email := strings.TrimSpace(session.Metadata["email"])
	plan := strings.TrimSpace(session.Metadata["plan"])
	if email == "" || plan == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	return &paymentdomain.SubscriptionEvent{
		Provider:        "stripe",
		ProviderEventID: event.ID,
		Type:            paymentdomain.EventTypeSubscriptionStarted,
		Email:           email,
		Plan:            plan,
		CustomerRef:     strings.TrimSpace(session.Customer),
		OccurredAt:      timestamp(event.Created),
		RawPayload:      payload,
	}, nil
}

// CreateCheckoutSession starts a subscription checkout. The account email
// and plan ride in the session metadata and come back on the completion
// webhook.
func (a *Adapter) CreateCheckoutSession(ctx context.Context, req paymentdomain.CheckoutRequest, priceID string) (paymentdomain.CheckoutSession, error) {
	if a.secretKey == "" {
		return paymentdomain.CheckoutSession{}, paymentdomain.ErrInvalidConfig
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("customer_email", req.Email)
	form.Set("success_url", a.successURL)
	form.Set("cancel_url", a.cancelURL)
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("payment_method_types[0]", "card")
	form.Set("payment_method_types[1]", "pix")
	form.Set("metadata[email]", req.Email)
	form.Set("metadata[plan]", req.Plan)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return paymentdomain.CheckoutSession{}, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "Bearer "+a.secretKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return paymentdomain.CheckoutSession{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return paymentdomain.CheckoutSession{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return paymentdomain.CheckoutSession{}, fmt.Errorf("stripe checkout returned %d: %s", resp.StatusCode, string(body))
	}

	var session struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &session); err != nil {
		return paymentdomain.CheckoutSession{}, err
	}
	return paymentdomain.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func parseSignatureHeader(header string) (string, []string, error) {
	parts := strings.Split(header, ",")
	var timestamp string
	signatures := []string{}
	for _, part := range parts {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "t" {
			timestamp = value
		}
		if key == "v1" {
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, errors.New("invalid_signature")
	}
	return timestamp, signatures, nil
}

func timestamp(created int64) time.Time {
	if created == 0 {
		return time.Now().UTC()
	}
	return time.Unix(created, 0).UTC()
}
