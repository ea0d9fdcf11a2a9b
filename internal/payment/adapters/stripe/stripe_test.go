package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/lexorahq/lexora/internal/clock"
	paymentdomain "github.com/lexorahq/lexora/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_123","type":"checkout.session.completed","data":{"object":{}}}`)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	timestamp := clk.Now().Unix()

	adapter, err := New(Config{WebhookSecret: secret}, clk)
	require.NoError(t, err)

	reqHeader := http.Header{}
	reqHeader.Set("Stripe-Signature", buildSignatureHeader(secret, payload, timestamp))
	require.NoError(t, adapter.Verify(context.Background(), payload, reqHeader))

	reqHeader.Set("Stripe-Signature", buildSignatureHeader("wrong", payload, timestamp))
	assert.ErrorIs(t, adapter.Verify(context.Background(), payload, reqHeader), paymentdomain.ErrInvalidSignature)

	reqHeader.Del("Stripe-Signature")
	assert.ErrorIs(t, adapter.Verify(context.Background(), payload, reqHeader), paymentdomain.ErrInvalidSignature)

	reqHeader.Set("Stripe-Signature", "garbage")
	assert.ErrorIs(t, adapter.Verify(context.Background(), payload, reqHeader), paymentdomain.ErrInvalidSignature)
}

func TestVerifyRejectsStaleTimestamp(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_old"}`)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	timestamp := clk.Now().Unix()

	adapter, err := New(Config{WebhookSecret: secret}, clk)
	require.NoError(t, err)

	header := http.Header{}
	header.Set("Stripe-Signature", buildSignatureHeader(secret, payload, timestamp))
	require.NoError(t, adapter.Verify(context.Background(), payload, header))

	// A valid MAC over a timestamp outside the tolerance window is a replay.
	clk.Advance(10 * time.Minute)
	assert.ErrorIs(t, adapter.Verify(context.Background(), payload, header), paymentdomain.ErrInvalidSignature)

	future := buildSignatureHeader(secret, payload, clk.Now().Add(10*time.Minute).Unix())
	header.Set("Stripe-Signature", future)
	assert.ErrorIs(t, adapter.Verify(context.Background(), payload, header), paymentdomain.ErrInvalidSignature)
}

func TestParseCheckoutCompleted(t *testing.T) {
	adapter, err := New(Config{WebhookSecret: "whsec_test"}, nil)
	require.NoError(t, err)

	payload := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"created": 1767225600,
		"data": {"object": {
			"id": "cs_1",
			"customer": "cus_42",
			"metadata": {"email": "alice@example.com", "plan": "pro"}
		}}
	}`)

	event, err := adapter.Parse(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "stripe", event.Provider)
	assert.Equal(t, "evt_1", event.ProviderEventID)
	assert.Equal(t, paymentdomain.EventTypeSubscriptionStarted, event.Type)
	assert.Equal(t, "alice@example.com", event.Email)
	assert.Equal(t, "pro", event.Plan)
	assert.Equal(t, "cus_42", event.CustomerRef)
	assert.Equal(t, time.Unix(1767225600, 0).UTC(), event.OccurredAt)
}

func TestParseRejectsBadPayloads(t *testing.T) {
	adapter, err := New(Config{WebhookSecret: "whsec_test"}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = adapter.Parse(ctx, []byte(`not json`))
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidPayload)

	_, err = adapter.Parse(ctx, []byte(`{"id":"evt_2","type":"invoice.paid","data":{"object":{}}}`))
	assert.ErrorIs(t, err, paymentdomain.ErrEventIgnored)

	// Completed checkout without the metadata the reset needs.
	_, err = adapter.Parse(ctx, []byte(`{"id":"evt_3","type":"checkout.session.completed","data":{"object":{"id":"cs_2"}}}`))
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidEvent)
}

func TestCreateCheckoutSession(t *testing.T) {
	var form url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		_, _ = w.Write([]byte(`{"id":"cs_123","url":"https://checkout.stripe.com/pay/cs_123"}`))
	}))
	defer server.Close()

	adapter, err := New(Config{
		SecretKey:     "sk_test",
		WebhookSecret: "whsec_test",
		BaseURL:       server.URL,
		SuccessURL:    "https://lexora.app/success",
		CancelURL:     "https://lexora.app/cancel",
	}, nil)
	require.NoError(t, err)

	session, err := adapter.CreateCheckoutSession(context.Background(),
		paymentdomain.CheckoutRequest{Email: "bob@example.com", Plan: "basic"}, "price_basic")
	require.NoError(t, err)
	assert.Equal(t, "cs_123", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_123", session.URL)

	assert.Equal(t, "subscription", form.Get("mode"))
	assert.Equal(t, "bob@example.com", form.Get("customer_email"))
	assert.Equal(t, "price_basic", form.Get("line_items[0][price]"))
	assert.Equal(t, "bob@example.com", form.Get("metadata[email]"))
	assert.Equal(t, "basic", form.Get("metadata[plan]"))
}

func TestNewRequiresWebhookSecret(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidConfig)
}

func buildSignatureHeader(secret string, payload []byte, timestamp int64) string {
	signedPayload := fmt.Sprintf("%d.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(signedPayload))
	signature := hex.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, signature)
}
