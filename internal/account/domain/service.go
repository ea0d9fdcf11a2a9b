package domain

import (
	"context"
	"errors"
	"strings"
)

// Service is the account ledger. Authorization is separate from consumption
// so cache hits can be answered without a charge.
type Service interface {
	// Get returns the current balance without touching it.
	Get(ctx context.Context, email string) (Balance, error)
	// Authorize checks that the account may be charged for one answer. It
	// provisions unknown accounts with the free-plan allotment first, so
	// every entry point sees the same lazy-creation behavior.
	Authorize(ctx context.Context, email string) (Balance, error)
	// Consume debits exactly one credit. Callers must have authorized
	// first; a concurrent depletion between the two still fails here with
	// ErrInsufficientCredits rather than overdrafting.
	Consume(ctx context.Context, email string) (int64, error)
	// GrantBonus adds credits and moves the account to newPlan.
	GrantBonus(ctx context.Context, email string, amount int64, newPlan string) (int64, error)
	// ResetForSubscription replaces credits and plan wholesale. Replaying
	// the same event converges on the same state.
	ResetForSubscription(ctx context.Context, email, plan string, credits int64, billingCustomerRef string) error
}

// NormalizeEmail canonicalizes an account key. Every layer that touches
// the ledger goes through this so "Alice@Example.com" and
// "alice@example.com " are the same account.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", ErrInvalidEmail
	}
	return email, nil
}

var (
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrAccountNotFound     = errors.New("account_not_found")
	ErrInsufficientCredits = errors.New("insufficient_credits")
)
