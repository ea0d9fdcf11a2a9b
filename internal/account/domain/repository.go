package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// Ensure inserts the account with the given starting state if it does
	// not exist yet. Existing rows are left untouched.
	Ensure(ctx context.Context, db *gorm.DB, email string, credits int64, plan string) error
	Find(ctx context.Context, db *gorm.DB, email string) (*Account, error)
	// DecrementIfPositive performs the atomic conditional debit. It reports
	// false when the account is missing or already depleted; the two cases
	// are indistinguishable at this level on purpose.
	DecrementIfPositive(ctx context.Context, db *gorm.DB, email string) (bool, error)
	AddCredits(ctx context.Context, db *gorm.DB, email string, amount int64, plan string) error
	// Replace overwrites credits, plan and billing reference wholesale.
	Replace(ctx context.Context, db *gorm.DB, email, plan string, credits int64, billingCustomerRef string) error
}
