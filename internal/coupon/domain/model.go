package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCode     = errors.New("invalid_code")
	ErrCouponNotFound  = errors.New("coupon_not_found")
	ErrCouponExhausted = errors.New("coupon_exhausted")
)

// Coupon is a promo code with a redemption ceiling. CurrentUses only ever
// moves up, and never past MaxUses.
type Coupon struct {
	Code         string `gorm:"primaryKey"`
	MaxUses      int64
	CurrentUses  int64
	CreditsBonus int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Coupon) TableName() string {
	return "coupons"
}

type RedeemResult struct {
	Credits int64
	Plan    string
	Bonus   int64
}

type Service interface {
	// Redeem consumes one use of the coupon and grants its bonus in a
	// single transaction, so a coupon use is never burned without the
	// credits landing.
	Redeem(ctx context.Context, email, code string) (RedeemResult, error)
}
