package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Find(ctx context.Context, db *gorm.DB, code string) (*Coupon, error)
	// ConsumeUse bumps current_uses if the ceiling allows it, reporting
	// whether a use was actually taken.
	ConsumeUse(ctx context.Context, db *gorm.DB, code string) (bool, error)
}
