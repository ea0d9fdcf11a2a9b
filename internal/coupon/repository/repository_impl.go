package repository

import (
	"context"
	"time"

	"github.com/lexorahq/lexora/internal/coupon/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, code string) (*domain.Coupon, error) {
	var coupon domain.Coupon
	err := db.WithContext(ctx).Raw(`
		SELECT code, max_uses, current_uses, credits_bonus, created_at, updated_at
		FROM coupons
		WHERE code = ?
	`, code).Scan(&coupon).Error
	if err != nil {
		return nil, err
	}
	if coupon.Code == "" {
		return nil, nil
	}
	return &coupon, nil
}

func (r *repo) ConsumeUse(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	result := db.WithContext(ctx).Exec(`
		UPDATE coupons
		SET current_uses = current_uses + 1, updated_at = ?
		WHERE code = ? AND current_uses < max_uses
	`, time.Now().UTC(), code)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
