package repository

import (
	"context"
	"time"

	"github.com/lexorahq/lexora/internal/account/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Ensure(ctx context.Context, db *gorm.DB, email string, credits int64, plan string) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).Exec(
		`INSERT INTO profiles (email, credits, plan, billing_customer_ref, created_at, updated_at)
		 VALUES (?, ?, ?, '', ?, ?)
		 ON CONFLICT (email) DO NOTHING`,
		email,
		credits,
		plan,
		now,
		now,
	).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, email string) (*domain.Account, error) {
	var account domain.Account
	err := db.WithContext(ctx).Raw(
		`SELECT email, credits, plan, billing_customer_ref, created_at, updated_at
		 FROM profiles WHERE email = ?`,
		email,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.Email == "" {
		return nil, nil
	}
	return &account, nil
}

func (r *repo) DecrementIfPositive(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE profiles
		 SET credits = credits - 1, updated_at = ?
		 WHERE email = ? AND credits > 0`,
		time.Now().UTC(),
		email,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) AddCredits(ctx context.Context, db *gorm.DB, email string, amount int64, plan string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE profiles
		 SET credits = credits + ?, plan = ?, updated_at = ?
		 WHERE email = ?`,
		amount,
		plan,
		time.Now().UTC(),
		email,
	).Error
}

func (r *repo) Replace(ctx context.Context, db *gorm.DB, email, plan string, credits int64, billingCustomerRef string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE profiles
		 SET credits = ?, plan = ?, billing_customer_ref = ?, updated_at = ?
		 WHERE email = ?`,
		credits,
		plan,
		billingCustomerRef,
		time.Now().UTC(),
		email,
	).Error
}
