package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	accountdomain "github.com/lexorahq/lexora/internal/account/domain"
	accountrepo "github.com/lexorahq/lexora/internal/account/repository"
	"github.com/lexorahq/lexora/internal/config"
	"github.com/lexorahq/lexora/internal/coupon/domain"
	couponrepo "github.com/lexorahq/lexora/internal/coupon/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&accountdomain.Account{}, &domain.Coupon{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func seedCoupon(t *testing.T, db *gorm.DB, code string, maxUses, bonus int64) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, db.Exec(`
		INSERT INTO coupons (code, max_uses, current_uses, credits_bonus, created_at, updated_at)
		VALUES (?, ?, 0, ?, ?, ?)
	`, code, maxUses, bonus, now, now).Error)
}

func newTestService(t *testing.T, db *gorm.DB) domain.Service {
	t.Helper()
	return New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		Repo:        couponrepo.Provide(),
		AccountRepo: accountrepo.Provide(),
		Plans:       config.NewStaticPlanConfigHolder(config.DefaultPlanConfig()),
	})
}

func TestRedeem_GrantsBonusAndMovesToBeta(t *testing.T) {
	db := setupTestDB(t)
	seedCoupon(t, db, "LEXORA10", 100, 10)
	svc := newTestService(t, db)

	result, err := svc.Redeem(context.Background(), "alice@example.com", "lexora10")
	require.NoError(t, err)
	assert.Equal(t, int64(15), result.Credits) // free allotment + bonus
	assert.Equal(t, config.PlanBeta, result.Plan)
	assert.Equal(t, int64(10), result.Bonus)

	var coupon domain.Coupon
	require.NoError(t, db.First(&coupon, "code = ?", "LEXORA10").Error)
	assert.Equal(t, int64(1), coupon.CurrentUses)
}

func TestRedeem_UnknownCode(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.Redeem(context.Background(), "alice@example.com", "NOPE")
	assert.ErrorIs(t, err, domain.ErrCouponNotFound)

	_, err = svc.Redeem(context.Background(), "alice@example.com", "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
}

func TestRedeem_ExhaustedCouponGrantsNothing(t *testing.T) {
	db := setupTestDB(t)
	seedCoupon(t, db, "SCARCE", 1, 25)
	svc := newTestService(t, db)
	ctx := context.Background()

	_, err := svc.Redeem(ctx, "first@example.com", "SCARCE")
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, "second@example.com", "SCARCE")
	assert.ErrorIs(t, err, domain.ErrCouponExhausted)

	// The loser's account was never provisioned, let alone credited.
	var count int64
	require.NoError(t, db.Model(&accountdomain.Account{}).Where("email = ?", "second@example.com").Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRedeem_UsesNeverExceedCeiling(t *testing.T) {
	db := setupTestDB(t)
	seedCoupon(t, db, "RACE", 3, 10)
	svc := newTestService(t, db)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			email := []string{"a", "b", "c", "d", "e", "f", "g", "h"}[i] + "@example.com"
			_, err := svc.Redeem(ctx, email, "RACE")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, exhausted int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrCouponExhausted):
			exhausted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, workers-3, exhausted)

	var coupon domain.Coupon
	require.NoError(t, db.First(&coupon, "code = ?", "RACE").Error)
	assert.Equal(t, int64(3), coupon.CurrentUses)
}

func TestRedeem_StacksOnExistingBalance(t *testing.T) {
	db := setupTestDB(t)
	seedCoupon(t, db, "STACK", 10, 10)
	svc := newTestService(t, db)
	ctx := context.Background()

	first, err := svc.Redeem(ctx, "bob@example.com", "STACK")
	require.NoError(t, err)
	assert.Equal(t, int64(15), first.Credits)

	second, err := svc.Redeem(ctx, "bob@example.com", "STACK")
	require.NoError(t, err)
	assert.Equal(t, int64(25), second.Credits)
}
