package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/lexorahq/lexora/internal/account/domain"
	"github.com/lexorahq/lexora/internal/account/repository"
	"github.com/lexorahq/lexora/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	if err := db.AutoMigrate(&domain.Account{}); err != nil {
		t.Fatal(err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// sqlite allows a single writer; serialize connections so the
	// concurrency tests exercise the conditional decrement, not the driver.
	sqlDB.SetMaxOpenConns(1)
	return db
}

func newTestService(t *testing.T, db *gorm.DB) domain.Service {
	t.Helper()
	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Repo:  repository.Provide(),
		Plans: config.NewStaticPlanConfigHolder(config.DefaultPlanConfig()),
	})
}

func TestAuthorize_ProvisionsNewAccount(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	balance, err := svc.Authorize(context.Background(), "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance.Credits)
	assert.Equal(t, config.PlanFree, balance.Plan)

	// Re-authorizing never re-grants the free allotment.
	_, err = svc.Consume(context.Background(), "alice@example.com")
	require.NoError(t, err)
	balance, err = svc.Authorize(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(4), balance.Credits)
}

func TestAuthorize_InvalidEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.Authorize(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Authorize(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestAuthorize_DepletedAccount(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	ctx := context.Background()
	_, err := svc.Authorize(ctx, "bob@example.com")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err = svc.Consume(ctx, "bob@example.com")
		require.NoError(t, err)
	}

	balance, err := svc.Authorize(ctx, "bob@example.com")
	assert.ErrorIs(t, err, domain.ErrInsufficientCredits)
	assert.Equal(t, int64(0), balance.Credits)
}

func TestConsume_NeverOverdraws(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	ctx := context.Background()
	_, err := svc.Authorize(ctx, "carol@example.com")
	require.NoError(t, err)

	// Burn down to the last credit.
	for i := 0; i < 4; i++ {
		_, err = svc.Consume(ctx, "carol@example.com")
		require.NoError(t, err)
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Consume(ctx, "carol@example.com")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, depleted int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientCredits):
			depleted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, depleted)

	balance, err := svc.Get(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.Credits)
}

func TestConsume_UnknownAccount(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.Consume(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestGet_IsReadOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.Get(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	// Get must not have provisioned anything.
	var count int64
	require.NoError(t, db.Model(&domain.Account{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGrantBonus(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	ctx := context.Background()
	credits, err := svc.GrantBonus(ctx, "dave@example.com", 10, config.PlanBeta)
	require.NoError(t, err)
	assert.Equal(t, int64(15), credits) // free allotment + bonus

	balance, err := svc.Get(ctx, "dave@example.com")
	require.NoError(t, err)
	assert.Equal(t, config.PlanBeta, balance.Plan)

	_, err = svc.GrantBonus(ctx, "dave@example.com", 0, config.PlanBeta)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.GrantBonus(ctx, "dave@example.com", -3, config.PlanBeta)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestResetForSubscription_Replaces(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	ctx := context.Background()
	_, err := svc.GrantBonus(ctx, "erin@example.com", 10, config.PlanBeta)
	require.NoError(t, err)

	// A reset replaces the balance wholesale; it never adds to it.
	require.NoError(t, svc.ResetForSubscription(ctx, "erin@example.com", config.PlanPro, 300, "cus_123"))
	require.NoError(t, svc.ResetForSubscription(ctx, "erin@example.com", config.PlanPro, 300, "cus_123"))

	balance, err := svc.Get(ctx, "erin@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(300), balance.Credits)
	assert.Equal(t, config.PlanPro, balance.Plan)
}

func TestResetForSubscription_ProvisionsUnknownAccount(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	ctx := context.Background()
	require.NoError(t, svc.ResetForSubscription(ctx, "new@example.com", config.PlanBasic, 100, "cus_456"))

	balance, err := svc.Get(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance.Credits)
	assert.Equal(t, config.PlanBasic, balance.Plan)
}
