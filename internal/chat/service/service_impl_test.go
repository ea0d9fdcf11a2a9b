package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accountdomain "github.com/lexorahq/lexora/internal/account/domain"
	accountrepo "github.com/lexorahq/lexora/internal/account/repository"
	accountservice "github.com/lexorahq/lexora/internal/account/service"
	"github.com/lexorahq/lexora/internal/ai"
	aidomain "github.com/lexorahq/lexora/internal/ai/domain"
	"github.com/lexorahq/lexora/internal/cache"
	"github.com/lexorahq/lexora/internal/chat/domain"
	chatrepo "github.com/lexorahq/lexora/internal/chat/repository"
	"github.com/lexorahq/lexora/internal/clock"
	"github.com/lexorahq/lexora/internal/config"
	"github.com/lexorahq/lexora/internal/observability/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubGenerator struct {
	mu    sync.Mutex
	calls int
	reply string
	err   error
	delay time.Duration
}

func (s *stubGenerator) Provider() string { return "openai" }

func (s *stubGenerator) Generate(ctx context.Context, req aidomain.Request) (aidomain.Response, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return aidomain.Response{}, s.err
	}
	return aidomain.Response{Text: s.reply, Model: req.Model, Provider: "openai"}, nil
}

func (s *stubGenerator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fixture struct {
	db        *gorm.DB
	svc       domain.Service
	accounts  accountdomain.Service
	generator *stubGenerator
	clock     *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&accountdomain.Account{}, &domain.ChatRecord{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	plans := config.NewStaticPlanConfigHolder(config.DefaultPlanConfig())
	accRepo := accountrepo.Provide()
	accounts := accountservice.New(accountservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Repo:  accRepo,
		Plans: plans,
	})

	m, err := metrics.New(metrics.Config{ServiceName: "lexora-test"}, noop.NewMeterProvider())
	require.NoError(t, err)

	generator := &stubGenerator{reply: "Cabe habeas corpus nos termos do Art. 647 do CPP."}

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		Config:      config.Config{DefaultModel: "gpt-4o-mini"},
		Clock:       clk,
		IDGenerator: node,
		Accounts:    accounts,
		AccountRepo: accRepo,
		Repo:        chatrepo.Provide(),
		Cache:       cache.NewMemoryCache(128, time.Hour, clk),
		Providers:   ai.NewRegistry(generator),
		Metrics:     m,
	})

	return &fixture{db: db, svc: svc, accounts: accounts, generator: generator, clock: clk}
}

func (f *fixture) credits(t *testing.T, email string) int64 {
	t.Helper()
	balance, err := f.accounts.Get(context.Background(), email)
	require.NoError(t, err)
	return balance.Credits
}

func TestAsk_DebitsOneCreditAndRecordsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Ask(ctx, domain.AskRequest{
		Email:    "alice@example.com",
		Message:  "Cabe HC contra decisão que nega liberdade provisória?",
		UseCache: true,
	})
	require.NoError(t, err)
	assert.Equal(t, f.generator.reply, resp.Answer)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
	assert.False(t, resp.Cached)
	assert.Equal(t, int64(4), resp.CreditsRemaining)

	history, err := f.svc.History(ctx, "alice@example.com", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "openai", history[0].Provider)
	assert.Equal(t, int64(1), history[0].CreditsUsed)
}

func TestAsk_CacheHitIsFree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	question := "Qual o prazo da apelação criminal?"

	first, err := f.svc.Ask(ctx, domain.AskRequest{Email: "bob@example.com", Message: question, UseCache: true})
	require.NoError(t, err)
	require.False(t, first.Cached)

	second, err := f.svc.Ask(ctx, domain.AskRequest{Email: "bob@example.com", Message: question, UseCache: true})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Answer, second.Answer)
	assert.Equal(t, int64(4), second.CreditsRemaining)

	// One provider call, one debit, one history row.
	assert.Equal(t, 1, f.generator.callCount())
	assert.Equal(t, int64(4), f.credits(t, "bob@example.com"))
	history, err := f.svc.History(ctx, "bob@example.com", 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestAsk_CacheHitDoesNotProvision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	question := "O que é RESE?"

	_, err := f.svc.Ask(ctx, domain.AskRequest{Email: "seed@example.com", Message: question, UseCache: true})
	require.NoError(t, err)

	// A stranger hitting the cache gets the answer but no account.
	resp, err := f.svc.Ask(ctx, domain.AskRequest{Email: "stranger@example.com", Message: question, UseCache: true})
	require.NoError(t, err)
	assert.True(t, resp.Cached)
	assert.Equal(t, int64(0), resp.CreditsRemaining)

	_, err = f.accounts.Get(ctx, "stranger@example.com")
	assert.ErrorIs(t, err, accountdomain.ErrAccountNotFound)
}

func TestAsk_CacheDisabledBypassesLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	question := "Qual o prazo do RESE?"

	_, err := f.svc.Ask(ctx, domain.AskRequest{Email: "carol@example.com", Message: question, UseCache: true})
	require.NoError(t, err)

	resp, err := f.svc.Ask(ctx, domain.AskRequest{Email: "carol@example.com", Message: question, UseCache: false})
	require.NoError(t, err)
	assert.False(t, resp.Cached)
	assert.Equal(t, 2, f.generator.callCount())
	assert.Equal(t, int64(3), f.credits(t, "carol@example.com"))
}

func TestAsk_ProviderFailureIsUncharged(t *testing.T) {
	f := newFixture(t)
	f.generator.err = fmt.Errorf("%w: openai returned 503", aidomain.ErrProviderUnavailable)
	ctx := context.Background()

	_, err := f.svc.Ask(ctx, domain.AskRequest{Email: "dave@example.com", Message: "pergunta", UseCache: true})
	assert.ErrorIs(t, err, aidomain.ErrProviderUnavailable)

	// Authorization provisioned the account but nothing was debited.
	assert.Equal(t, int64(5), f.credits(t, "dave@example.com"))
	history, err := f.svc.History(ctx, "dave@example.com", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAsk_DepletedAccountRejectedBeforeProvider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Exec(
		`INSERT INTO profiles (email, credits, plan, created_at, updated_at) VALUES (?, 0, 'free', ?, ?)`,
		"broke@example.com", f.clock.Now(), f.clock.Now(),
	).Error)

	_, err := f.svc.Ask(ctx, domain.AskRequest{Email: "broke@example.com", Message: "pergunta", UseCache: true})
	assert.ErrorIs(t, err, accountdomain.ErrInsufficientCredits)
	assert.Equal(t, 0, f.generator.callCount())
}

func TestAsk_EmptyMessage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Ask(context.Background(), domain.AskRequest{Email: "alice@example.com", Message: "   "})
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)
}

func TestAsk_LastCreditConcurrency(t *testing.T) {
	f := newFixture(t)
	f.generator.delay = 10 * time.Millisecond
	ctx := context.Background()

	require.NoError(t, f.db.Exec(
		`INSERT INTO profiles (email, credits, plan, created_at, updated_at) VALUES (?, 1, 'free', ?, ?)`,
		"last@example.com", f.clock.Now(), f.clock.Now(),
	).Error)

	const workers = 6
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Distinct questions so the cache cannot absorb the race.
			_, err := f.svc.Ask(ctx, domain.AskRequest{
				Email:    "last@example.com",
				Message:  fmt.Sprintf("pergunta %d", i),
				UseCache: true,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, accountdomain.ErrInsufficientCredits):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, rejected)
	assert.Equal(t, int64(0), f.credits(t, "last@example.com"))

	var rows int64
	require.NoError(t, f.db.Model(&domain.ChatRecord{}).Where("email = ?", "last@example.com").Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}
