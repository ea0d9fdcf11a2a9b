package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/lexorahq/lexora/internal/account/domain"
	"github.com/lexorahq/lexora/internal/ai"
	aidomain "github.com/lexorahq/lexora/internal/ai/domain"
	"github.com/lexorahq/lexora/internal/cache"
	"github.com/lexorahq/lexora/internal/chat/domain"
	"github.com/lexorahq/lexora/internal/clock"
	"github.com/lexorahq/lexora/internal/config"
	"github.com/lexorahq/lexora/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// systemPrompt is the assistant persona sent with every provider call.
// Lexora is tuned for the criminal-procedure second phase of the Brazilian
// bar exam.
const systemPrompt = `Você é a Lexora, especialista em segunda fase penal do Exame de Ordem.

FOCO PRINCIPAL:
1. Habeas Corpus (Art. 647-667 CPP)
2. Apelação (Art. 593-603 CPP)
3. Recurso em Sentido Estrito - RESE (Art. 581-592 CPP)
4. Resposta à Acusação (Art. 396-A CPP)

SEMPRE:
- Cite artigos específicos do CPP e CF
- Use jurisprudência do STF e STJ
- Estruture as peças com clareza
- Indique prazos processuais`

const (
	defaultMaxTokens   = 1000
	defaultTemperature = 0.7
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Config      config.Config
	Clock       clock.Clock
	IDGenerator *snowflake.Node
	Accounts    accountdomain.Service
	AccountRepo accountdomain.Repository
	Repo        domain.Repository
	Cache       cache.ResponseCache
	Providers   *ai.Registry
	Metrics     *metrics.Metrics
}

type service struct {
	db          *gorm.DB
	log         *zap.Logger
	cfg         config.Config
	clock       clock.Clock
	idGenerator *snowflake.Node
	accounts    accountdomain.Service
	accountRepo accountdomain.Repository
	repo        domain.Repository
	cache       cache.ResponseCache
	providers   *ai.Registry
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &service{
		db:          p.DB,
		log:         p.Log.Named("chat.service"),
		cfg:         p.Config,
		clock:       p.Clock,
		idGenerator: p.IDGenerator,
		accounts:    p.Accounts,
		accountRepo: p.AccountRepo,
		repo:        p.Repo,
		cache:       p.Cache,
		providers:   p.Providers,
		metrics:     p.Metrics,
	}
}

func (s *service) Ask(ctx context.Context, req domain.AskRequest) (domain.AskResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return domain.AskResponse{}, domain.ErrEmptyMessage
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = s.cfg.DefaultModel
	}
	email, err := accountdomain.NormalizeEmail(req.Email)
	if err != nil {
		return domain.AskResponse{}, err
	}

	if req.UseCache {
		answer, hit, err := s.cache.Get(ctx, model, message)
		if err != nil {
			s.log.Warn("cache lookup failed", zap.Error(err))
		} else if hit {
			s.metrics.RecordChatRequest(ctx, model, true)
			return domain.AskResponse{
				Answer:           answer,
				Model:            model,
				Cached:           true,
				CreditsRemaining: s.balanceOf(ctx, email),
			}, nil
		}
	}

	if _, err := s.accounts.Authorize(ctx, email); err != nil {
		return domain.AskResponse{}, err
	}

	generator := s.providers.Resolve(model)
	answer, err := generator.Generate(ctx, aidomain.Request{
		Model:        model,
		SystemPrompt: systemPrompt,
		Message:      message,
		MaxTokens:    defaultMaxTokens,
		Temperature:  defaultTemperature,
	})
	if err != nil {
		s.metrics.RecordProviderError(ctx, generator.Provider())
		s.log.Error("provider call failed",
			zap.String("provider", generator.Provider()),
			zap.String("model", model),
			zap.Error(err),
		)
		return domain.AskResponse{}, err
	}

	// The debit and the history row commit together. A concurrent request
	// that drains the last credit first makes the conditional decrement
	// touch zero rows, and this answer is discarded uncharged.
	var remaining int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		debited, err := s.accountRepo.DecrementIfPositive(ctx, tx, email)
		if err != nil {
			return err
		}
		if !debited {
			account, err := s.accountRepo.Find(ctx, tx, email)
			if err != nil {
				return err
			}
			if account == nil {
				return accountdomain.ErrAccountNotFound
			}
			return accountdomain.ErrInsufficientCredits
		}

		account, err := s.accountRepo.Find(ctx, tx, email)
		if err != nil {
			return err
		}
		remaining = account.Credits

		return s.repo.Append(ctx, tx, &domain.ChatRecord{
			ID:          s.idGenerator.Generate(),
			Email:       email,
			Question:    message,
			Answer:      answer.Text,
			Model:       model,
			Provider:    answer.Provider,
			CreditsUsed: 1,
			CreatedAt:   s.clock.Now(),
		})
	})
	if err != nil {
		return domain.AskResponse{}, err
	}

	if cacheErr := s.cache.Set(ctx, model, message, answer.Text); cacheErr != nil {
		s.log.Warn("cache write failed", zap.Error(cacheErr))
	}
	s.metrics.RecordChatRequest(ctx, model, false)

	return domain.AskResponse{
		Answer:           answer.Text,
		Model:            model,
		Provider:         answer.Provider,
		CreditsRemaining: remaining,
	}, nil
}

func (s *service) History(ctx context.Context, email string, limit int) ([]domain.ChatRecord, error) {
	email, err := accountdomain.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByEmail(ctx, s.db, email, limit)
}

// balanceOf reports the caller's balance without provisioning an account.
// A cache hit must never mutate the ledger, so an unknown account simply
// reads as zero.
func (s *service) balanceOf(ctx context.Context, email string) int64 {
	balance, err := s.accounts.Get(ctx, email)
	if err != nil {
		if !errors.Is(err, accountdomain.ErrAccountNotFound) && !errors.Is(err, accountdomain.ErrInvalidEmail) {
			s.log.Warn("balance lookup failed", zap.Error(err))
		}
		return 0
	}
	return balance.Credits
}
