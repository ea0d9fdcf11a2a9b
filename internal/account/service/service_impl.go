package service

import (
	"context"

	"github.com/lexorahq/lexora/internal/account/domain"
	"github.com/lexorahq/lexora/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	Plans *config.PlanConfigHolder
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	plans *config.PlanConfigHolder
}

func New(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("account.service"),
		repo:  p.Repo,
		plans: p.Plans,
	}
}

func (s *service) Get(ctx context.Context, email string) (domain.Balance, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.Balance{}, err
	}

	account, err := s.repo.Find(ctx, s.db, email)
	if err != nil {
		return domain.Balance{}, err
	}
	if account == nil {
		return domain.Balance{}, domain.ErrAccountNotFound
	}
	return domain.Balance{Credits: account.Credits, Plan: account.Plan}, nil
}

func (s *service) Authorize(ctx context.Context, email string) (domain.Balance, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.Balance{}, err
	}

	if err := s.ensure(ctx, s.db, email); err != nil {
		return domain.Balance{}, err
	}

	account, err := s.repo.Find(ctx, s.db, email)
	if err != nil {
		return domain.Balance{}, err
	}
	if account == nil {
		return domain.Balance{}, domain.ErrAccountNotFound
	}
	if account.Credits <= 0 {
		return domain.Balance{Credits: 0, Plan: account.Plan}, domain.ErrInsufficientCredits
	}
	return domain.Balance{Credits: account.Credits, Plan: account.Plan}, nil
}

func (s *service) Consume(ctx context.Context, email string) (int64, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return 0, err
	}

	debited, err := s.repo.DecrementIfPositive(ctx, s.db, email)
	if err != nil {
		return 0, err
	}
	if !debited {
		account, err := s.repo.Find(ctx, s.db, email)
		if err != nil {
			return 0, err
		}
		if account == nil {
			return 0, domain.ErrAccountNotFound
		}
		return 0, domain.ErrInsufficientCredits
	}

	account, err := s.repo.Find(ctx, s.db, email)
	if err != nil {
		return 0, err
	}
	if account == nil {
		return 0, domain.ErrAccountNotFound
	}
	return account.Credits, nil
}

func (s *service) GrantBonus(ctx context.Context, email string, amount int64, newPlan string) (int64, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	if err := s.ensure(ctx, s.db, email); err != nil {
		return 0, err
	}
	if err := s.repo.AddCredits(ctx, s.db, email, amount, newPlan); err != nil {
		return 0, err
	}

	account, err := s.repo.Find(ctx, s.db, email)
	if err != nil {
		return 0, err
	}
	if account == nil {
		return 0, domain.ErrAccountNotFound
	}

	s.log.Info("bonus granted",
		zap.String("plan", newPlan),
		zap.Int64("amount", amount),
	)
	return account.Credits, nil
}

func (s *service) ResetForSubscription(ctx context.Context, email, plan string, credits int64, billingCustomerRef string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if credits < 0 {
		return domain.ErrInvalidAmount
	}

	if err := s.ensure(ctx, s.db, email); err != nil {
		return err
	}
	if err := s.repo.Replace(ctx, s.db, email, plan, credits, billingCustomerRef); err != nil {
		return err
	}

	s.log.Info("subscription reset applied",
		zap.String("plan", plan),
		zap.Int64("credits", credits),
	)
	return nil
}

func (s *service) ensure(ctx context.Context, db *gorm.DB, email string) error {
	allotment, ok := s.plans.Allotment(config.PlanFree)
	if !ok {
		allotment = 0
	}
	return s.repo.Ensure(ctx, db, email, allotment, config.PlanFree)
}

func normalizeEmail(email string) (string, error) {
	return domain.NormalizeEmail(email)
}
