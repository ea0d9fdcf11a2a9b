package service

import (
	"context"
	"strings"

	accountdomain "github.com/lexorahq/lexora/internal/account/domain"
	"github.com/lexorahq/lexora/internal/config"
	"github.com/lexorahq/lexora/internal/coupon/domain"
	"github.com/lexorahq/lexora/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Repo        domain.Repository
	AccountRepo accountdomain.Repository
	Plans       *config.PlanConfigHolder
	Metrics     *metrics.Metrics `optional:"true"`
}

type service struct {
	db          *gorm.DB
	log         *zap.Logger
	repo        domain.Repository
	accountRepo accountdomain.Repository
	plans       *config.PlanConfigHolder
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &service{
		db:          p.DB,
		log:         p.Log.Named("coupon.service"),
		repo:        p.Repo,
		accountRepo: p.AccountRepo,
		plans:       p.Plans,
		metrics:     p.Metrics,
	}
}

func (s *service) Redeem(ctx context.Context, email, code string) (domain.RedeemResult, error) {
	email, err := accountdomain.NormalizeEmail(email)
	if err != nil {
		return domain.RedeemResult{}, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.RedeemResult{}, domain.ErrInvalidCode
	}

	freeAllotment, _ := s.plans.Allotment(config.PlanFree)

	var result domain.RedeemResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		coupon, err := s.repo.Find(ctx, tx, code)
		if err != nil {
			return err
		}
		if coupon == nil {
			return domain.ErrCouponNotFound
		}

		// The use and the bonus commit together. Losing the race for the
		// last use rolls everything back, so no credits are granted off
		// an exhausted coupon.
		consumed, err := s.repo.ConsumeUse(ctx, tx, code)
		if err != nil {
			return err
		}
		if !consumed {
			return domain.ErrCouponExhausted
		}

		if err := s.accountRepo.Ensure(ctx, tx, email, freeAllotment, config.PlanFree); err != nil {
			return err
		}
		if err := s.accountRepo.AddCredits(ctx, tx, email, coupon.CreditsBonus, config.PlanBeta); err != nil {
			return err
		}

		account, err := s.accountRepo.Find(ctx, tx, email)
		if err != nil {
			return err
		}
		if account == nil {
			return accountdomain.ErrAccountNotFound
		}

		result = domain.RedeemResult{
			Credits: account.Credits,
			Plan:    account.Plan,
			Bonus:   coupon.CreditsBonus,
		}
		return nil
	})
	if err != nil {
		return domain.RedeemResult{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordCouponRedemption(ctx, code)
	}
	s.log.Info("coupon redeemed",
		zap.String("code", code),
		zap.Int64("bonus", result.Bonus),
	)
	return result, nil
}
