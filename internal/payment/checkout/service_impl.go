package checkout

import (
	"context"
	"strings"

	accountdomain "github.com/lexorahq/lexora/internal/account/domain"
	"github.com/lexorahq/lexora/internal/config"
	paymentdomain "github.com/lexorahq/lexora/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Plans    *config.PlanConfigHolder
	Provider paymentdomain.CheckoutProvider
}

type service struct {
	log      *zap.Logger
	plans    *config.PlanConfigHolder
	provider paymentdomain.CheckoutProvider
}

func New(p Params) paymentdomain.CheckoutService {
	return &service{
		log:      p.Log.Named("payment.checkout"),
		plans:    p.Plans,
		provider: p.Provider,
	}
}

func (s *service) CreateCheckout(ctx context.Context, req paymentdomain.CheckoutRequest) (paymentdomain.CheckoutSession, error) {
	email, err := accountdomain.NormalizeEmail(req.Email)
	if err != nil {
		return paymentdomain.CheckoutSession{}, paymentdomain.ErrInvalidEvent
	}
	plan := strings.ToLower(strings.TrimSpace(req.Plan))

	priceID, ok := s.plans.PriceID(plan)
	if !ok || priceID == "" {
		return paymentdomain.CheckoutSession{}, paymentdomain.ErrUnknownPlan
	}

	session, err := s.provider.CreateCheckoutSession(ctx, paymentdomain.CheckoutRequest{Email: email, Plan: plan}, priceID)
	if err != nil {
		return paymentdomain.CheckoutSession{}, err
	}

	s.log.Info("checkout session created",
		zap.String("plan", plan),
		zap.String("session_id", session.ID),
	)
	return session, nil
}
