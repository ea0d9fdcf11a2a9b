package payment

import (
	"github.com/lexorahq/lexora/internal/clock"
	"github.com/lexorahq/lexora/internal/config"
	"github.com/lexorahq/lexora/internal/payment/adapters"
	"github.com/lexorahq/lexora/internal/payment/adapters/stripe"
	"github.com/lexorahq/lexora/internal/payment/checkout"
	paymentdomain "github.com/lexorahq/lexora/internal/payment/domain"
	"github.com/lexorahq/lexora/internal/payment/repository"
	"github.com/lexorahq/lexora/internal/payment/webhook"
	"go.uber.org/fx"
)

var Module = fx.Module("payment",
	fx.Provide(newStripeAdapter),
	fx.Provide(newAdapterRegistry),
	fx.Provide(func(a *stripe.Adapter) paymentdomain.CheckoutProvider { return a }),
	fx.Provide(repository.Provide),
	fx.Provide(webhook.NewService),
	fx.Provide(checkout.New),
)

func newStripeAdapter(cfg config.Config, clk clock.Clock) (*stripe.Adapter, error) {
	return stripe.New(stripe.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		BaseURL:       cfg.StripeBaseURL,
		SuccessURL:    cfg.CheckoutSuccessURL,
		CancelURL:     cfg.CheckoutCancelURL,
	}, clk)
}

func newAdapterRegistry(stripeAdapter *stripe.Adapter) *adapters.Registry {
	return adapters.NewRegistry(stripeAdapter)
}
