package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/lexorahq/lexora/internal/account/domain"
	"github.com/lexorahq/lexora/internal/clock"
	"github.com/lexorahq/lexora/internal/config"
	"github.com/lexorahq/lexora/internal/observability/metrics"
	"github.com/lexorahq/lexora/internal/payment/adapters"
	paymentdomain "github.com/lexorahq/lexora/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     paymentdomain.Repository
	Adapters *adapters.Registry
	Accounts accountdomain.Service
	Plans    *config.PlanConfigHolder
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     paymentdomain.Repository
	adapters *adapters.Registry
	accounts accountdomain.Service
	plans    *config.PlanConfigHolder
	metrics  *metrics.Metrics
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("payment.webhook"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		adapters: p.Adapters,
		accounts: p.Accounts,
		plans:    p.Plans,
		metrics:  p.Metrics,
	}
}

func (s *Service) IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return paymentdomain.ErrInvalidProvider
	}
	adapter, err := s.adapters.Get(provider)
	if err != nil {
		return err
	}
	if !json.Valid(payload) {
		return paymentdomain.ErrInvalidPayload
	}

	if err := adapter.Verify(ctx, payload, headers); err != nil {
		return err
	}

	event, err := adapter.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			s.log.Debug("webhook event ignored", zap.String("provider", provider))
			return nil
		}
		return err
	}

	email, err := accountdomain.NormalizeEmail(event.Email)
	if err != nil {
		return paymentdomain.ErrInvalidEvent
	}
	plan := strings.ToLower(strings.TrimSpace(event.Plan))
	allotment, ok := s.plans.Allotment(plan)
	if !ok {
		s.log.Warn("webhook names unknown plan",
			zap.String("provider", provider),
			zap.String("plan", plan),
		)
		return paymentdomain.ErrUnknownPlan
	}

	now := s.clock.Now()
	received := paymentdomain.EventRecord{
		ID:              s.genID.Generate(),
		Provider:        provider,
		ProviderEventID: event.ProviderEventID,
		EventType:       event.Type,
		Email:           email,
		Plan:            plan,
		Payload:         datatypes.JSON(event.RawPayload),
		ReceivedAt:      now,
	}

	inserted, err := s.repo.InsertEvent(ctx, s.db, &received)
	if err != nil {
		return err
	}
	stored := &received
	if !inserted {
		stored, err = s.repo.FindEvent(ctx, s.db, provider, event.ProviderEventID)
		if err != nil {
			return err
		}
		if stored == nil {
			return paymentdomain.ErrInvalidEvent
		}
		if stored.ProcessedAt != nil {
			return paymentdomain.ErrEventAlreadyProcessed
		}
	}

	// A crash between the reset and markProcessed leaves the event
	// unprocessed; redelivery reruns the reset, which converges on the
	// same balance because it replaces rather than adds.
	if err := s.accounts.ResetForSubscription(ctx, email, plan, allotment, event.CustomerRef); err != nil {
		return err
	}

	if err := s.repo.MarkProcessed(ctx, s.db, stored.ID, now); err != nil {
		return err
	}

	if inserted && s.metrics != nil {
		s.metrics.RecordPaymentEvent(ctx, provider, event.Type)
	}
	s.log.Info("subscription event processed",
		zap.String("provider", provider),
		zap.String("event_id", event.ProviderEventID),
		zap.String("plan", plan),
	)
	return nil
}
