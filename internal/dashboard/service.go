package dashboard

import (
	"context"
	"time"

	chatdomain "github.com/lexorahq/lexora/internal/chat/domain"
	"github.com/lexorahq/lexora/internal/clock"
	"github.com/lexorahq/lexora/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stats is the admin overview payload.
type Stats struct {
	Accounts            int64                      `json:"accounts"`
	ChatsToday          int64                      `json:"chats_today"`
	ActiveSubscriptions int64                      `json:"active_subscriptions"`
	TopQuestions        []chatdomain.QuestionCount `json:"top_questions"`
}

type Service interface {
	Overview(ctx context.Context) (Stats, error)
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	ChatRepo chatdomain.Repository
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	chatRepo chatdomain.Repository
}

func New(p Params) Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("dashboard.service"),
		clock:    p.Clock,
		chatRepo: p.ChatRepo,
	}
}

func (s *service) Overview(ctx context.Context) (Stats, error) {
	var stats Stats

	err := s.db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM profiles`).Scan(&stats.Accounts).Error
	if err != nil {
		return Stats{}, err
	}

	err = s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM profiles WHERE plan IN (?, ?, ?)
	`, config.PlanBasic, config.PlanPro, config.PlanPremium).Scan(&stats.ActiveSubscriptions).Error
	if err != nil {
		return Stats{}, err
	}

	stats.ChatsToday, err = s.chatRepo.CountSince(ctx, s.db, s.startOfToday())
	if err != nil {
		return Stats{}, err
	}

	stats.TopQuestions, err = s.chatRepo.TopQuestions(ctx, s.db, 5)
	if err != nil {
		return Stats{}, err
	}

	return stats, nil
}

func (s *service) startOfToday() time.Time {
	now := s.clock.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

var Module = fx.Module("dashboard",
	fx.Provide(New),
)
