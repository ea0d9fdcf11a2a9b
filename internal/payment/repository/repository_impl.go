package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lexorahq/lexora/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertEvent(ctx context.Context, db *gorm.DB, event *domain.EventRecord) (bool, error) {
	result := db.WithContext(ctx).Exec(`
		INSERT INTO billing_events (id, provider, provider_event_id, event_type, email, plan, payload, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (provider, provider_event_id) DO NOTHING
	`, event.ID, event.Provider, event.ProviderEventID, event.EventType, event.Email, event.Plan, event.Payload, event.ReceivedAt)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindEvent(ctx context.Context, db *gorm.DB, provider, providerEventID string) (*domain.EventRecord, error) {
	var record domain.EventRecord
	err := db.WithContext(ctx).Raw(`
		SELECT id, provider, provider_event_id, event_type, email, plan, payload, received_at, processed_at
		FROM billing_events
		WHERE provider = ? AND provider_event_id = ?
	`, provider, providerEventID).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) MarkProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error {
	return db.WithContext(ctx).Exec(`
		UPDATE billing_events SET processed_at = ? WHERE id = ?
	`, processedAt, id).Error
}
