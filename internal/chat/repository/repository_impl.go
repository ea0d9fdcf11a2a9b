package repository

import (
	"context"
	"time"

	"github.com/lexorahq/lexora/internal/chat/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Append(ctx context.Context, db *gorm.DB, record *domain.ChatRecord) error {
	return db.WithContext(ctx).Exec(`
		INSERT INTO chat_history (id, email, question, answer, model, provider, credits_used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.Email, record.Question, record.Answer, record.Model, record.Provider, record.CreditsUsed, record.CreatedAt).Error
}

func (r *repo) ListByEmail(ctx context.Context, db *gorm.DB, email string, limit int) ([]domain.ChatRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []domain.ChatRecord
	err := db.WithContext(ctx).Raw(`
		SELECT id, email, question, answer, model, provider, credits_used, created_at
		FROM chat_history
		WHERE email = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, email, limit).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) CountSince(ctx context.Context, db *gorm.DB, since time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM chat_history WHERE created_at >= ?
	`, since).Scan(&count).Error
	return count, err
}

func (r *repo) TopQuestions(ctx context.Context, db *gorm.DB, limit int) ([]domain.QuestionCount, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []domain.QuestionCount
	err := db.WithContext(ctx).Raw(`
		SELECT question, COUNT(*) AS count
		FROM chat_history
		GROUP BY question
		ORDER BY count DESC
		LIMIT ?
	`, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
