package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Append(ctx context.Context, db *gorm.DB, record *ChatRecord) error
	ListByEmail(ctx context.Context, db *gorm.DB, email string, limit int) ([]ChatRecord, error)
	CountSince(ctx context.Context, db *gorm.DB, since time.Time) (int64, error)
	TopQuestions(ctx context.Context, db *gorm.DB, limit int) ([]QuestionCount, error)
}
