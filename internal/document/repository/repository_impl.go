package repository

import (
	"context"

	"github.com/lexorahq/lexora/internal/document/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, doc *domain.Document) error
	ListByEmail(ctx context.Context, db *gorm.DB, email string, limit int) ([]domain.Document, error)
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, doc *domain.Document) error {
	return db.WithContext(ctx).Exec(`
		INSERT INTO documents (id, email, filename, content, analysis, kind, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Email, doc.Filename, doc.Content, doc.Analysis, doc.Kind, doc.CreatedAt).Error
}

func (r *repo) ListByEmail(ctx context.Context, db *gorm.DB, email string, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = 20
	}
	var docs []domain.Document
	err := db.WithContext(ctx).Raw(`
		SELECT id, email, filename, content, analysis, kind, created_at
		FROM documents
		WHERE email = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, email, limit).Scan(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}
