package repository

import (
	"context"

	"github.com/lexorahq/lexora/internal/content/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, post *domain.Post) error
	Latest(ctx context.Context, db *gorm.DB, limit int) ([]domain.Post, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Post, error)
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, post *domain.Post) error {
	return db.WithContext(ctx).Exec(`
		INSERT INTO blog_posts (id, title, slug, content, author, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, post.ID, post.Title, post.Slug, post.Content, post.Author, post.CreatedAt).Error
}

func (r *repo) Latest(ctx context.Context, db *gorm.DB, limit int) ([]domain.Post, error) {
	if limit <= 0 {
		limit = 10
	}
	var posts []domain.Post
	err := db.WithContext(ctx).Raw(`
		SELECT id, title, slug, content, author, created_at
		FROM blog_posts
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit).Scan(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Post, error) {
	var post domain.Post
	err := db.WithContext(ctx).Raw(`
		SELECT id, title, slug, content, author, created_at
		FROM blog_posts
		WHERE slug = ?
	`, slug).Scan(&post).Error
	if err != nil {
		return nil, err
	}
	if post.ID == 0 {
		return nil, nil
	}
	return &post, nil
}
