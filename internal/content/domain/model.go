package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidPost  = errors.New("invalid_post")
	ErrPostNotFound = errors.New("post_not_found")
)

type Post struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Title     string       `json:"title"`
	Slug      string       `gorm:"uniqueIndex" json:"slug"`
	Content   string       `gorm:"type:text" json:"content"`
	Author    string       `json:"author"`
	CreatedAt time.Time    `json:"created_at"`
}

func (Post) TableName() string {
	return "blog_posts"
}

type CreatePostRequest struct {
	Title   string
	Content string
	Author  string
}

type Service interface {
	Create(ctx context.Context, req CreatePostRequest) (Post, error)
	Latest(ctx context.Context, limit int) ([]Post, error)
	GetBySlug(ctx context.Context, slug string) (Post, error)
}
