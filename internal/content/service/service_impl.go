package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/lexorahq/lexora/internal/clock"
	"github.com/lexorahq/lexora/internal/content/domain"
	"github.com/lexorahq/lexora/internal/content/repository"
	"github.com/lexorahq/lexora/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	IDGenerator *snowflake.Node
	Repo        repository.Repository
}

type service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	idGenerator *snowflake.Node
	repo        repository.Repository
}

func New(p Params) domain.Service {
	return &service{
		db:          p.DB,
		log:         p.Log.Named("content.service"),
		clock:       p.Clock,
		idGenerator: p.IDGenerator,
		repo:        p.Repo,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreatePostRequest) (domain.Post, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return domain.Post{}, domain.ErrInvalidPost
	}

	post := domain.Post{
		ID:        s.idGenerator.Generate(),
		Title:     title,
		Slug:      slug.Make(title),
		Content:   content,
		Author:    strings.TrimSpace(req.Author),
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, &post); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Same title posted twice; disambiguate with the id.
			post.Slug = post.Slug + "-" + post.ID.String()
			if retryErr := s.repo.Insert(ctx, s.db, &post); retryErr != nil {
				return domain.Post{}, retryErr
			}
			return post, nil
		}
		return domain.Post{}, err
	}
	return post, nil
}

func (s *service) Latest(ctx context.Context, limit int) ([]domain.Post, error) {
	return s.repo.Latest(ctx, s.db, limit)
}

func (s *service) GetBySlug(ctx context.Context, slugValue string) (domain.Post, error) {
	post, err := s.repo.FindBySlug(ctx, s.db, strings.TrimSpace(slugValue))
	if err != nil {
		return domain.Post{}, err
	}
	if post == nil {
		return domain.Post{}, domain.ErrPostNotFound
	}
	return *post, nil
}
