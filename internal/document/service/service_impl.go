package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/lexorahq/lexora/internal/account/domain"
	"github.com/lexorahq/lexora/internal/ai"
	aidomain "github.com/lexorahq/lexora/internal/ai/domain"
	"github.com/lexorahq/lexora/internal/clock"
	"github.com/lexorahq/lexora/internal/config"
	"github.com/lexorahq/lexora/internal/document/domain"
	"github.com/lexorahq/lexora/internal/document/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// reviewerPrompt drives the document analysis pass.
const reviewerPrompt = `Analise este documento jurídico e identifique pontos relevantes para segunda fase penal OAB.`

const analysisMaxTokens = 500

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Config      config.Config
	Clock       clock.Clock
	IDGenerator *snowflake.Node
	Repo        repository.Repository
	Extractor   domain.Extractor
	Providers   *ai.Registry
}

type service struct {
	db          *gorm.DB
	log         *zap.Logger
	cfg         config.Config
	clock       clock.Clock
	idGenerator *snowflake.Node
	repo        repository.Repository
	extractor   domain.Extractor
	providers   *ai.Registry
}

func New(p Params) domain.Service {
	return &service{
		db:          p.DB,
		log:         p.Log.Named("document.service"),
		cfg:         p.Config,
		clock:       p.Clock,
		idGenerator: p.IDGenerator,
		repo:        p.Repo,
		extractor:   p.Extractor,
		providers:   p.Providers,
	}
}

func (s *service) Analyze(ctx context.Context, req domain.AnalyzeRequest) (domain.AnalyzeResult, error) {
	email, err := accountdomain.NormalizeEmail(req.Email)
	if err != nil {
		return domain.AnalyzeResult{}, err
	}
	if len(req.Data) == 0 {
		return domain.AnalyzeResult{}, domain.ErrEmptyFile
	}
	if !s.extractor.Supports(req.ContentType) {
		return domain.AnalyzeResult{}, domain.ErrUnsupportedType
	}

	text, err := s.extractor.Extract(ctx, req.Filename, req.ContentType, req.Data)
	if err != nil {
		return domain.AnalyzeResult{}, err
	}

	generator := s.providers.Resolve(s.cfg.DefaultModel)
	analysis, err := generator.Generate(ctx, aidomain.Request{
		Model:        s.cfg.DefaultModel,
		SystemPrompt: reviewerPrompt,
		Message:      text,
		MaxTokens:    analysisMaxTokens,
	})
	if err != nil {
		s.log.Error("document analysis failed",
			zap.String("provider", generator.Provider()),
			zap.Error(err),
		)
		return domain.AnalyzeResult{}, err
	}

	doc := domain.Document{
		ID:        s.idGenerator.Generate(),
		Email:     email,
		Filename:  req.Filename,
		Content:   text,
		Analysis:  analysis.Text,
		Kind:      "penal",
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, &doc); err != nil {
		return domain.AnalyzeResult{}, err
	}

	return domain.AnalyzeResult{DocumentID: doc.ID, Analysis: doc.Analysis}, nil
}

func (s *service) ListByEmail(ctx context.Context, email string, limit int) ([]domain.Document, error) {
	email, err := accountdomain.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByEmail(ctx, s.db, email, limit)
}
