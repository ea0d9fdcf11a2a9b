package document

import (
	"github.com/lexorahq/lexora/internal/document/domain"
	"github.com/lexorahq/lexora/internal/document/repository"
	"github.com/lexorahq/lexora/internal/document/service"
	"go.uber.org/fx"
)

var Module = fx.Module("document",
	fx.Provide(repository.Provide),
	fx.Provide(func() domain.Extractor { return NewPlainTextExtractor() }),
	fx.Provide(service.New),
)
