package content

import (
	"github.com/lexorahq/lexora/internal/content/repository"
	"github.com/lexorahq/lexora/internal/content/service"
	"go.uber.org/fx"
)

var Module = fx.Module("content",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
