package account

import (
	"github.com/lexorahq/lexora/internal/account/repository"
	"github.com/lexorahq/lexora/internal/account/service"
	"go.uber.org/fx"
)

var Module = fx.Module("account",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
