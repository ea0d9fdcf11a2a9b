package chat

import (
	"github.com/lexorahq/lexora/internal/chat/repository"
	"github.com/lexorahq/lexora/internal/chat/service"
	"go.uber.org/fx"
)

var Module = fx.Module("chat",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
