package coupon

import (
	"github.com/lexorahq/lexora/internal/coupon/repository"
	"github.com/lexorahq/lexora/internal/coupon/service"
	"go.uber.org/fx"
)

var Module = fx.Module("coupon",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
