package coupon

import (
	"github.com/smallbiznis/eragon/internal/coupon/repository"
	"github.com/smallbiznis/eragon/internal/coupon/service"
	"go.uber.org/fx"
)

var Module = fx.Module("coupon.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
