package legacycoupon

import (
	"github.com/smallbiznis/eragon/internal/legacycoupon/repository"
	"github.com/smallbiznis/eragon/internal/legacycoupon/service"
	"go.uber.org/fx"
)

var Module = fx.Module("legacycoupon.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
