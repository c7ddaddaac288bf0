package apikey

import (
	"context"

	apikeydomain "github.com/smallbiznis/eragon/internal/apikey/domain"
	"github.com/smallbiznis/eragon/internal/apikey/repository"
	"github.com/smallbiznis/eragon/internal/apikey/service"
	"github.com/smallbiznis/eragon/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("apikey.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Invoke(registerBootstrap),
)

func registerBootstrap(lc fx.Lifecycle, cfg config.Config, svc apikeydomain.Service) {
	if cfg.AdminAPIKey == "" {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return svc.EnsureBootstrap(ctx, cfg.AdminAPIKey)
		},
	})
}
