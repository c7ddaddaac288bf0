package invalidation

import "go.uber.org/fx"

var Module = fx.Module("invalidation",
	fx.Provide(
		NewRegistry,
		func(r *Registry) Dispatcher { return r },
	),
	fx.Invoke(RegisterCacheHooks),
)
