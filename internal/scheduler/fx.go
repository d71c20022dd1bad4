package scheduler

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, cfg Config, sched *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := sched.Start(); err != nil {
				return err
			}
			if cfg.RunOnStartup {
				go func() {
					if err := sched.RunOnce(context.Background()); err != nil {
						sched.log.Warn("startup run failed", zap.Error(err))
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return sched.Stop(ctx)
		},
	})
}
