package salesmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/salesdesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("sales.metrics",
	fx.Provide(func() (*Collector, error) {
		return NewCollector(prometheus.DefaultRegisterer)
	}),
	fx.Provide(NewPusher),
	fx.Invoke(startPushWorker),
)

// startPushWorker pushes the default registry on a fixed interval while the app runs.
func startPushWorker(lc fx.Lifecycle, cfg config.Config, pusher Pusher, logger *zap.Logger) {
	if pusher == nil {
		return
	}
	logger = logger.Named("sales.metrics")
	interval := cfg.MetricsPush.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("starting metrics push worker", zap.Duration("interval", interval))
			go func() {
				defer close(done)
				ticker := time.NewTicker(interval)
				defer ticker.Stop()

				for {
					select {
					case <-ticker.C:
						pushOnce(ctx, pusher, logger)
					case <-ctx.Done():
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			// final flush so short-lived runs are not lost
			pushOnce(stopCtx, pusher, logger)
			return nil
		},
	})
}

func pushOnce(ctx context.Context, pusher Pusher, logger *zap.Logger) {
	pushCtx, cancel := context.WithTimeout(ctx, defaultPushTimeout)
	defer cancel()
	if err := pusher.Push(pushCtx, prometheus.DefaultGatherer); err != nil {
		logger.Warn("metrics push failed", zap.Error(err))
	}
}
