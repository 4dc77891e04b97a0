package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"trade_relay/internal/modules/bybit"
	"trade_relay/internal/modules/config"
	"trade_relay/internal/modules/storage"
	"trade_relay/internal/modules/telegram"
	"trade_relay/internal/modules/web"
	"trade_relay/internal/notify"
	"trade_relay/internal/runner"
	"trade_relay/pkg/logger"
	"trade_relay/pkg/tracing"
)

func main() {
	logger.SetServiceName("trade_relay")
	closeLogger, err := logger.Init("")
	if err != nil {
		log.Fatal(err)
	}
	defer closeLogger()

	app := fx.New(
		fx.Provide(
			func(lc fx.Lifecycle) context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				lc.Append(fx.Hook{
					OnStop: func(context.Context) error {
						cancel()
						return nil
					},
				})
				return ctx
			},
		),
		config.Module(),
		storage.Module(),
		bybit.Module(),
		notify.Module(),
		web.Module(),
		runner.Module(),
		telegram.Module(),
		fx.Invoke(setupObservability),
	)
	app.Run()
}

func setupObservability(lc fx.Lifecycle, cfg *config.Config) error {
	if cfg.LogFile != "" {
		if _, err := logger.Init(cfg.LogFile); err != nil {
			return err
		}
	}

	if cfg.Jaeger.Host == "" {
		return nil
	}
	_, closer, err := tracing.InitTracer(tracing.Config{
		ServiceName: "trade_relay",
		Host:        cfg.Jaeger.Host,
		Port:        cfg.Jaeger.Port,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return closer.Close()
		},
	})
	return nil
}
