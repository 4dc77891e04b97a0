package bybit

import (
	"go.uber.org/fx"

	"trade_relay/internal/modules/bybit/service"
	"trade_relay/internal/runner"
)

func Module() fx.Option {
	return fx.Module("bybit",
		fx.Provide(
			service.NewClient, // *service.Client
		),
		// Адаптер: *service.Client -> runner.Exchange
		fx.Provide(
			func(c *service.Client) runner.Exchange {
				return c
			},
		),
	)
}
