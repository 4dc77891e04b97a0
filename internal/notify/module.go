package notify

import (
	"go.uber.org/fx"

	"trade_relay/internal/modules/config"
	"trade_relay/internal/runner"
)

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(
			func(cfg *config.Config) (Notifier, error) {
				if cfg.Notify.BotToken == "" || cfg.Notify.ChatID == 0 {
					return NewStdout(), nil
				}
				return NewTelegram(cfg.Notify.BotToken, cfg.Notify.ChatID)
			},
		),
		// Адаптер: notify.Notifier -> runner.Notifier
		fx.Provide(
			func(n Notifier) runner.Notifier {
				return n
			},
		),
	)
}
