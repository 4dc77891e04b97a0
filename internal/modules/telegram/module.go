package telegram

import (
	"context"

	"go.uber.org/fx"

	"trade_relay/internal/auth"
	"trade_relay/internal/modules/telegram/service"
	websvc "trade_relay/internal/modules/web/service"
	"trade_relay/internal/notify"
	"trade_relay/internal/runner"
	"trade_relay/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("telegram",
		// 1. MTProto-клиент как *service.Service
		fx.Provide(
			service.NewService,
		),

		// 2. Адаптеры: *service.Service -> auth.Gateway, сессия логина, inbox раннера
		fx.Provide(
			func(s *service.Service) auth.Gateway {
				return s
			},
			auth.NewSession,
			func(s *service.Service) runner.Inbox {
				return s.Messages()
			},
		),

		// Запуск клиента через Lifecycle
		fx.Invoke(func(
			lc fx.Lifecycle,
			s *service.Service,
			sess *auth.Session,
			state *websvc.State,
			n notify.Notifier,
			ctx context.Context,
		) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go func() {
						err := s.Run(ctx, sess, state)
						if err != nil && ctx.Err() == nil {
							// Диспатч сигналов больше не включится, но OTP/health
							// поверхность продолжает обслуживаться.
							logger.Error("telegram login failed permanently: %v", err)
							n.Sendf("❌ Telegram login failed permanently: %v", err)
						}
					}()
					return nil
				},
			})
		}),
	)
}
