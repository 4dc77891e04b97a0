package runner

import (
	"context"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			NewExecutor, // *Executor
		),
		fx.Invoke(func(
			lc fx.Lifecycle,
			e *Executor,
			inbox Inbox,
			ctx context.Context,
		) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					// Один воркер: сигналы строго последовательно, в порядке прихода.
					go func() {
						for {
							select {
							case <-ctx.Done():
								return
							case text, ok := <-inbox:
								if !ok {
									return
								}
								e.HandleMessage(ctx, text)
							}
						}
					}()
					return nil
				},
			})
		}),
	)
}
