package runner

import (
	"context"

	"github.com/shopspring/decimal"

	"trade_relay/internal/models"
	websvc "trade_relay/internal/modules/web/service"
)

// Inbox — поток текстов входящих сообщений от назначенного отправителя.
// Ленивый и фактически бесконечный; потребляется строго по одному.
type Inbox <-chan string

// Exchange — шлюз биржи, три синхронных операции (см. bybit module).
type Exchange interface {
	GetStepSize(ctx context.Context, symbol string) (models.InstrumentRule, error)
	GetAccountSnapshot(ctx context.Context) (models.AccountSnapshot, error)
	PlaceBracketOrder(ctx context.Context, sig models.TradeSignal, qty decimal.Decimal) (models.OrderResult, error)
}

// Notifier — операторский канал для трейд-репортов (notify module).
type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// Executor ведёт один сигнал через parse → step size → balance → sizing → order.
// Сообщения обрабатываются последовательно, без перекрытия: чтение баланса
// и постановка ордера на одном аккаунте не должны чередоваться.
type Executor struct {
	ex    Exchange
	n     Notifier
	state *websvc.State
}

func NewExecutor(ex Exchange, n Notifier, state *websvc.State) *Executor {
	return &Executor{
		ex:    ex,
		n:     n,
		state: state,
	}
}
