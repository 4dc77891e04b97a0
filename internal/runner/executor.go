package runner

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"trade_relay/internal/models"
	"trade_relay/internal/signal"
	"trade_relay/pkg/logger"
)

// HandleMessage обрабатывает одно входящее сообщение целиком.
// Каждый шаг при отказе логируется, сообщение отбрасывается —
// ни одна ошибка пайплайна не роняет слушатель и не задевает следующий сигнал.
func (e *Executor) HandleMessage(ctx context.Context, text string) {
	span := opentracing.StartSpan("handle_signal")
	defer span.Finish()
	ctx = opentracing.ContextWithSpan(ctx, span)

	defer e.state.TouchSignal()

	sig, err := signal.Parse(text)
	if err != nil {
		logger.Error("malformed signal dropped: %v; raw=%q", err, text)
		return
	}
	span.SetTag("symbol", sig.Symbol)
	logger.Info("signal: symbol=%s price=%s sl=%s tp=%s",
		sig.Symbol, sig.Price, sig.StopLoss, sig.TakeProfit)

	rule, err := e.ex.GetStepSize(ctx, sig.Symbol)
	if err != nil {
		logger.Error("step size fetch failed for %s: %v", sig.Symbol, err)
		return
	}

	snap, err := e.ex.GetAccountSnapshot(ctx)
	if err != nil {
		logger.Error("account snapshot failed: %v", err)
		return
	}

	sized, err := SizeOrder(sig, snap, rule)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientBalance) {
			// Явный, видимый оператору исход, а не тихий пропуск.
			logger.Error("insufficient balance to place even a minimum quantity order: %v", err)
			e.n.Sendf("⚠️ %s: insufficient balance (wallet=%s, price=%s)",
				sig.Symbol, snap.WalletBalance, sig.Price)
			return
		}
		logger.Error("sizing failed for %s: %v", sig.Symbol, err)
		return
	}

	res, err := e.ex.PlaceBracketOrder(ctx, sig, sized.Qty)
	if err != nil {
		logger.Error("order rejected for %s qty=%s: %v", sig.Symbol, sized.Qty, err)
		return
	}

	report := formatTradeReport(sized, res, snap)
	logger.Info("%s", report)
	e.n.Send(report)
}
