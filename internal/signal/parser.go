package signal

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"trade_relay/internal/models"
)

// Метки строк, которые шлёт сигнальный бот. Порядок строк произвольный,
// всё остальное (комментарии бота) игнорируется.
const (
	labelSymbol     = "Symbol:"
	labelPrice      = "Price:"
	labelStopLoss   = "Stop Loss:"
	labelTakeProfit = "Take Profit:"
)

// Parse разбирает текст сообщения в TradeSignal.
// Отсутствие любого из четырёх полей или нечисловое значение —
// models.ErrMalformedSignal, частичный сигнал не возвращается никогда.
func Parse(text string) (models.TradeSignal, error) {
	text = strings.TrimSpace(strings.Trim(strings.TrimSpace(text), `"`))

	var (
		sig     models.TradeSignal
		hasSym  bool
		hasPx   bool
		hasSL   bool
		hasTP   bool
		lastErr error
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, labelSymbol):
			sig.Symbol = strings.TrimSpace(strings.TrimPrefix(line, labelSymbol))
			hasSym = sig.Symbol != ""
		case strings.HasPrefix(line, labelPrice):
			sig.Price, lastErr = parseField(line, labelPrice)
			hasPx = lastErr == nil
		case strings.HasPrefix(line, labelStopLoss):
			sig.StopLoss, lastErr = parseField(line, labelStopLoss)
			hasSL = lastErr == nil
		case strings.HasPrefix(line, labelTakeProfit):
			sig.TakeProfit, lastErr = parseField(line, labelTakeProfit)
			hasTP = lastErr == nil
		}
		if lastErr != nil {
			return models.TradeSignal{}, errors.Wrapf(models.ErrMalformedSignal, "%v", lastErr)
		}
	}

	if !hasSym || !hasPx || !hasSL || !hasTP {
		return models.TradeSignal{}, errors.Wrapf(
			models.ErrMalformedSignal,
			"missing fields (symbol=%t price=%t sl=%t tp=%t)",
			hasSym, hasPx, hasSL, hasTP,
		)
	}
	return sig, nil
}

func parseField(line, label string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(line, label))
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "%s %q", strings.TrimSuffix(label, ":"), raw)
	}
	return v, nil
}
