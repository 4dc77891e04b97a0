package runner

import (
	"github.com/pkg/errors"

	"trade_relay/internal/models"
)

// SizeOrder приводит весь доступный баланс к исполнимому количеству:
// qty = floor(wallet / price / step) * step. Округление только вниз,
// чтобы никогда не выйти за баланс. qty == 0 — нормальный исход
// (ErrInsufficientBalance), не сбой.
func SizeOrder(sig models.TradeSignal, snap models.AccountSnapshot, rule models.InstrumentRule) (models.SizedOrder, error) {
	if !rule.StepSize.IsPositive() {
		return models.SizedOrder{}, errors.Errorf("step size must be positive, got %s", rule.StepSize)
	}
	if !sig.Price.IsPositive() {
		return models.SizedOrder{}, errors.Errorf("price must be positive, got %s", sig.Price)
	}

	rawQty := snap.WalletBalance.Div(sig.Price)
	qty := rawQty.Div(rule.StepSize).Floor().Mul(rule.StepSize)

	if !qty.IsPositive() {
		return models.SizedOrder{}, errors.Wrapf(
			models.ErrInsufficientBalance,
			"wallet=%s price=%s step=%s",
			snap.WalletBalance, sig.Price, rule.StepSize,
		)
	}

	return models.SizedOrder{Signal: sig, Qty: qty}, nil
}
