package service

import (
	"context"
	"encoding/json"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"trade_relay/internal/models"
)

// PlaceBracketOrder ставит лимитный GTC buy по цене сигнала со
// стоп-лоссом и тейк-профитом нативными полями биржи. Любой retCode != 0
// и любая транспортная ошибка — models.ErrOrderRejected; ретраев нет.
func (c *Client) PlaceBracketOrder(ctx context.Context, sig models.TradeSignal, qty decimal.Decimal) (models.OrderResult, error) {
	body := map[string]string{
		"category":    "linear",
		"symbol":      sig.Symbol,
		"side":        "Buy",
		"orderType":   "Limit",
		"qty":         qty.String(),
		"price":       sig.Price.String(),
		"timeInForce": "GTC",
		"stopLoss":    sig.StopLoss.String(),
		"takeProfit":  sig.TakeProfit.String(),
	}

	payload, err := sonic.Marshal(body)
	if err != nil {
		return models.OrderResult{}, errors.Wrapf(models.ErrOrderRejected, "marshal: %v", err)
	}

	rb, err := c.postSigned(ctx, "/v5/order/create", payload)
	if err != nil {
		return models.OrderResult{}, errors.Wrapf(models.ErrOrderRejected, "order create: %v", err)
	}

	var r struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
		Result  struct {
			OrderID string `json:"orderId"`
		} `json:"result"`
		Time int64 `json:"time"`
	}
	if err := json.Unmarshal(rb, &r); err != nil {
		return models.OrderResult{}, errors.Wrapf(models.ErrOrderRejected, "decode: %v; body=%s", err, string(rb))
	}
	if r.RetCode != 0 {
		return models.OrderResult{}, errors.Wrapf(models.ErrOrderRejected, "retCode=%d retMsg=%s", r.RetCode, r.RetMsg)
	}

	return models.OrderResult{
		OrderID: r.Result.OrderID,
		RetCode: r.RetCode,
		RetMsg:  r.RetMsg,
		Time:    r.Time,
	}, nil
}
