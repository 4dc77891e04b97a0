package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"trade_relay/internal/models"
)

// GetStepSize перечитывает qtyStep инструмента с биржи (без кэша,
// метаданные берутся заново на каждый сигнал). Публичный endpoint, без подписи.
func (c *Client) GetStepSize(ctx context.Context, symbol string) (models.InstrumentRule, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+"/v5/market/instruments-info?category=linear&symbol="+url.QueryEscape(symbol),
		nil,
	)
	if err != nil {
		return models.InstrumentRule{}, fmt.Errorf("build request: %w", err)
	}

	rb, err := c.do(req)
	if err != nil {
		return models.InstrumentRule{}, fmt.Errorf("instruments-info: %w", err)
	}

	var payload struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
		Result  struct {
			List []struct {
				Symbol        string `json:"symbol"`
				LotSizeFilter struct {
					QtyStep string `json:"qtyStep"`
				} `json:"lotSizeFilter"`
			} `json:"list"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rb, &payload); err != nil {
		return models.InstrumentRule{}, fmt.Errorf("instruments-info decode: %w", err)
	}
	if payload.RetCode != 0 {
		return models.InstrumentRule{}, fmt.Errorf("instruments-info error: retCode=%d retMsg=%s", payload.RetCode, payload.RetMsg)
	}

	for _, inst := range payload.Result.List {
		if inst.Symbol != symbol {
			continue
		}
		step, err := decimal.NewFromString(inst.LotSizeFilter.QtyStep)
		if err != nil || !step.IsPositive() {
			return models.InstrumentRule{}, fmt.Errorf("bad qtyStep %q for %s", inst.LotSizeFilter.QtyStep, symbol)
		}
		return models.InstrumentRule{Symbol: symbol, StepSize: step}, nil
	}

	return models.InstrumentRule{}, errors.Wrapf(models.ErrUnknownSymbol, "%s not in instruments", symbol)
}
