package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"trade_relay/internal/models"
)

type walletCoin struct {
	Coin          string `json:"coin"`
	Equity        string `json:"equity"`
	WalletBalance string `json:"walletBalance"`
}

// coinField нормализует обе формы поля coin в ответе кошелька:
// одиночный объект и массив объектов. Дальше границы шлюза
// эта двусмысленность не уходит.
type coinField struct {
	items []walletCoin
}

func (f *coinField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '[' {
		return json.Unmarshal(b, &f.items)
	}
	var one walletCoin
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	f.items = []walletCoin{one}
	return nil
}

// GetAccountSnapshot возвращает USDT-срез UNIFIED-кошелька.
// Отсутствие USDT или неузнаваемая форма ответа — models.ErrWalletParse.
func (c *Client) GetAccountSnapshot(ctx context.Context) (models.AccountSnapshot, error) {
	rb, err := c.getSigned(ctx, "/v5/account/wallet-balance", "accountType=UNIFIED")
	if err != nil {
		return models.AccountSnapshot{}, fmt.Errorf("wallet-balance: %w", err)
	}

	var payload struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
		Result  struct {
			List []struct {
				AccountType string    `json:"accountType"`
				Coin        coinField `json:"coin"`
			} `json:"list"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rb, &payload); err != nil {
		return models.AccountSnapshot{}, errors.Wrapf(models.ErrWalletParse, "decode: %v", err)
	}
	if payload.RetCode != 0 {
		return models.AccountSnapshot{}, fmt.Errorf("wallet-balance error: retCode=%d retMsg=%s", payload.RetCode, payload.RetMsg)
	}
	if len(payload.Result.List) == 0 {
		return models.AccountSnapshot{}, errors.Wrap(models.ErrWalletParse, "empty wallet list")
	}

	for _, acc := range payload.Result.List {
		for _, coin := range acc.Coin.items {
			if coin.Coin != "USDT" {
				continue
			}
			return models.AccountSnapshot{
				Equity:        parseAmount(coin.Equity),
				WalletBalance: parseAmount(coin.WalletBalance),
			}, nil
		}
	}

	return models.AccountSnapshot{}, errors.Wrap(models.ErrWalletParse, "no USDT entry in wallet")
}

// parseAmount — пустые/битые суммы считаем нулём, как и исходный сервис.
func parseAmount(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return v
}
