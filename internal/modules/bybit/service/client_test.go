package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade_relay/internal/models"
)

func newTestClient(srv *httptest.Server) *Client {
	return &Client{
		http:      srv.Client(),
		baseURL:   srv.URL,
		apiKey:    "test-key",
		apiSecret: "test-secret",
	}
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

func TestGetStepSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v5/market/instruments-info", r.URL.Path)
		assert.Equal(t, "linear", r.URL.Query().Get("category"))
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))

		_, _ = w.Write([]byte(`{
			"retCode": 0, "retMsg": "OK",
			"result": {"list": [
				{"symbol": "BTCUSDT", "lotSizeFilter": {"qtyStep": "0.001"}}
			]}
		}`))
	}))
	defer srv.Close()

	rule, err := newTestClient(srv).GetStepSize(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.True(t, rule.StepSize.Equal(dec(t, "0.001")))
}

func TestGetStepSize_UnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"retCode": 0, "retMsg": "OK", "result": {"list": []}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GetStepSize(context.Background(), "NOPEUSDT")
	assert.ErrorIs(t, err, models.ErrUnknownSymbol)
}

const walletCoinList = `{
	"retCode": 0, "retMsg": "OK",
	"result": {"list": [{
		"accountType": "UNIFIED",
		"coin": [
			{"coin": "BTC", "equity": "0.5", "walletBalance": "0.5"},
			{"coin": "USDT", "equity": "1234.56", "walletBalance": "1000"}
		]
	}]}
}`

const walletCoinObject = `{
	"retCode": 0, "retMsg": "OK",
	"result": {"list": [{
		"accountType": "UNIFIED",
		"coin": {"coin": "USDT", "equity": "1234.56", "walletBalance": "1000"}
	}]}
}`

// Обе формы поля coin дают одинаковый срез.
func TestGetAccountSnapshot_BothCoinShapes(t *testing.T) {
	for name, body := range map[string]string{"list": walletCoinList, "object": walletCoinObject} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v5/account/wallet-balance", r.URL.Path)
				assert.Equal(t, "UNIFIED", r.URL.Query().Get("accountType"))
				// подпись выставлена
				assert.Equal(t, "test-key", r.Header.Get("X-BAPI-API-KEY"))
				assert.NotEmpty(t, r.Header.Get("X-BAPI-SIGN"))
				assert.NotEmpty(t, r.Header.Get("X-BAPI-TIMESTAMP"))

				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			snap, err := newTestClient(srv).GetAccountSnapshot(context.Background())
			require.NoError(t, err)
			assert.True(t, snap.Equity.Equal(dec(t, "1234.56")))
			assert.True(t, snap.WalletBalance.Equal(dec(t, "1000")))
		})
	}
}

func TestGetAccountSnapshot_NoUSDT(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"retCode": 0, "retMsg": "OK",
			"result": {"list": [{
				"accountType": "UNIFIED",
				"coin": [{"coin": "BTC", "equity": "1", "walletBalance": "1"}]
			}]}
		}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GetAccountSnapshot(context.Background())
	assert.ErrorIs(t, err, models.ErrWalletParse)
}

func TestGetAccountSnapshot_EmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"retCode": 0, "retMsg": "OK", "result": {"list": []}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GetAccountSnapshot(context.Background())
	assert.ErrorIs(t, err, models.ErrWalletParse)
}

func TestPlaceBracketOrder(t *testing.T) {
	sig := models.TradeSignal{
		Symbol:     "BTCUSDT",
		Price:      dec(t, "50000"),
		StopLoss:   dec(t, "49000"),
		TakeProfit: dec(t, "52000"),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v5/order/create", r.URL.Path)

		rb, _ := io.ReadAll(r.Body)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rb, &body))

		assert.Equal(t, "linear", body["category"])
		assert.Equal(t, "Buy", body["side"])
		assert.Equal(t, "Limit", body["orderType"])
		assert.Equal(t, "GTC", body["timeInForce"])
		assert.Equal(t, "50000", body["price"])
		assert.Equal(t, "0.02", body["qty"])
		assert.Equal(t, "49000", body["stopLoss"])
		assert.Equal(t, "52000", body["takeProfit"])

		_, _ = w.Write([]byte(`{
			"retCode": 0, "retMsg": "OK",
			"result": {"orderId": "abc-123"},
			"time": 1700000000000
		}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv).PlaceBracketOrder(context.Background(), sig, dec(t, "0.02"))
	require.NoError(t, err)
	assert.Equal(t, "abc-123", res.OrderID)
	assert.Equal(t, 0, res.RetCode)
	assert.Equal(t, int64(1700000000000), res.Time)
}

func TestPlaceBracketOrder_NonZeroRetCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"retCode": 110007, "retMsg": "ab not enough for new order", "result": {}}`))
	}))
	defer srv.Close()

	sig := models.TradeSignal{
		Symbol:     "BTCUSDT",
		Price:      dec(t, "50000"),
		StopLoss:   dec(t, "49000"),
		TakeProfit: dec(t, "52000"),
	}
	_, err := newTestClient(srv).PlaceBracketOrder(context.Background(), sig, dec(t, "0.02"))
	require.ErrorIs(t, err, models.ErrOrderRejected)
	assert.Contains(t, err.Error(), "ab not enough for new order")
}

func TestPlaceBracketOrder_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	sig := models.TradeSignal{
		Symbol:     "BTCUSDT",
		Price:      dec(t, "50000"),
		StopLoss:   dec(t, "49000"),
		TakeProfit: dec(t, "52000"),
	}
	_, err := newTestClient(srv).PlaceBracketOrder(context.Background(), sig, dec(t, "0.02"))
	assert.ErrorIs(t, err, models.ErrOrderRejected)
}
