package runner

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade_relay/internal/models"
	websvc "trade_relay/internal/modules/web/service"
	"trade_relay/pkg/logger"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init(""); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeExchange struct {
	stepSize decimal.Decimal
	stepErr  error

	snap    models.AccountSnapshot
	snapErr error

	placeErr error
	placed   []models.SizedOrder

	stepCalls, snapCalls, placeCalls int
}

func (f *fakeExchange) GetStepSize(_ context.Context, symbol string) (models.InstrumentRule, error) {
	f.stepCalls++
	if f.stepErr != nil {
		return models.InstrumentRule{}, f.stepErr
	}
	return models.InstrumentRule{Symbol: symbol, StepSize: f.stepSize}, nil
}

func (f *fakeExchange) GetAccountSnapshot(_ context.Context) (models.AccountSnapshot, error) {
	f.snapCalls++
	if f.snapErr != nil {
		return models.AccountSnapshot{}, f.snapErr
	}
	return f.snap, nil
}

func (f *fakeExchange) PlaceBracketOrder(_ context.Context, sig models.TradeSignal, qty decimal.Decimal) (models.OrderResult, error) {
	f.placeCalls++
	if f.placeErr != nil {
		return models.OrderResult{}, f.placeErr
	}
	f.placed = append(f.placed, models.SizedOrder{Signal: sig, Qty: qty})
	return models.OrderResult{OrderID: "oid-1", RetCode: 0, RetMsg: "OK", Time: 1700000000000}, nil
}

type fakeNotifier struct {
	sent []string
}

func (n *fakeNotifier) Send(msg string)             { n.sent = append(n.sent, msg) }
func (n *fakeNotifier) Sendf(f string, args ...any) { n.sent = append(n.sent, f) }

func newTestExecutor(ex *fakeExchange) (*Executor, *fakeNotifier) {
	n := &fakeNotifier{}
	return NewExecutor(ex, n, websvc.NewState()), n
}

func defaultFake(t *testing.T) *fakeExchange {
	return &fakeExchange{
		stepSize: dec(t, "0.001"),
		snap: models.AccountSnapshot{
			Equity:        dec(t, "1000"),
			WalletBalance: dec(t, "1000"),
		},
	}
}

func TestExecutor_HappyPath(t *testing.T) {
	ex := defaultFake(t)
	e, n := newTestExecutor(ex)

	e.HandleMessage(context.Background(), "Symbol: BTCUSDT\nPrice: 50000\nStop Loss: 49000\nTake Profit: 52000")

	require.Len(t, ex.placed, 1)
	assert.Equal(t, "BTCUSDT", ex.placed[0].Signal.Symbol)
	assert.True(t, ex.placed[0].Qty.Equal(dec(t, "0.02")), "qty=%s", ex.placed[0].Qty)

	require.Len(t, n.sent, 1)
	report := n.sent[0]
	assert.Contains(t, report, "===== Trade Details =====")
	assert.Contains(t, report, "BTCUSDT")
	assert.Contains(t, report, "oid-1")
	assert.Contains(t, report, "0.02000000")
}

func TestExecutor_MalformedSignalNoExchangeCalls(t *testing.T) {
	ex := defaultFake(t)
	e, _ := newTestExecutor(ex)

	e.HandleMessage(context.Background(), "Symbol: BTCUSDT\nPrice: 50000\nStop Loss: 49000")

	assert.Zero(t, ex.stepCalls)
	assert.Zero(t, ex.snapCalls)
	assert.Zero(t, ex.placeCalls)
}

func TestExecutor_UnknownSymbolStopsPipeline(t *testing.T) {
	ex := defaultFake(t)
	ex.stepErr = models.ErrUnknownSymbol
	e, _ := newTestExecutor(ex)

	e.HandleMessage(context.Background(), "Symbol: NOPEUSDT\nPrice: 100\nStop Loss: 90\nTake Profit: 120")

	assert.Zero(t, ex.snapCalls)
	assert.Zero(t, ex.placeCalls)
}

func TestExecutor_WalletParseErrorStopsPipeline(t *testing.T) {
	ex := defaultFake(t)
	ex.snapErr = models.ErrWalletParse
	e, _ := newTestExecutor(ex)

	e.HandleMessage(context.Background(), "Symbol: BTCUSDT\nPrice: 50000\nStop Loss: 49000\nTake Profit: 52000")

	assert.Equal(t, 1, ex.snapCalls)
	assert.Zero(t, ex.placeCalls)
}

func TestExecutor_InsufficientBalanceNoOrder(t *testing.T) {
	ex := defaultFake(t)
	ex.snap.WalletBalance = dec(t, "10")
	e, n := newTestExecutor(ex)

	e.HandleMessage(context.Background(), "Symbol: BTCUSDT\nPrice: 50000\nStop Loss: 49000\nTake Profit: 52000")

	assert.Zero(t, ex.placeCalls)
	// исход виден оператору, не молчаливый
	require.NotEmpty(t, n.sent)
	assert.True(t, strings.Contains(n.sent[0], "insufficient balance"))
}

func TestExecutor_RejectionDoesNotBreakNextMessage(t *testing.T) {
	ex := defaultFake(t)
	ex.placeErr = models.ErrOrderRejected
	e, _ := newTestExecutor(ex)

	msg := "Symbol: BTCUSDT\nPrice: 50000\nStop Loss: 49000\nTake Profit: 52000"
	e.HandleMessage(context.Background(), msg)
	assert.Equal(t, 1, ex.placeCalls)
	assert.Empty(t, ex.placed)

	// следующий сигнал обрабатывается как ни в чём не бывало
	ex.placeErr = nil
	e.HandleMessage(context.Background(), msg)
	assert.Equal(t, 2, ex.placeCalls)
	require.Len(t, ex.placed, 1)
}

func TestExecutor_ReportContainsBalances(t *testing.T) {
	ex := defaultFake(t)
	e, n := newTestExecutor(ex)

	e.HandleMessage(context.Background(), "Symbol: BTCUSDT\nPrice: 50000\nStop Loss: 49000\nTake Profit: 52000")

	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], "USDT Equity")
	assert.Contains(t, n.sent[0], "1000.00")
	assert.Contains(t, n.sent[0], "Wallet Balance")
}
