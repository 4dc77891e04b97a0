package runner

import (
	"fmt"
	"strings"

	"trade_relay/internal/models"
)

// formatTradeReport — табличный отчёт по сделке для оператора
// (лог/консоль/нотифайер, не машинный формат).
func formatTradeReport(order models.SizedOrder, res models.OrderResult, snap models.AccountSnapshot) string {
	sig := order.Signal

	var b strings.Builder
	b.WriteString("\n===== Trade Details =====\n")
	writeRow(&b, "Symbol", sig.Symbol)
	writeRow(&b, "Price", sig.Price.StringFixed(2))
	writeRow(&b, "Stop Loss", sig.StopLoss.StringFixed(2))
	writeRow(&b, "Take Profit", sig.TakeProfit.StringFixed(2))
	writeRow(&b, "Quantity", order.Qty.StringFixed(8))
	writeRow(&b, "Order ID", orDefault(res.OrderID))
	writeRow(&b, "Status", orDefault(res.RetMsg))
	writeRow(&b, "Timestamp", fmt.Sprintf("%d", res.Time))
	writeRow(&b, "USDT Equity", snap.Equity.StringFixed(2))
	writeRow(&b, "Wallet Balance", snap.WalletBalance.StringFixed(2))
	b.WriteString("========================\n")
	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%-20s: %s\n", label, value)
}

func orDefault(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
