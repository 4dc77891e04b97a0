package models

import "github.com/shopspring/decimal"

// AccountSnapshot — USDT-срез UNIFIED-аккаунта на момент сигнала.
type AccountSnapshot struct {
	Equity        decimal.Decimal
	WalletBalance decimal.Decimal
}

// OrderResult — ответ биржи на размещение ордера.
// RetCode == 0 означает успех (конвенция Bybit v5).
type OrderResult struct {
	OrderID string
	RetCode int
	RetMsg  string
	Time    int64
}
