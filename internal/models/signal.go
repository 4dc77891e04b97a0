package models

import "github.com/shopspring/decimal"

// TradeSignal — разобранный сигнал из одного сообщения бота.
// Все четыре поля обязательны, частичных сигналов не бывает.
type TradeSignal struct {
	Symbol     string
	Price      decimal.Decimal
	StopLoss   decimal.Decimal
	TakeProfit decimal.Decimal
}

// InstrumentRule — шаг количества инструмента с биржи.
// Не кэшируется: каждый сигнал перечитывает метаданные.
type InstrumentRule struct {
	Symbol   string
	StepSize decimal.Decimal
}

// SizedOrder — сигнал + размер, приведённый к шагу инструмента.
type SizedOrder struct {
	Signal TradeSignal
	Qty    decimal.Decimal
}
