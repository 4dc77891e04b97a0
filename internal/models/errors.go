package models

import "errors"

// Ошибки пайплайна сигнал→ордер. Все восстановимые: сообщение
// логируется и отбрасывается, слушатель продолжает работать.
var (
	ErrMalformedSignal     = errors.New("malformed signal")
	ErrUnknownSymbol       = errors.New("unknown symbol")
	ErrWalletParse         = errors.New("wallet parse error")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrOrderRejected       = errors.New("order rejected")
)
