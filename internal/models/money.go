package models

import "github.com/shopspring/decimal"

// Balances and transaction amounts are fixed two-decimal values. Arithmetic
// happens on decimal.Decimal and results are normalized with RoundMoney
// before they are persisted.
var (
	// RefundRate доля возврата при отмене брони.
	RefundRate = decimal.NewFromFloat(0.80)

	// CancellationFeeRate доля, остающаяся владельцу при отмене.
	CancellationFeeRate = decimal.NewFromFloat(0.20)
)

// RoundMoney rounds to 2 decimal places, half up. decimal.Round rounds half
// away from zero; amounts in this system are never negative, so the two
// rules coincide.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
