// README: Money value object in minor units (cents) used across modules.
package types

import (
	"fmt"
	"math"
)

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

const DefaultCurrency = "USD"

// MoneyFromFloat converts a major-unit amount to Money, rounding half-up
// to the nearest cent. Negative and non-finite inputs clamp to zero.
func MoneyFromFloat(v float64, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return Money{Amount: 0, Currency: currency}
	}
	return Money{Amount: int64(math.Floor(v*100 + 0.5)), Currency: currency}
}

// Float64 returns the amount in major units.
func (m Money) Float64() float64 {
	return float64(m.Amount) / 100
}

func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.Float64(), m.Currency)
}
