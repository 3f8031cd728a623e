// README: Travel quote types: base + distance charge with stacked surcharges.
package pricing

import (
	"time"

	"fieldmatch/internal/types"
)

const (
	SurchargeWeekend   = "weekend"
	SurchargeEvening   = "evening"
	SurchargeEmergency = "emergency"
)

// QuoteContext is the request-time context surcharges depend on.
type QuoteContext struct {
	RequestedAt time.Time
	IsEmergency bool
}

// Surcharge is one multiplicative percentage applied to the running total.
// Amount is kept at full precision; rounding happens only on the final total.
type Surcharge struct {
	Name   string  `json:"name"`
	Pct    float64 `json:"pct"`
	Amount float64 `json:"amount"`
}

// TravelQuote is the priced cost of reaching a client location.
type TravelQuote struct {
	BaseCharge     float64     `json:"base_charge"`
	DistanceCharge float64     `json:"distance_charge"`
	Surcharges     []Surcharge `json:"surcharges"`
	Total          types.Money `json:"total"`

	// Anomaly marks a quote whose raw total was negative or non-finite and
	// was clamped to zero.
	Anomaly bool `json:"anomaly,omitempty"`
}
