// README: Pricing engine: travel charge computation with surcharge stacking.
package pricing

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"fieldmatch/internal/modules/area"
	"fieldmatch/internal/types"
)

// Service computes travel quotes. Pure and stateless; all rate inputs live
// on the service area itself.
type Service struct {
	log *logrus.Logger
}

func NewService(log *logrus.Logger) *Service {
	return &Service{log: log}
}

// Quote prices the trip to a client distanceKm away. The running total
// starts at base + perKm*distance and each applicable surcharge multiplies
// it in a fixed order: weekend, evening, emergency. Intermediate terms keep
// full float precision; only the final total is rounded (half-up) to cents.
//
// An emergency request against an area with EmergencyAvailable=false is
// excluded upstream by ranking; Quote is never called in that case.
func (s *Service) Quote(a *area.ServiceArea, distanceKm float64, qc QuoteContext) TravelQuote {
	base := a.BaseTravelCharge.Float64()
	distance := a.PerKmRate.Float64() * distanceKm

	quote := TravelQuote{
		BaseCharge:     base,
		DistanceCharge: distance,
	}
	running := base + distance

	if pct := a.WeekendSurchargePct; pct > 0 && isExcludedWeekend(a, qc.RequestedAt) {
		running = applySurcharge(&quote, SurchargeWeekend, pct, running)
	}
	if pct := a.EveningSurchargePct; pct > 0 && !a.PreferredHours.Contains(qc.RequestedAt.Hour()) {
		running = applySurcharge(&quote, SurchargeEvening, pct, running)
	}
	if pct := a.EmergencySurchargePct; pct > 0 && qc.IsEmergency && a.EmergencyAvailable {
		running = applySurcharge(&quote, SurchargeEmergency, pct, running)
	}

	if running < 0 || math.IsNaN(running) || math.IsInf(running, 0) {
		quote.Anomaly = true
		running = 0
		s.log.WithFields(logrus.Fields{
			"area_id":     a.ID,
			"distance_km": distanceKm,
		}).Warn("pricing anomaly: total clamped to zero")
	}

	quote.Total = types.MoneyFromFloat(running, a.BaseTravelCharge.Currency)
	return quote
}

func applySurcharge(q *TravelQuote, name string, pct, running float64) float64 {
	amount := running * pct / 100
	q.Surcharges = append(q.Surcharges, Surcharge{Name: name, Pct: pct, Amount: amount})
	return running + amount
}

// isExcludedWeekend reports whether t falls on a weekend day the contractor
// has not listed as preferred.
func isExcludedWeekend(a *area.ServiceArea, t time.Time) bool {
	d := t.Weekday()
	if d != time.Saturday && d != time.Sunday {
		return false
	}
	return !a.PrefersDay(d)
}
