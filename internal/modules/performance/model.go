// README: Aggregated per-area performance metrics for one period.
package performance

import (
	"time"

	"fieldmatch/internal/types"
)

// AreaPerformance is keyed by (ServiceAreaID, PeriodStart, PeriodEnd) and
// overwritten idempotently on re-aggregation. CustomerSatisfaction is
// supplied externally and preserved across reruns.
type AreaPerformance struct {
	ServiceAreaID types.ID  `json:"service_area_id"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`

	TotalJobs               int         `json:"total_jobs"`
	TotalRevenue            types.Money `json:"total_revenue"`
	TotalTravelTimeHours    float64     `json:"total_travel_time_hours"`
	AverageTravelDistanceKm float64     `json:"average_travel_distance_km"`
	ConversionRate          float64     `json:"conversion_rate"`
	CustomerSatisfaction    *float64    `json:"customer_satisfaction,omitempty"`
	ProfitabilityScore      float64     `json:"profitability_score"`

	ComputedAt time.Time `json:"computed_at"`
}
