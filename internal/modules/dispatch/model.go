// README: Dispatch query and ranked match types.
package dispatch

import (
	"time"

	"fieldmatch/internal/modules/area"
	"fieldmatch/internal/modules/pricing"
	"fieldmatch/internal/types"
)

// Query is a client's request for available contractors.
type Query struct {
	Location    types.Point
	RequestedAt time.Time
	JobValue    *types.Money
	IsEmergency bool
	MaxResults  int // 0 = unbounded
}

// Filters are the business rules applied to raw match results.
type Filters struct {
	JobValue    *types.Money
	IsEmergency bool
	MaxResults  int
	// DefaultMaxKm caps travel for areas with no MaxDistanceKm of their own.
	DefaultMaxKm float64
}

// RankedMatch is one eligible contractor in ranked order.
type RankedMatch struct {
	Area          *area.ServiceArea   `json:"-"`
	AreaID        types.ID            `json:"area_id"`
	ContractorID  types.ID            `json:"contractor_id"`
	DistanceKm    float64             `json:"distance_km"`
	Quote         pricing.TravelQuote `json:"quote"`
	PriorityLevel int                 `json:"priority_level"`
}
