// README: Service area aggregate: tagged-union geometry, pricing terms, landmarks.
package area

import (
	"time"

	"fieldmatch/internal/geocode"
	"fieldmatch/internal/types"
)

type GeometryKind string

const (
	KindRadius      GeometryKind = "radius"
	KindPolygon     GeometryKind = "polygon"
	KindPostalCodes GeometryKind = "postal_codes"
	KindCities      GeometryKind = "cities"
)

// Geometry is a tagged union: only the payload matching Kind is populated.
// Rows violating that invariant are excluded from matching on the read path
// rather than rejected, so one bad row never breaks discovery.
type Geometry struct {
	Kind GeometryKind `json:"kind"`

	// radius
	Center   *types.Point `json:"center,omitempty"`
	RadiusKm float64      `json:"radius_km,omitempty"`

	// polygon: ordered vertex ring, closed implicitly
	Polygon []types.Point `json:"polygon,omitempty"`

	// postal_codes / cities: normalized strings
	PostalCodes []string `json:"postal_codes,omitempty"`
	Cities      []string `json:"cities,omitempty"`
}

// HoursRange is a daily availability window in local hours [Start, End).
type HoursRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether the hour falls inside the window. A window with
// Start >= End wraps past midnight (e.g. 22–6).
func (h HoursRange) Contains(hour int) bool {
	if h.Start == h.End {
		return false
	}
	if h.Start < h.End {
		return hour >= h.Start && hour < h.End
	}
	return hour >= h.Start || hour < h.End
}

type ServiceArea struct {
	ID       types.ID
	OwnerID  types.ID
	Name     string
	Geometry Geometry

	BaseTravelCharge types.Money
	PerKmRate        types.Money
	MinimumJobValue  types.Money

	PriorityLevel int // 1 (highest) .. 5
	IsPrimary     bool
	IsActive      bool

	MaxDistanceKm     *float64
	ResponseTimeHours float64

	WeekendSurchargePct   float64
	EveningSurchargePct   float64
	EmergencyAvailable    bool
	EmergencySurchargePct float64

	PreferredDays  []time.Weekday
	PreferredHours HoursRange

	CreatedAt time.Time
}

// PrefersDay reports whether the weekday is in the contractor's preferred set.
func (a *ServiceArea) PrefersDay(d time.Weekday) bool {
	for _, pd := range a.PreferredDays {
		if pd == d {
			return true
		}
	}
	return false
}

// EffectiveMaxKm returns the area's travel cap, falling back to the
// caller-supplied default when the area sets none.
func (a *ServiceArea) EffectiveMaxKm(defaultMaxKm float64) float64 {
	if a.MaxDistanceKm != nil {
		return *a.MaxDistanceKm
	}
	return defaultMaxKm
}

// ValidateGeometry enforces the tag/payload invariant on the write path.
func (g Geometry) Validate() error {
	switch g.Kind {
	case KindRadius:
		if g.Center == nil || !g.Center.Valid() || g.RadiusKm <= 0 {
			return ErrInvalidGeometry
		}
	case KindPolygon:
		if len(g.Polygon) < 3 {
			return ErrInvalidGeometry
		}
		for _, v := range g.Polygon {
			if !v.Valid() {
				return ErrInvalidGeometry
			}
		}
	case KindPostalCodes:
		if len(g.PostalCodes) == 0 {
			return ErrInvalidGeometry
		}
	case KindCities:
		if len(g.Cities) == 0 {
			return ErrInvalidGeometry
		}
	default:
		return ErrInvalidGeometry
	}
	return nil
}

// NormalizeSets canonicalizes postal codes and city names on the write path
// so containment can compare them against resolver output by exact match.
func (g *Geometry) NormalizeSets() {
	for i, s := range g.PostalCodes {
		g.PostalCodes[i] = geocode.Normalize(s)
	}
	for i, s := range g.Cities {
		g.Cities[i] = geocode.Normalize(s)
	}
}

type LandmarkKind string

const (
	LandmarkReference LandmarkKind = "reference"
	LandmarkBoundary  LandmarkKind = "boundary"
	LandmarkExclusion LandmarkKind = "exclusion"
)

// Landmark refines an area's practical boundary. Exclusion landmarks carve
// out a circle in which the area never matches.
type Landmark struct {
	ID           types.ID
	AreaID       types.ID
	Name         string
	Kind         LandmarkKind
	Position     types.Point
	RadiusMeters float64
	Notes        string
}
