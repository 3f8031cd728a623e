// README: Containment tests per geometry variant; never errors on bad rows.
package area

import (
	"github.com/sirupsen/logrus"

	"fieldmatch/internal/geo"
	"fieldmatch/internal/geocode"
	"fieldmatch/internal/types"
)

// MatchResult is one area's containment verdict for a query point.
// DistanceKm is nil when the variant does not define one (polygon distance
// is centroid-based and only computed when requested; set variants have no
// distance at all).
type MatchResult struct {
	Area       *ServiceArea
	DistanceKm *float64
	WithinArea bool
}

// Diagnostic flags a stored area whose geometry could not be evaluated.
// Attributable to the owner so the data problem can be surfaced to them.
type Diagnostic struct {
	AreaID  types.ID
	OwnerID types.ID
	Reason  string
}

// MatchOutcome carries the per-area results plus the data-integrity
// side-channel.
type MatchOutcome struct {
	Results     []MatchResult
	Diagnostics []Diagnostic
}

// Matcher evaluates query points against service-area geometry. Pure and
// stateless; safe for concurrent use.
type Matcher struct {
	log *logrus.Logger

	// withDistances makes the polygon variant compute a centroid distance,
	// which ranking needs as a sort key.
	withDistances bool
}

type MatcherOption func(*Matcher)

// WithDistances requests a distance for variants where it is optional.
func WithDistances() MatcherOption {
	return func(m *Matcher) { m.withDistances = true }
}

func NewMatcher(log *logrus.Logger, opts ...MatcherOption) *Matcher {
	m := &Matcher{log: log}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MatchPoint tests the point against every area. Callers must filter out
// inactive areas beforehand. Malformed geometry and unknown tags never
// error: the area is reported non-matching and flagged in Diagnostics.
func (m *Matcher) MatchPoint(point types.Point, resolved geocode.Resolved, landmarks map[types.ID][]Landmark, areas []*ServiceArea) MatchOutcome {
	out := MatchOutcome{Results: make([]MatchResult, 0, len(areas))}

	for _, a := range areas {
		res, diag := m.matchOne(point, resolved, a)
		if diag != nil {
			out.Diagnostics = append(out.Diagnostics, *diag)
			m.log.WithFields(logrus.Fields{
				"area_id":  a.ID,
				"owner_id": a.OwnerID,
				"reason":   diag.Reason,
			}).Warn("service area excluded from matching")
		}
		if res.WithinArea && excludedByLandmark(point, landmarks[a.ID]) {
			res.WithinArea = false
		}
		out.Results = append(out.Results, res)
	}
	return out
}

func (m *Matcher) matchOne(point types.Point, resolved geocode.Resolved, a *ServiceArea) (MatchResult, *Diagnostic) {
	res := MatchResult{Area: a}

	switch a.Geometry.Kind {
	case KindRadius:
		if a.Geometry.Center == nil || a.Geometry.RadiusKm <= 0 {
			return res, &Diagnostic{AreaID: a.ID, OwnerID: a.OwnerID, Reason: "radius area missing center or radius"}
		}
		d := geo.DistanceKm(point, *a.Geometry.Center)
		res.DistanceKm = &d
		limit := a.Geometry.RadiusKm
		if a.MaxDistanceKm != nil && *a.MaxDistanceKm < limit {
			limit = *a.MaxDistanceKm
		}
		// Boundary-inclusive: a point exactly on the circle matches.
		res.WithinArea = d <= limit

	case KindPolygon:
		if len(a.Geometry.Polygon) < 3 {
			return res, &Diagnostic{AreaID: a.ID, OwnerID: a.OwnerID, Reason: "polygon area has fewer than 3 vertices"}
		}
		res.WithinArea = geo.PointInRing(point, a.Geometry.Polygon)
		if m.withDistances {
			d := geo.DistanceKm(point, geo.RingCentroid(a.Geometry.Polygon))
			res.DistanceKm = &d
		}

	case KindPostalCodes:
		if len(a.Geometry.PostalCodes) == 0 {
			return res, &Diagnostic{AreaID: a.ID, OwnerID: a.OwnerID, Reason: "postal-code area has no codes"}
		}
		res.WithinArea = resolved.PostalCode != "" && containsString(a.Geometry.PostalCodes, resolved.PostalCode)

	case KindCities:
		if len(a.Geometry.Cities) == 0 {
			return res, &Diagnostic{AreaID: a.ID, OwnerID: a.OwnerID, Reason: "city area has no cities"}
		}
		res.WithinArea = resolved.City != "" && containsString(a.Geometry.Cities, resolved.City)

	default:
		return res, &Diagnostic{AreaID: a.ID, OwnerID: a.OwnerID, Reason: "unknown area type " + string(a.Geometry.Kind)}
	}

	return res, nil
}

// excludedByLandmark reports whether the point falls inside any exclusion
// landmark's circle.
func excludedByLandmark(point types.Point, landmarks []Landmark) bool {
	for _, lm := range landmarks {
		if lm.Kind != LandmarkExclusion || lm.RadiusMeters <= 0 {
			continue
		}
		if geo.DistanceMeters(point, lm.Position) <= lm.RadiusMeters {
			return true
		}
	}
	return false
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
