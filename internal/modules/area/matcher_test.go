package area

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"fieldmatch/internal/geo"
	"fieldmatch/internal/geocode"
	"fieldmatch/internal/types"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func radiusArea(id types.ID, center types.Point, radiusKm float64) *ServiceArea {
	return &ServiceArea{
		ID:      id,
		OwnerID: "owner-" + id,
		Geometry: Geometry{
			Kind:     KindRadius,
			Center:   &center,
			RadiusKm: radiusKm,
		},
	}
}

func matchSingle(t *testing.T, m *Matcher, point types.Point, resolved geocode.Resolved, a *ServiceArea) MatchOutcome {
	t.Helper()
	out := m.MatchPoint(point, resolved, nil, []*ServiceArea{a})
	if len(out.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(out.Results))
	}
	return out
}

func TestMatchRadiusBoundaryInclusive(t *testing.T) {
	center := types.Point{Lat: 0, Lng: 0}
	point := types.Point{Lat: 0.09, Lng: 0} // ~10 km north
	exact := geo.DistanceKm(point, center)

	m := NewMatcher(testLogger())

	out := matchSingle(t, m, point, geocode.Resolved{}, radiusArea("a1", center, exact))
	if !out.Results[0].WithinArea {
		t.Fatal("point exactly on the boundary should match")
	}
	if out.Results[0].DistanceKm == nil || *out.Results[0].DistanceKm != exact {
		t.Fatalf("distance = %v, want %v", out.Results[0].DistanceKm, exact)
	}

	out = matchSingle(t, m, point, geocode.Resolved{}, radiusArea("a2", center, exact-0.001))
	if out.Results[0].WithinArea {
		t.Fatal("point just outside the radius should not match")
	}
}

func TestMatchRadiusCappedByMaxDistance(t *testing.T) {
	center := types.Point{Lat: 0, Lng: 0}
	point := types.Point{Lat: 0.09, Lng: 0} // ~10 km north

	a := radiusArea("a1", center, 25)
	maxKm := 5.0
	a.MaxDistanceKm = &maxKm

	out := matchSingle(t, NewMatcher(testLogger()), point, geocode.Resolved{}, a)
	if out.Results[0].WithinArea {
		t.Fatal("point beyond MaxDistanceKm should not match even inside the radius")
	}
}

func TestMatchPolygon(t *testing.T) {
	square := []types.Point{
		{Lat: -1, Lng: -1}, {Lat: -1, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 1, Lng: -1},
	}
	a := &ServiceArea{ID: "p1", OwnerID: "o1", Geometry: Geometry{Kind: KindPolygon, Polygon: square}}

	m := NewMatcher(testLogger(), WithDistances())

	tests := []struct {
		name  string
		point types.Point
		want  bool
	}{
		{"interior", types.Point{Lat: 0, Lng: 0}, true},
		{"vertex", types.Point{Lat: 1, Lng: 1}, true},
		{"outside", types.Point{Lat: 2, Lng: 2}, false},
	}
	for _, tt := range tests {
		out := matchSingle(t, m, tt.point, geocode.Resolved{}, a)
		if out.Results[0].WithinArea != tt.want {
			t.Fatalf("%s: within = %v, want %v", tt.name, out.Results[0].WithinArea, tt.want)
		}
		if out.Results[0].DistanceKm == nil {
			t.Fatalf("%s: expected centroid distance with WithDistances", tt.name)
		}
	}

	// Without the option, polygon results carry no distance.
	out := matchSingle(t, NewMatcher(testLogger()), types.Point{Lat: 0, Lng: 0}, geocode.Resolved{}, a)
	if out.Results[0].DistanceKm != nil {
		t.Fatal("expected nil distance without WithDistances")
	}
}

func TestMatchSetVariants(t *testing.T) {
	postal := &ServiceArea{ID: "s1", OwnerID: "o1", Geometry: Geometry{Kind: KindPostalCodes, PostalCodes: []string{"10001", "10002"}}}
	city := &ServiceArea{ID: "s2", OwnerID: "o1", Geometry: Geometry{Kind: KindCities, Cities: []string{"SPRINGFIELD"}}}

	m := NewMatcher(testLogger())
	point := types.Point{Lat: 40.7, Lng: -74}

	out := matchSingle(t, m, point, geocode.Resolved{PostalCode: "10001"}, postal)
	if !out.Results[0].WithinArea {
		t.Fatal("resolved postal code in the set should match")
	}
	if out.Results[0].DistanceKm != nil {
		t.Fatal("set variants have no distance")
	}

	out = matchSingle(t, m, point, geocode.Resolved{PostalCode: "99999"}, postal)
	if out.Results[0].WithinArea {
		t.Fatal("postal code outside the set should not match")
	}

	// Unresolved location never matches a set variant.
	out = matchSingle(t, m, point, geocode.Resolved{}, city)
	if out.Results[0].WithinArea {
		t.Fatal("unresolved city should not match")
	}

	out = matchSingle(t, m, point, geocode.Resolved{City: "SPRINGFIELD"}, city)
	if !out.Results[0].WithinArea {
		t.Fatal("resolved city in the set should match")
	}
}

func TestMatchMalformedGeometryFlagsDiagnostic(t *testing.T) {
	tests := []struct {
		name string
		area *ServiceArea
	}{
		{"radius without center", &ServiceArea{ID: "b1", OwnerID: "o1", Geometry: Geometry{Kind: KindRadius, RadiusKm: 5}}},
		{"degenerate polygon", &ServiceArea{ID: "b2", OwnerID: "o2", Geometry: Geometry{Kind: KindPolygon, Polygon: []types.Point{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}}}}},
		{"empty postal set", &ServiceArea{ID: "b3", OwnerID: "o3", Geometry: Geometry{Kind: KindPostalCodes}}},
		{"unknown kind", &ServiceArea{ID: "b4", OwnerID: "o4", Geometry: Geometry{Kind: "hexagon"}}},
	}

	m := NewMatcher(testLogger())
	for _, tt := range tests {
		out := matchSingle(t, m, types.Point{Lat: 0, Lng: 0}, geocode.Resolved{}, tt.area)
		if out.Results[0].WithinArea {
			t.Fatalf("%s: malformed geometry must never match", tt.name)
		}
		if len(out.Diagnostics) != 1 {
			t.Fatalf("%s: got %d diagnostics, want 1", tt.name, len(out.Diagnostics))
		}
		if out.Diagnostics[0].AreaID != tt.area.ID || out.Diagnostics[0].OwnerID != tt.area.OwnerID {
			t.Fatalf("%s: diagnostic not attributed to the area owner: %+v", tt.name, out.Diagnostics[0])
		}
	}
}

func TestMatchOneBadRowDoesNotBreakOthers(t *testing.T) {
	center := types.Point{Lat: 0, Lng: 0}
	good := radiusArea("good", center, 10)
	bad := &ServiceArea{ID: "bad", OwnerID: "o", Geometry: Geometry{Kind: KindRadius}}

	m := NewMatcher(testLogger())
	out := m.MatchPoint(types.Point{Lat: 0.01, Lng: 0}, geocode.Resolved{}, nil, []*ServiceArea{bad, good})

	if len(out.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(out.Results))
	}
	if len(out.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(out.Diagnostics))
	}
	var goodWithin bool
	for _, r := range out.Results {
		if r.Area.ID == "good" {
			goodWithin = r.WithinArea
		}
	}
	if !goodWithin {
		t.Fatal("valid area should still match alongside a malformed one")
	}
}

func TestMatchExclusionLandmark(t *testing.T) {
	center := types.Point{Lat: 0, Lng: 0}
	a := radiusArea("a1", center, 10)
	point := types.Point{Lat: 0.001, Lng: 0} // ~111 m from origin

	landmarks := map[types.ID][]Landmark{
		a.ID: {
			{ID: "lm1", AreaID: a.ID, Kind: LandmarkExclusion, Position: center, RadiusMeters: 500},
		},
	}

	m := NewMatcher(testLogger())
	out := m.MatchPoint(point, geocode.Resolved{}, landmarks, []*ServiceArea{a})
	if out.Results[0].WithinArea {
		t.Fatal("point inside an exclusion landmark circle must not match")
	}

	// Reference landmarks never exclude.
	landmarks[a.ID][0].Kind = LandmarkReference
	out = m.MatchPoint(point, geocode.Resolved{}, landmarks, []*ServiceArea{a})
	if !out.Results[0].WithinArea {
		t.Fatal("reference landmark must not exclude the point")
	}
}
