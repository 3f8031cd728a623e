package area

import (
	"testing"
	"time"

	"fieldmatch/internal/types"
)

func TestHoursRangeContains(t *testing.T) {
	tests := []struct {
		name  string
		hours HoursRange
		hour  int
		want  bool
	}{
		{"inside day window", HoursRange{Start: 8, End: 18}, 12, true},
		{"start inclusive", HoursRange{Start: 8, End: 18}, 8, true},
		{"end exclusive", HoursRange{Start: 8, End: 18}, 18, false},
		{"before window", HoursRange{Start: 8, End: 18}, 6, false},
		{"wrap late evening", HoursRange{Start: 22, End: 6}, 23, true},
		{"wrap early morning", HoursRange{Start: 22, End: 6}, 3, true},
		{"wrap midday outside", HoursRange{Start: 22, End: 6}, 12, false},
		{"empty window", HoursRange{}, 0, false},
	}
	for _, tt := range tests {
		if got := tt.hours.Contains(tt.hour); got != tt.want {
			t.Fatalf("%s: Contains(%d) = %v, want %v", tt.name, tt.hour, got, tt.want)
		}
	}
}

func TestGeometryValidate(t *testing.T) {
	center := types.Point{Lat: 40, Lng: -74}
	badCenter := types.Point{Lat: 123, Lng: -74}
	ring := []types.Point{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 0}}

	tests := []struct {
		name    string
		g       Geometry
		wantErr bool
	}{
		{"valid radius", Geometry{Kind: KindRadius, Center: &center, RadiusKm: 10}, false},
		{"radius without center", Geometry{Kind: KindRadius, RadiusKm: 10}, true},
		{"radius zero km", Geometry{Kind: KindRadius, Center: &center}, true},
		{"radius invalid center", Geometry{Kind: KindRadius, Center: &badCenter, RadiusKm: 10}, true},
		{"valid polygon", Geometry{Kind: KindPolygon, Polygon: ring}, false},
		{"polygon too few vertices", Geometry{Kind: KindPolygon, Polygon: ring[:2]}, true},
		{"polygon invalid vertex", Geometry{Kind: KindPolygon, Polygon: []types.Point{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 91, Lng: 0}}}, true},
		{"valid postal codes", Geometry{Kind: KindPostalCodes, PostalCodes: []string{"10001"}}, false},
		{"empty postal codes", Geometry{Kind: KindPostalCodes}, true},
		{"valid cities", Geometry{Kind: KindCities, Cities: []string{"SPRINGFIELD"}}, false},
		{"empty cities", Geometry{Kind: KindCities}, true},
		{"unknown kind", Geometry{Kind: "hexagon"}, true},
		{"missing kind", Geometry{}, true},
	}
	for _, tt := range tests {
		err := tt.g.Validate()
		if (err != nil) != tt.wantErr {
			t.Fatalf("%s: Validate() = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestEffectiveMaxKm(t *testing.T) {
	a := &ServiceArea{}
	if got := a.EffectiveMaxKm(50); got != 50 {
		t.Fatalf("EffectiveMaxKm = %v, want default 50", got)
	}
	own := 12.5
	a.MaxDistanceKm = &own
	if got := a.EffectiveMaxKm(50); got != 12.5 {
		t.Fatalf("EffectiveMaxKm = %v, want 12.5", got)
	}
}

func TestPrefersDay(t *testing.T) {
	a := &ServiceArea{PreferredDays: []time.Weekday{time.Monday, time.Saturday}}
	if !a.PrefersDay(time.Saturday) {
		t.Fatal("Saturday should be preferred")
	}
	if a.PrefersDay(time.Sunday) {
		t.Fatal("Sunday should not be preferred")
	}
}
