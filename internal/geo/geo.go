// README: Pure geographic computation helpers (distance, containment, centroid).
package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"fieldmatch/internal/types"
)

// earthRadiusKm is the IUGG mean Earth radius.
const earthRadiusKm = 6371.0088

// DistanceKm returns the great-circle (haversine) distance in kilometres
// between two points in decimal degrees. Full double precision is kept;
// rounding for display happens at presentation boundaries only.
func DistanceKm(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// DistanceMeters returns the haversine distance in metres.
func DistanceMeters(a, b types.Point) float64 {
	return DistanceKm(a, b) * 1000
}

// PointInRing reports whether p lies inside the polygon described by the
// vertex ring, boundary-inclusive: ring vertices count as inside. The ring
// needs at least 3 vertices; it is closed implicitly.
func PointInRing(p types.Point, vertices []types.Point) bool {
	if len(vertices) < 3 {
		return false
	}
	// Vertices are inside by definition; checked explicitly because the
	// ray-cast result is unreliable exactly on the boundary.
	for _, v := range vertices {
		if v.Lat == p.Lat && v.Lng == p.Lng {
			return true
		}
	}
	return planar.RingContains(toRing(vertices), orb.Point{p.Lng, p.Lat})
}

// RingCentroid returns the area-weighted centroid of the vertex ring.
func RingCentroid(vertices []types.Point) types.Point {
	if len(vertices) == 0 {
		return types.Point{}
	}
	c, _ := planar.CentroidArea(toRing(vertices))
	return types.Point{Lat: c.Y(), Lng: c.X()}
}

func toRing(vertices []types.Point) orb.Ring {
	ring := make(orb.Ring, 0, len(vertices)+1)
	for _, v := range vertices {
		ring = append(ring, orb.Point{v.Lng, v.Lat})
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
