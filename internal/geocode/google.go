// README: Google Maps reverse-geocoding implementation of the resolver.
package geocode

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"fieldmatch/internal/types"
)

// GoogleResolver resolves points through the Google Maps Geocoding API.
type GoogleResolver struct {
	client *maps.Client
}

func NewGoogleResolver(apiKey string) (*GoogleResolver, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleResolver{client: client}, nil
}

func (g *GoogleResolver) Resolve(ctx context.Context, p types.Point) (Resolved, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
	})
	if err != nil {
		return Resolved{}, fmt.Errorf("reverse geocode: %w", err)
	}

	var out Resolved
	for _, result := range results {
		for _, comp := range result.AddressComponents {
			for _, t := range comp.Types {
				switch t {
				case "postal_code":
					if out.PostalCode == "" {
						out.PostalCode = Normalize(comp.ShortName)
					}
				case "locality":
					if out.City == "" {
						out.City = Normalize(comp.LongName)
					}
				}
			}
		}
		if out.PostalCode != "" && out.City != "" {
			break
		}
	}
	return out, nil
}

// Normalize canonicalizes a postal code or city name for exact-match
// comparison: trimmed, upper-cased, internal whitespace collapsed.
func Normalize(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
