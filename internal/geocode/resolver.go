// README: Injected point→postal-code/city resolver; the engine treats results as opaque strings.
package geocode

import (
	"context"

	"fieldmatch/internal/types"
)

// Resolved carries the reverse-geocoded identifiers for a point. Empty
// strings mean the resolver could not determine that field; postal-code and
// city areas simply fail their membership test in that case.
type Resolved struct {
	PostalCode string
	City       string
}

// Resolver turns a coordinate into normalized postal-code/city strings.
// Implementations must not mutate their inputs; results are treated as
// opaque and compared by exact match.
type Resolver interface {
	Resolve(ctx context.Context, p types.Point) (Resolved, error)
}

// NopResolver resolves nothing. Used when no geocoding backend is
// configured; radius and polygon areas are unaffected.
type NopResolver struct{}

func (NopResolver) Resolve(context.Context, types.Point) (Resolved, error) {
	return Resolved{}, nil
}
