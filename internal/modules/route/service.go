// README: Route service; captures dispatch results into a day plan.
package route

import (
	"context"
	"errors"
	"time"

	"fieldmatch/internal/types"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("route not found")
)

type RouteStore interface {
	Create(ctx context.Context, r *Route) error
	Get(ctx context.Context, id types.ID) (*Route, error)
	AppendStop(ctx context.Context, routeID types.ID, stop Stop) error
}

type Service struct {
	store RouteStore
}

func NewService(store RouteStore) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, contractorID types.ID, date time.Time) (*Route, error) {
	if contractorID == "" {
		return nil, ErrBadRequest
	}
	r := &Route{
		ID:           types.NewID(),
		ContractorID: contractorID,
		Date:         date,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Route, error) {
	return s.store.Get(ctx, id)
}

// AddStop appends a job location at the end of the route. Ordering beyond
// append order is a scheduling concern outside this service.
func (s *Service) AddStop(ctx context.Context, routeID types.ID, jobID *types.ID, pos types.Point) (*Route, error) {
	if !pos.Valid() {
		return nil, ErrBadRequest
	}
	if _, err := s.store.Get(ctx, routeID); err != nil {
		return nil, err
	}
	if err := s.store.AppendStop(ctx, routeID, Stop{JobID: jobID, Position: pos}); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, routeID)
}
