// README: Coverage recorder: append-only audit log of match attempts and outcomes.
package coverage

import (
	"context"
	"errors"
	"time"

	"fieldmatch/internal/types"
)

var (
	ErrBadRequest      = errors.New("bad request")
	ErrNotFound        = errors.New("coverage event not found")
	ErrOutcomeRecorded = errors.New("outcome already recorded for this event")
)

// EventStore is the persistence surface the recorder needs. *Store
// satisfies it.
type EventStore interface {
	Insert(ctx context.Context, e *Event) error
	SetOutcome(ctx context.Context, id types.ID, accepted bool, declineReason *string) error
	Get(ctx context.Context, id types.ID) (*Event, error)
}

type Service struct {
	store EventStore
}

func NewService(store EventStore) *Service {
	return &Service{store: store}
}

// RecordAttempt appends a new event with its outcome unknown. All fields
// except the outcome pair are write-once.
func (s *Service) RecordAttempt(ctx context.Context, att Attempt) (types.ID, error) {
	if att.ServiceAreaID == "" || !att.Location.Valid() {
		return "", ErrBadRequest
	}
	e := &Event{
		ID:                types.NewID(),
		ServiceAreaID:     att.ServiceAreaID,
		JobID:             att.JobID,
		Location:          att.Location,
		DistanceKm:        att.DistanceKm,
		TravelTimeMinutes: att.TravelTimeMinutes,
		TravelCharge:      att.TravelCharge,
		WasAccepted:       OutcomeUnknown,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, e); err != nil {
		return "", err
	}
	return e.ID, nil
}

// RecordOutcome sets the accept/decline result exactly once. A second call
// returns ErrOutcomeRecorded.
func (s *Service) RecordOutcome(ctx context.Context, eventID types.ID, accepted bool, declineReason *string) error {
	if eventID == "" {
		return ErrBadRequest
	}
	if accepted && declineReason != nil {
		return ErrBadRequest
	}
	return s.store.SetOutcome(ctx, eventID, accepted, declineReason)
}

func (s *Service) Get(ctx context.Context, eventID types.ID) (*Event, error) {
	return s.store.Get(ctx, eventID)
}
