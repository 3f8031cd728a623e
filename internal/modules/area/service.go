// README: Service area service; owner-scoped writes and validation.
package area

import (
	"context"
	"errors"
	"time"

	"fieldmatch/internal/types"
)

var (
	ErrBadRequest      = errors.New("bad request")
	ErrNotFound        = errors.New("service area not found")
	ErrNotOwner        = errors.New("caller does not own this service area")
	ErrNameTaken       = errors.New("area name already in use for this contractor")
	ErrInvalidGeometry = errors.New("geometry payload does not match area type")
	ErrBadPriority     = errors.New("priority level must be between 1 and 5")
)

// AreaStore is the persistence surface the service needs. *Store satisfies it.
type AreaStore interface {
	Create(ctx context.Context, a *ServiceArea) error
	Get(ctx context.Context, id types.ID) (*ServiceArea, error)
	ListByOwner(ctx context.Context, ownerID types.ID) ([]*ServiceArea, error)
	Update(ctx context.Context, a *ServiceArea) error
	Deactivate(ctx context.Context, id types.ID) error
	ClearPrimary(ctx context.Context, ownerID, exceptID types.ID) error
	CreateLandmark(ctx context.Context, lm *Landmark) error
	ListLandmarks(ctx context.Context, areaID types.ID) ([]Landmark, error)
}

type Service struct {
	store AreaStore
}

func NewService(store AreaStore) *Service {
	return &Service{store: store}
}

type CreateCommand struct {
	OwnerID  types.ID
	Name     string
	Geometry Geometry

	BaseTravelCharge types.Money
	PerKmRate        types.Money
	MinimumJobValue  types.Money

	PriorityLevel int
	IsPrimary     bool

	MaxDistanceKm     *float64
	ResponseTimeHours float64

	WeekendSurchargePct   float64
	EveningSurchargePct   float64
	EmergencyAvailable    bool
	EmergencySurchargePct float64

	PreferredDays  []time.Weekday
	PreferredHours HoursRange
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*ServiceArea, error) {
	if cmd.OwnerID == "" || cmd.Name == "" {
		return nil, ErrBadRequest
	}
	if err := cmd.Geometry.Validate(); err != nil {
		return nil, err
	}
	if cmd.PriorityLevel < 1 || cmd.PriorityLevel > 5 {
		return nil, ErrBadPriority
	}
	cmd.Geometry.NormalizeSets()

	a := &ServiceArea{
		ID:                    types.NewID(),
		OwnerID:               cmd.OwnerID,
		Name:                  cmd.Name,
		Geometry:              cmd.Geometry,
		BaseTravelCharge:      cmd.BaseTravelCharge,
		PerKmRate:             cmd.PerKmRate,
		MinimumJobValue:       cmd.MinimumJobValue,
		PriorityLevel:         cmd.PriorityLevel,
		IsPrimary:             cmd.IsPrimary,
		IsActive:              true,
		MaxDistanceKm:         cmd.MaxDistanceKm,
		ResponseTimeHours:     cmd.ResponseTimeHours,
		WeekendSurchargePct:   cmd.WeekendSurchargePct,
		EveningSurchargePct:   cmd.EveningSurchargePct,
		EmergencyAvailable:    cmd.EmergencyAvailable,
		EmergencySurchargePct: cmd.EmergencySurchargePct,
		PreferredDays:         cmd.PreferredDays,
		PreferredHours:        cmd.PreferredHours,
		CreatedAt:             time.Now().UTC(),
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	if a.IsPrimary {
		// One primary area per contractor, enforced on the write path.
		if err := s.store.ClearPrimary(ctx, a.OwnerID, a.ID); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*ServiceArea, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID types.ID) ([]*ServiceArea, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

type UpdateCommand struct {
	AreaID  types.ID
	OwnerID types.ID // caller; must match the row's owner

	Name     *string
	Geometry *Geometry

	BaseTravelCharge *types.Money
	PerKmRate        *types.Money
	MinimumJobValue  *types.Money

	PriorityLevel *int
	IsPrimary     *bool

	MaxDistanceKm     *float64
	ResponseTimeHours *float64

	WeekendSurchargePct   *float64
	EveningSurchargePct   *float64
	EmergencyAvailable    *bool
	EmergencySurchargePct *float64

	PreferredDays  *[]time.Weekday
	PreferredHours *HoursRange
}

func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (*ServiceArea, error) {
	a, err := s.store.Get(ctx, cmd.AreaID)
	if err != nil {
		return nil, err
	}
	if a.OwnerID != cmd.OwnerID {
		return nil, ErrNotOwner
	}

	if cmd.Name != nil {
		a.Name = *cmd.Name
	}
	if cmd.Geometry != nil {
		if err := cmd.Geometry.Validate(); err != nil {
			return nil, err
		}
		cmd.Geometry.NormalizeSets()
		a.Geometry = *cmd.Geometry
	}
	if cmd.BaseTravelCharge != nil {
		a.BaseTravelCharge = *cmd.BaseTravelCharge
	}
	if cmd.PerKmRate != nil {
		a.PerKmRate = *cmd.PerKmRate
	}
	if cmd.MinimumJobValue != nil {
		a.MinimumJobValue = *cmd.MinimumJobValue
	}
	if cmd.PriorityLevel != nil {
		if *cmd.PriorityLevel < 1 || *cmd.PriorityLevel > 5 {
			return nil, ErrBadPriority
		}
		a.PriorityLevel = *cmd.PriorityLevel
	}
	if cmd.IsPrimary != nil {
		a.IsPrimary = *cmd.IsPrimary
	}
	if cmd.MaxDistanceKm != nil {
		a.MaxDistanceKm = cmd.MaxDistanceKm
	}
	if cmd.ResponseTimeHours != nil {
		a.ResponseTimeHours = *cmd.ResponseTimeHours
	}
	if cmd.WeekendSurchargePct != nil {
		a.WeekendSurchargePct = *cmd.WeekendSurchargePct
	}
	if cmd.EveningSurchargePct != nil {
		a.EveningSurchargePct = *cmd.EveningSurchargePct
	}
	if cmd.EmergencyAvailable != nil {
		a.EmergencyAvailable = *cmd.EmergencyAvailable
	}
	if cmd.EmergencySurchargePct != nil {
		a.EmergencySurchargePct = *cmd.EmergencySurchargePct
	}
	if cmd.PreferredDays != nil {
		a.PreferredDays = *cmd.PreferredDays
	}
	if cmd.PreferredHours != nil {
		a.PreferredHours = *cmd.PreferredHours
	}

	if err := s.store.Update(ctx, a); err != nil {
		return nil, err
	}
	if cmd.IsPrimary != nil && *cmd.IsPrimary {
		if err := s.store.ClearPrimary(ctx, a.OwnerID, a.ID); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Deactivate disables the area. Areas referenced by coverage events are
// never hard-deleted.
func (s *Service) Deactivate(ctx context.Context, areaID, ownerID types.ID) error {
	a, err := s.store.Get(ctx, areaID)
	if err != nil {
		return err
	}
	if a.OwnerID != ownerID {
		return ErrNotOwner
	}
	return s.store.Deactivate(ctx, areaID)
}

type LandmarkCommand struct {
	AreaID       types.ID
	OwnerID      types.ID
	Name         string
	Kind         LandmarkKind
	Position     types.Point
	RadiusMeters float64
	Notes        string
}

func (s *Service) AddLandmark(ctx context.Context, cmd LandmarkCommand) (*Landmark, error) {
	if cmd.Name == "" || !cmd.Position.Valid() {
		return nil, ErrBadRequest
	}
	switch cmd.Kind {
	case LandmarkReference, LandmarkBoundary, LandmarkExclusion:
	default:
		return nil, ErrBadRequest
	}
	a, err := s.store.Get(ctx, cmd.AreaID)
	if err != nil {
		return nil, err
	}
	if a.OwnerID != cmd.OwnerID {
		return nil, ErrNotOwner
	}

	lm := &Landmark{
		ID:           types.NewID(),
		AreaID:       cmd.AreaID,
		Name:         cmd.Name,
		Kind:         cmd.Kind,
		Position:     cmd.Position,
		RadiusMeters: cmd.RadiusMeters,
		Notes:        cmd.Notes,
	}
	if err := s.store.CreateLandmark(ctx, lm); err != nil {
		return nil, err
	}
	return lm, nil
}

func (s *Service) ListLandmarks(ctx context.Context, areaID types.ID) ([]Landmark, error) {
	if _, err := s.store.Get(ctx, areaID); err != nil {
		return nil, err
	}
	return s.store.ListLandmarks(ctx, areaID)
}
