// README: Coverage event store backed by PostgreSQL (append-only).
package coverage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"fieldmatch/internal/types"
)

// Querier is the subset of pgxpool.Pool the store uses; pgxmock satisfies
// it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db Querier
}

func NewStore(db Querier) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO coverage_events (
			id, service_area_id, job_id, lat, lng,
			distance_km, travel_time_minutes, travel_charge, currency, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		string(e.ID), string(e.ServiceAreaID), idPtr(e.JobID),
		e.Location.Lat, e.Location.Lng,
		e.DistanceKm, e.TravelTimeMinutes, e.TravelCharge.Amount, e.TravelCharge.Currency,
		e.CreatedAt,
	)
	return err
}

// SetOutcome writes was_accepted/decline_reason once. The WHERE clause
// rejects a second write without any locking.
func (s *Store) SetOutcome(ctx context.Context, id types.ID, accepted bool, declineReason *string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE coverage_events
		SET was_accepted = $2, decline_reason = $3
		WHERE id = $1 AND was_accepted IS NULL`,
		string(id), accepted, declineReason,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the event does not exist or its outcome is already set.
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return ErrOutcomeRecorded
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Event, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, service_area_id, job_id, lat, lng,
		       distance_km, travel_time_minutes, travel_charge, currency,
		       was_accepted, decline_reason, created_at
		FROM coverage_events WHERE id = $1`, string(id))
	e, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// ListForPeriod returns an area's events in the half-open window
// [start, end), oldest first.
func (s *Store) ListForPeriod(ctx context.Context, areaID types.ID, start, end time.Time) ([]*Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, service_area_id, job_id, lat, lng,
		       distance_km, travel_time_minutes, travel_charge, currency,
		       was_accepted, decline_reason, created_at
		FROM coverage_events
		WHERE service_area_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at, id`,
		string(areaID), start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ActiveAreaIDs lists areas with at least one event in [start, end); the
// scheduled aggregator uses it to pick its work set.
func (s *Store) ActiveAreaIDs(ctx context.Context, start, end time.Time) ([]types.ID, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT service_area_id
		FROM coverage_events
		WHERE created_at >= $1 AND created_at < $2`,
		start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.ID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, types.ID(id))
	}
	return out, rows.Err()
}

func scanEvent(row pgx.Row) (*Event, error) {
	var (
		e             Event
		jobID         sql.NullString
		travelTime    sql.NullFloat64
		wasAccepted   sql.NullBool
		declineReason sql.NullString
	)
	err := row.Scan(
		&e.ID, &e.ServiceAreaID, &jobID, &e.Location.Lat, &e.Location.Lng,
		&e.DistanceKm, &travelTime, &e.TravelCharge.Amount, &e.TravelCharge.Currency,
		&wasAccepted, &declineReason, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if jobID.Valid {
		v := types.ID(jobID.String)
		e.JobID = &v
	}
	if travelTime.Valid {
		v := travelTime.Float64
		e.TravelTimeMinutes = &v
	}
	e.WasAccepted = OutcomeUnknown
	if wasAccepted.Valid {
		if wasAccepted.Bool {
			e.WasAccepted = OutcomeAccepted
		} else {
			e.WasAccepted = OutcomeDeclined
		}
	}
	if declineReason.Valid {
		e.DeclineReason = &declineReason.String
	}
	return &e, nil
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
