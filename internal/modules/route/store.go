// README: Route store backed by PostgreSQL.
package route

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fieldmatch/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, r *Route) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO routes (id, contractor_id, route_date, created_at)
		VALUES ($1, $2, $3, $4)`,
		string(r.ID), string(r.ContractorID), r.Date, r.CreatedAt)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Route, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, contractor_id, route_date, created_at
		FROM routes WHERE id = $1`, string(id))

	var r Route
	err := row.Scan(&r.ID, &r.ContractorID, &r.Date, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT seq, job_id, lat, lng
		FROM route_stops WHERE route_id = $1 ORDER BY seq`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			stop  Stop
			jobID sql.NullString
		)
		if err := rows.Scan(&stop.Seq, &jobID, &stop.Position.Lat, &stop.Position.Lng); err != nil {
			return nil, err
		}
		if jobID.Valid {
			v := types.ID(jobID.String)
			stop.JobID = &v
		}
		r.Stops = append(r.Stops, stop)
	}
	return &r, rows.Err()
}

// AppendStop adds a stop at the next sequence position.
func (s *Store) AppendStop(ctx context.Context, routeID types.ID, stop Stop) error {
	var jobID *string
	if stop.JobID != nil {
		v := string(*stop.JobID)
		jobID = &v
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO route_stops (route_id, seq, job_id, lat, lng)
		SELECT $1, COALESCE(MAX(seq), 0) + 1, $2, $3, $4
		FROM route_stops WHERE route_id = $1`,
		string(routeID), jobID, stop.Position.Lat, stop.Position.Lng)
	return err
}
