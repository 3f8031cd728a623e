// README: Service area store backed by PostgreSQL; variant payloads in JSONB.
package area

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

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

const areaColumns = `
	id, owner_id, name, area_type,
	center_lat, center_lng, radius_km, polygon, postal_codes, cities,
	base_travel_charge, per_km_rate, minimum_job_value, currency,
	priority_level, is_primary, is_active, max_distance_km, response_time_hours,
	weekend_surcharge_pct, evening_surcharge_pct,
	emergency_available, emergency_surcharge_pct,
	preferred_days, preferred_hours_start, preferred_hours_end, created_at`

func (s *Store) Create(ctx context.Context, a *ServiceArea) error {
	var centerLat, centerLng *float64
	if a.Geometry.Center != nil {
		centerLat, centerLng = &a.Geometry.Center.Lat, &a.Geometry.Center.Lng
	}
	polygon, _ := json.Marshal(a.Geometry.Polygon)
	postalCodes, _ := json.Marshal(a.Geometry.PostalCodes)
	cities, _ := json.Marshal(a.Geometry.Cities)
	preferredDays, _ := json.Marshal(a.PreferredDays)

	_, err := s.db.Exec(ctx, `
		INSERT INTO service_areas (`+areaColumns+`)
		VALUES ($1, $2, $3, $4,
		        $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14,
		        $15, $16, $17, $18, $19,
		        $20, $21,
		        $22, $23,
		        $24, $25, $26, $27)`,
		string(a.ID), string(a.OwnerID), a.Name, string(a.Geometry.Kind),
		centerLat, centerLng, nilIfZero(a.Geometry.RadiusKm), polygon, postalCodes, cities,
		a.BaseTravelCharge.Amount, a.PerKmRate.Amount, a.MinimumJobValue.Amount, a.BaseTravelCharge.Currency,
		a.PriorityLevel, a.IsPrimary, a.IsActive, a.MaxDistanceKm, a.ResponseTimeHours,
		a.WeekendSurchargePct, a.EveningSurchargePct,
		a.EmergencyAvailable, a.EmergencySurchargePct,
		preferredDays, a.PreferredHours.Start, a.PreferredHours.End, a.CreatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrNameTaken
	}
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*ServiceArea, error) {
	row := s.db.QueryRow(ctx, `SELECT `+areaColumns+` FROM service_areas WHERE id = $1`, string(id))
	a, err := scanArea(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// ListActive returns the active-area snapshot a single query matches
// against. Loaded per request; there is no process-wide cache.
func (s *Store) ListActive(ctx context.Context) ([]*ServiceArea, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+areaColumns+`
		FROM service_areas
		WHERE is_active = TRUE
		ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAreas(rows)
}

func (s *Store) ListByOwner(ctx context.Context, ownerID types.ID) ([]*ServiceArea, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+areaColumns+`
		FROM service_areas
		WHERE owner_id = $1
		ORDER BY created_at, id`, string(ownerID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAreas(rows)
}

func (s *Store) Update(ctx context.Context, a *ServiceArea) error {
	var centerLat, centerLng *float64
	if a.Geometry.Center != nil {
		centerLat, centerLng = &a.Geometry.Center.Lat, &a.Geometry.Center.Lng
	}
	polygon, _ := json.Marshal(a.Geometry.Polygon)
	postalCodes, _ := json.Marshal(a.Geometry.PostalCodes)
	cities, _ := json.Marshal(a.Geometry.Cities)
	preferredDays, _ := json.Marshal(a.PreferredDays)

	tag, err := s.db.Exec(ctx, `
		UPDATE service_areas SET
			name = $2, area_type = $3,
			center_lat = $4, center_lng = $5, radius_km = $6,
			polygon = $7, postal_codes = $8, cities = $9,
			base_travel_charge = $10, per_km_rate = $11, minimum_job_value = $12,
			priority_level = $13, is_primary = $14, is_active = $15,
			max_distance_km = $16, response_time_hours = $17,
			weekend_surcharge_pct = $18, evening_surcharge_pct = $19,
			emergency_available = $20, emergency_surcharge_pct = $21,
			preferred_days = $22, preferred_hours_start = $23, preferred_hours_end = $24
		WHERE id = $1`,
		string(a.ID), a.Name, string(a.Geometry.Kind),
		centerLat, centerLng, nilIfZero(a.Geometry.RadiusKm),
		polygon, postalCodes, cities,
		a.BaseTravelCharge.Amount, a.PerKmRate.Amount, a.MinimumJobValue.Amount,
		a.PriorityLevel, a.IsPrimary, a.IsActive,
		a.MaxDistanceKm, a.ResponseTimeHours,
		a.WeekendSurchargePct, a.EveningSurchargePct,
		a.EmergencyAvailable, a.EmergencySurchargePct,
		preferredDays, a.PreferredHours.Start, a.PreferredHours.End,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrNameTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate disables an area instead of deleting it; coverage events keep
// referencing the row.
func (s *Store) Deactivate(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `UPDATE service_areas SET is_active = FALSE WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearPrimary unsets is_primary on every other area the owner has, so at
// most one primary area exists per contractor.
func (s *Store) ClearPrimary(ctx context.Context, ownerID types.ID, exceptID types.ID) error {
	_, err := s.db.Exec(ctx, `
		UPDATE service_areas SET is_primary = FALSE
		WHERE owner_id = $1 AND id <> $2 AND is_primary = TRUE`,
		string(ownerID), string(exceptID))
	return err
}

func (s *Store) CreateLandmark(ctx context.Context, lm *Landmark) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO landmarks (id, area_id, name, kind, lat, lng, radius_meters, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(lm.ID), string(lm.AreaID), lm.Name, string(lm.Kind),
		lm.Position.Lat, lm.Position.Lng, lm.RadiusMeters, lm.Notes,
	)
	return err
}

func (s *Store) ListLandmarks(ctx context.Context, areaID types.ID) ([]Landmark, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, area_id, name, kind, lat, lng, radius_meters, notes
		FROM landmarks WHERE area_id = $1 ORDER BY id`, string(areaID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Landmark
	for rows.Next() {
		var lm Landmark
		if err := rows.Scan(&lm.ID, &lm.AreaID, &lm.Name, &lm.Kind,
			&lm.Position.Lat, &lm.Position.Lng, &lm.RadiusMeters, &lm.Notes); err != nil {
			return nil, err
		}
		out = append(out, lm)
	}
	return out, rows.Err()
}

// ListLandmarksForAreas loads landmarks for a snapshot of areas in one pass.
func (s *Store) ListLandmarksForAreas(ctx context.Context, areaIDs []types.ID) (map[types.ID][]Landmark, error) {
	if len(areaIDs) == 0 {
		return map[types.ID][]Landmark{}, nil
	}
	ids := make([]string, len(areaIDs))
	for i, id := range areaIDs {
		ids[i] = string(id)
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, area_id, name, kind, lat, lng, radius_meters, notes
		FROM landmarks WHERE area_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[types.ID][]Landmark)
	for rows.Next() {
		var lm Landmark
		if err := rows.Scan(&lm.ID, &lm.AreaID, &lm.Name, &lm.Kind,
			&lm.Position.Lat, &lm.Position.Lng, &lm.RadiusMeters, &lm.Notes); err != nil {
			return nil, err
		}
		out[lm.AreaID] = append(out[lm.AreaID], lm)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArea(row rowScanner) (*ServiceArea, error) {
	var (
		a                        ServiceArea
		kind                     string
		centerLat, centerLng     sql.NullFloat64
		radiusKm, maxDistanceKm  sql.NullFloat64
		polygon, postals, cities []byte
		preferredDays            []byte
		currency                 string
		createdAt                time.Time
	)
	err := row.Scan(
		&a.ID, &a.OwnerID, &a.Name, &kind,
		&centerLat, &centerLng, &radiusKm, &polygon, &postals, &cities,
		&a.BaseTravelCharge.Amount, &a.PerKmRate.Amount, &a.MinimumJobValue.Amount, &currency,
		&a.PriorityLevel, &a.IsPrimary, &a.IsActive, &maxDistanceKm, &a.ResponseTimeHours,
		&a.WeekendSurchargePct, &a.EveningSurchargePct,
		&a.EmergencyAvailable, &a.EmergencySurchargePct,
		&preferredDays, &a.PreferredHours.Start, &a.PreferredHours.End, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	a.Geometry.Kind = GeometryKind(kind)
	if centerLat.Valid && centerLng.Valid {
		a.Geometry.Center = &types.Point{Lat: centerLat.Float64, Lng: centerLng.Float64}
	}
	if radiusKm.Valid {
		a.Geometry.RadiusKm = radiusKm.Float64
	}
	if maxDistanceKm.Valid {
		v := maxDistanceKm.Float64
		a.MaxDistanceKm = &v
	}
	// Payload decode failures leave the field empty; the matcher then flags
	// the row as a diagnostic instead of failing the whole snapshot.
	_ = json.Unmarshal(polygon, &a.Geometry.Polygon)
	_ = json.Unmarshal(postals, &a.Geometry.PostalCodes)
	_ = json.Unmarshal(cities, &a.Geometry.Cities)
	_ = json.Unmarshal(preferredDays, &a.PreferredDays)

	a.BaseTravelCharge.Currency = currency
	a.PerKmRate.Currency = currency
	a.MinimumJobValue.Currency = currency
	a.CreatedAt = createdAt
	return &a, nil
}

func scanAreas(rows pgx.Rows) ([]*ServiceArea, error) {
	var out []*ServiceArea
	for rows.Next() {
		a, err := scanArea(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func nilIfZero(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

func isUniqueViolation(err error) bool {
	// 23505 = unique_violation
	var pgErr interface{ SQLState() string }
	return errors.As(err, &pgErr) && pgErr.SQLState() == "23505"
}
