// README: Idempotent schema migrations applied at startup.
package infra

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS service_areas (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		area_type TEXT NOT NULL,
		center_lat DOUBLE PRECISION,
		center_lng DOUBLE PRECISION,
		radius_km DOUBLE PRECISION,
		polygon JSONB,
		postal_codes JSONB,
		cities JSONB,
		base_travel_charge BIGINT NOT NULL DEFAULT 0,
		per_km_rate BIGINT NOT NULL DEFAULT 0,
		minimum_job_value BIGINT NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT 'USD',
		priority_level INT NOT NULL DEFAULT 3,
		is_primary BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		max_distance_km DOUBLE PRECISION,
		response_time_hours DOUBLE PRECISION NOT NULL DEFAULT 24,
		weekend_surcharge_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
		evening_surcharge_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
		emergency_available BOOLEAN NOT NULL DEFAULT FALSE,
		emergency_surcharge_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
		preferred_days JSONB,
		preferred_hours_start INT NOT NULL DEFAULT 8,
		preferred_hours_end INT NOT NULL DEFAULT 18,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (owner_id, name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_service_areas_owner ON service_areas(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_service_areas_active ON service_areas(is_active)`,
	`CREATE TABLE IF NOT EXISTS landmarks (
		id TEXT PRIMARY KEY,
		area_id TEXT NOT NULL REFERENCES service_areas(id),
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		radius_meters DOUBLE PRECISION NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_landmarks_area ON landmarks(area_id)`,
	`CREATE TABLE IF NOT EXISTS coverage_events (
		id TEXT PRIMARY KEY,
		service_area_id TEXT NOT NULL REFERENCES service_areas(id),
		job_id TEXT,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		distance_km DOUBLE PRECISION NOT NULL,
		travel_time_minutes DOUBLE PRECISION,
		travel_charge BIGINT NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		was_accepted BOOLEAN,
		decline_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_coverage_events_area_time ON coverage_events(service_area_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS area_performance (
		service_area_id TEXT NOT NULL REFERENCES service_areas(id),
		period_start TIMESTAMPTZ NOT NULL,
		period_end TIMESTAMPTZ NOT NULL,
		total_jobs INT NOT NULL,
		total_revenue BIGINT NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		total_travel_time_hours DOUBLE PRECISION NOT NULL,
		average_travel_distance_km DOUBLE PRECISION NOT NULL,
		conversion_rate DOUBLE PRECISION NOT NULL,
		customer_satisfaction DOUBLE PRECISION,
		profitability_score DOUBLE PRECISION NOT NULL,
		computed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (service_area_id, period_start, period_end)
	)`,
	`CREATE TABLE IF NOT EXISTS routes (
		id TEXT PRIMARY KEY,
		contractor_id TEXT NOT NULL,
		route_date DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS route_stops (
		route_id TEXT NOT NULL REFERENCES routes(id),
		seq INT NOT NULL,
		job_id TEXT,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (route_id, seq)
	)`,
}

// RunMigrations applies the schema statements in order. Every statement is
// written to be safe to re-run.
func RunMigrations(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
