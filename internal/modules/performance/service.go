// README: Periodic rollup of coverage events into per-area performance metrics.
package performance

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"fieldmatch/internal/config"
	"fieldmatch/internal/modules/coverage"
	"fieldmatch/internal/types"
)

var (
	ErrInvalidPeriod = errors.New("period start must be before period end")
	ErrNotFound      = errors.New("performance rollup not found")
)

// EventSource reads the coverage log. *coverage.Store satisfies it.
type EventSource interface {
	ListForPeriod(ctx context.Context, areaID types.ID, start, end time.Time) ([]*coverage.Event, error)
	ActiveAreaIDs(ctx context.Context, start, end time.Time) ([]types.ID, error)
}

// PerfStore persists rollups. *Store satisfies it.
type PerfStore interface {
	Upsert(ctx context.Context, p *AreaPerformance) error
	ListForArea(ctx context.Context, areaID types.ID) ([]*AreaPerformance, error)
	SetCustomerSatisfaction(ctx context.Context, areaID types.ID, periodStart, periodEnd time.Time, score float64) error
}

type Service struct {
	events EventSource
	store  PerfStore
	cfg    config.PerformanceConfig
	log    *logrus.Logger
	now    func() time.Time
}

func NewService(events EventSource, store PerfStore, cfg config.PerformanceConfig, log *logrus.Logger) *Service {
	return &Service{events: events, store: store, cfg: cfg, log: log, now: time.Now}
}

// Aggregate rolls up an area's coverage events in the half-open window
// [periodStart, periodEnd) and upserts by natural key. Re-running the same
// window overwrites instead of double-counting; concurrent duplicate runs
// converge on the same row.
func (s *Service) Aggregate(ctx context.Context, areaID types.ID, periodStart, periodEnd time.Time) (*AreaPerformance, error) {
	if !periodStart.Before(periodEnd) {
		return nil, ErrInvalidPeriod
	}

	events, err := s.events.ListForPeriod(ctx, areaID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	p := compute(areaID, periodStart, periodEnd, events, s.cfg.HourlyCostRate)
	p.ComputedAt = s.now().UTC()

	if err := s.store.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// compute derives the metrics. Pure; deterministic for a given event list,
// so a rerun yields identical results.
func compute(areaID types.ID, start, end time.Time, events []*coverage.Event, hourlyCostRate float64) *AreaPerformance {
	p := &AreaPerformance{
		ServiceAreaID: areaID,
		PeriodStart:   start,
		PeriodEnd:     end,
		TotalRevenue:  types.Money{Currency: types.DefaultCurrency},
	}

	attempted := len(events)
	var accepted int
	var distanceSum float64

	for _, e := range events {
		distanceSum += e.DistanceKm
		if e.WasAccepted != coverage.OutcomeAccepted {
			continue
		}
		accepted++
		p.TotalRevenue.Amount += e.TravelCharge.Amount
		if e.TravelCharge.Currency != "" {
			p.TotalRevenue.Currency = e.TravelCharge.Currency
		}
		if e.TravelTimeMinutes != nil {
			p.TotalTravelTimeHours += *e.TravelTimeMinutes / 60
		}
	}

	p.TotalJobs = accepted
	if attempted > 0 {
		p.AverageTravelDistanceKm = distanceSum / float64(attempted)
		p.ConversionRate = float64(accepted) / float64(attempted)
	}

	// revenue / (travelTimeHours * hourlyCostRate); zero travel time or
	// rate means the score is undefined and reported as zero.
	if denom := p.TotalTravelTimeHours * hourlyCostRate; denom > 0 {
		p.ProfitabilityScore = p.TotalRevenue.Float64() / denom
	}
	return p
}

func (s *Service) ListForArea(ctx context.Context, areaID types.ID) ([]*AreaPerformance, error) {
	return s.store.ListForArea(ctx, areaID)
}

func (s *Service) SetCustomerSatisfaction(ctx context.Context, areaID types.ID, periodStart, periodEnd time.Time, score float64) error {
	return s.store.SetCustomerSatisfaction(ctx, areaID, periodStart, periodEnd, score)
}

// RunScheduler aggregates the most recently completed window for every area
// with events, on a fixed interval, until the context is cancelled.
func (s *Service) RunScheduler(ctx context.Context) {
	interval := time.Duration(s.cfg.RollupIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.rollupPreviousWindow(ctx)
		}
	}
}

func (s *Service) rollupPreviousWindow(ctx context.Context) {
	window := time.Duration(s.cfg.RollupWindowHours) * time.Hour
	end := s.now().UTC().Truncate(window)
	start := end.Add(-window)

	areaIDs, err := s.events.ActiveAreaIDs(ctx, start, end)
	if err != nil {
		s.log.WithError(err).Error("rollup: listing active areas failed")
		return
	}
	for _, id := range areaIDs {
		if _, err := s.Aggregate(ctx, id, start, end); err != nil {
			s.log.WithError(err).WithField("area_id", id).Error("rollup: aggregation failed")
		}
	}
	if len(areaIDs) > 0 {
		s.log.WithFields(logrus.Fields{
			"areas":        len(areaIDs),
			"period_start": start,
			"period_end":   end,
		}).Info("performance rollup complete")
	}
}
