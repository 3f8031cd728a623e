package performance

import (
	"context"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"fieldmatch/internal/config"
	"fieldmatch/internal/modules/coverage"
	"fieldmatch/internal/types"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeEvents struct {
	events []*coverage.Event
}

func (f *fakeEvents) ListForPeriod(ctx context.Context, areaID types.ID, start, end time.Time) ([]*coverage.Event, error) {
	return f.events, nil
}

func (f *fakeEvents) ActiveAreaIDs(ctx context.Context, start, end time.Time) ([]types.ID, error) {
	return nil, nil
}

type fakePerfStore struct {
	upserts []*AreaPerformance
}

func (f *fakePerfStore) Upsert(ctx context.Context, p *AreaPerformance) error {
	f.upserts = append(f.upserts, p)
	return nil
}

func (f *fakePerfStore) ListForArea(ctx context.Context, areaID types.ID) ([]*AreaPerformance, error) {
	return nil, nil
}

func (f *fakePerfStore) SetCustomerSatisfaction(ctx context.Context, areaID types.ID, periodStart, periodEnd time.Time, score float64) error {
	return nil
}

func minutes(v float64) *float64 { return &v }

func acceptedEvent(distanceKm float64, chargeCents int64, travelMinutes float64) *coverage.Event {
	return &coverage.Event{
		ID:                types.NewID(),
		ServiceAreaID:     "a1",
		DistanceKm:        distanceKm,
		TravelTimeMinutes: minutes(travelMinutes),
		TravelCharge:      types.Money{Amount: chargeCents, Currency: "USD"},
		WasAccepted:       coverage.OutcomeAccepted,
	}
}

func newTestService(events EventSource, store PerfStore, rate float64) *Service {
	svc := NewService(events, store, config.PerformanceConfig{HourlyCostRate: rate}, testLogger())
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestAggregateComputesMetrics(t *testing.T) {
	events := &fakeEvents{events: []*coverage.Event{
		acceptedEvent(10, 5000, 60),
		acceptedEvent(20, 7000, 30),
		{ServiceAreaID: "a1", DistanceKm: 30, WasAccepted: coverage.OutcomeDeclined},
		{ServiceAreaID: "a1", DistanceKm: 40, WasAccepted: coverage.OutcomeUnknown},
	}}
	store := &fakePerfStore{}
	svc := newTestService(events, store, 40)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	p, err := svc.Aggregate(context.Background(), "a1", start, end)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if p.TotalJobs != 2 {
		t.Fatalf("TotalJobs = %d, want 2 (accepted only)", p.TotalJobs)
	}
	if p.TotalRevenue.Amount != 12000 {
		t.Fatalf("TotalRevenue = %d cents, want 12000", p.TotalRevenue.Amount)
	}
	if p.TotalTravelTimeHours != 1.5 {
		t.Fatalf("TotalTravelTimeHours = %v, want 1.5", p.TotalTravelTimeHours)
	}
	// Average distance and conversion rate cover all attempts, not just
	// accepted ones.
	if p.AverageTravelDistanceKm != 25 {
		t.Fatalf("AverageTravelDistanceKm = %v, want 25", p.AverageTravelDistanceKm)
	}
	if p.ConversionRate != 0.5 {
		t.Fatalf("ConversionRate = %v, want 0.5", p.ConversionRate)
	}
	// 120.00 / (1.5h * 40/h) = 2.0
	if p.ProfitabilityScore != 2.0 {
		t.Fatalf("ProfitabilityScore = %v, want 2.0", p.ProfitabilityScore)
	}
	if len(store.upserts) != 1 {
		t.Fatalf("got %d upserts, want 1", len(store.upserts))
	}
}

func TestAggregateIdempotent(t *testing.T) {
	events := &fakeEvents{events: []*coverage.Event{
		acceptedEvent(10, 5000, 60),
		{ServiceAreaID: "a1", DistanceKm: 30, WasAccepted: coverage.OutcomeDeclined},
	}}
	store := &fakePerfStore{}
	svc := newTestService(events, store, 45)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	first, err := svc.Aggregate(context.Background(), "a1", start, end)
	if err != nil {
		t.Fatalf("first Aggregate: %v", err)
	}
	second, err := svc.Aggregate(context.Background(), "a1", start, end)
	if err != nil {
		t.Fatalf("second Aggregate: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("rerun produced different metrics:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if len(store.upserts) != 2 {
		t.Fatalf("got %d upserts, want 2", len(store.upserts))
	}
}

func TestAggregateRejectsInvalidPeriod(t *testing.T) {
	svc := newTestService(&fakeEvents{}, &fakePerfStore{}, 45)
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	if _, err := svc.Aggregate(context.Background(), "a1", at, at); err != ErrInvalidPeriod {
		t.Fatalf("equal bounds: err = %v, want ErrInvalidPeriod", err)
	}
	if _, err := svc.Aggregate(context.Background(), "a1", at.Add(time.Hour), at); err != ErrInvalidPeriod {
		t.Fatalf("reversed bounds: err = %v, want ErrInvalidPeriod", err)
	}
}

func TestAggregateZeroAttempts(t *testing.T) {
	store := &fakePerfStore{}
	svc := newTestService(&fakeEvents{}, store, 45)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	p, err := svc.Aggregate(context.Background(), "a1", start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if p.TotalJobs != 0 || p.ConversionRate != 0 || p.AverageTravelDistanceKm != 0 || p.ProfitabilityScore != 0 {
		t.Fatalf("empty window must yield zeroed metrics, got %+v", p)
	}
}

func TestAggregateZeroTravelTimeUndefinedScore(t *testing.T) {
	events := &fakeEvents{events: []*coverage.Event{
		{ServiceAreaID: "a1", DistanceKm: 5, TravelCharge: types.Money{Amount: 5000, Currency: "USD"}, WasAccepted: coverage.OutcomeAccepted},
	}}
	svc := newTestService(events, &fakePerfStore{}, 45)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	p, err := svc.Aggregate(context.Background(), "a1", start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if p.ProfitabilityScore != 0 {
		t.Fatalf("score with zero travel time = %v, want 0", p.ProfitabilityScore)
	}
	if p.TotalRevenue.Amount != 5000 {
		t.Fatalf("TotalRevenue = %d, want 5000", p.TotalRevenue.Amount)
	}
}
