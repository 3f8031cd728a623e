package coverage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"

	"fieldmatch/internal/types"
)

var eventColumns = []string{
	"id", "service_area_id", "job_id", "lat", "lng",
	"distance_km", "travel_time_minutes", "travel_charge", "currency",
	"was_accepted", "decline_reason", "created_at",
}

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewStore(mock)
}

func TestStoreInsert(t *testing.T) {
	mock, store := newMockStore(t)

	e := &Event{
		ID:            "ev1",
		ServiceAreaID: "a1",
		Location:      types.Point{Lat: 40.7, Lng: -74},
		DistanceKm:    8,
		TravelCharge:  types.Money{Amount: 2200, Currency: "USD"},
		CreatedAt:     time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO coverage_events").
		WithArgs("ev1", "a1", pgxmock.AnyArg(), 40.7, -74.0, 8.0, pgxmock.AnyArg(), int64(2200), "USD", e.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := store.Insert(context.Background(), e); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestStoreSetOutcome(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectExec("UPDATE coverage_events").
		WithArgs("ev1", true, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := store.SetOutcome(context.Background(), "ev1", true, nil); err != nil {
		t.Fatalf("SetOutcome: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestStoreSetOutcomeAlreadyRecorded(t *testing.T) {
	mock, store := newMockStore(t)

	// The guarded UPDATE touches nothing because was_accepted is set.
	mock.ExpectExec("UPDATE coverage_events").
		WithArgs("ev1", false, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	// The follow-up read finds the event, so the failure is a repeat write.
	mock.ExpectQuery("SELECT (.+) FROM coverage_events").
		WithArgs("ev1").
		WillReturnRows(pgxmock.NewRows(eventColumns).AddRow(
			"ev1", "a1", nil, 40.7, -74.0, 8.0, nil, int64(2200), "USD",
			true, nil, time.Now().UTC(),
		))

	err := store.SetOutcome(context.Background(), "ev1", false, nil)
	if !errors.Is(err, ErrOutcomeRecorded) {
		t.Fatalf("err = %v, want ErrOutcomeRecorded", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestStoreSetOutcomeUnknownEvent(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectExec("UPDATE coverage_events").
		WithArgs("missing", true, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT (.+) FROM coverage_events").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	err := store.SetOutcome(context.Background(), "missing", true, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStoreGetMapsOutcome(t *testing.T) {
	mock, store := newMockStore(t)

	reason := "too far"
	mock.ExpectQuery("SELECT (.+) FROM coverage_events").
		WithArgs("ev1").
		WillReturnRows(pgxmock.NewRows(eventColumns).AddRow(
			"ev1", "a1", nil, 40.7, -74.0, 8.0, 25.0, int64(2200), "USD",
			false, reason, time.Now().UTC(),
		))

	e, err := store.Get(context.Background(), "ev1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if e.WasAccepted != OutcomeDeclined {
		t.Fatalf("WasAccepted = %s, want declined", e.WasAccepted)
	}
	if e.DeclineReason == nil || *e.DeclineReason != reason {
		t.Fatalf("DeclineReason = %v, want %q", e.DeclineReason, reason)
	}
	if e.TravelTimeMinutes == nil || *e.TravelTimeMinutes != 25 {
		t.Fatalf("TravelTimeMinutes = %v, want 25", e.TravelTimeMinutes)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM coverage_events").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
