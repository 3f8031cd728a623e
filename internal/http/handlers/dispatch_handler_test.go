package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"fieldmatch/internal/config"
	"fieldmatch/internal/geocode"
	"fieldmatch/internal/modules/area"
	"fieldmatch/internal/modules/dispatch"
	"fieldmatch/internal/modules/pricing"
	"fieldmatch/internal/types"
)

type stubAreaStore struct {
	areas []*area.ServiceArea
}

func (s *stubAreaStore) ListActive(ctx context.Context) ([]*area.ServiceArea, error) {
	return s.areas, nil
}

func (s *stubAreaStore) ListLandmarksForAreas(ctx context.Context, ids []types.ID) (map[types.ID][]area.Landmark, error) {
	return nil, nil
}

func newDispatchRouter(areas []*area.ServiceArea) http.Handler {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	svc := dispatch.NewService(
		&stubAreaStore{areas: areas},
		area.NewMatcher(log, area.WithDistances()),
		pricing.NewService(log),
		geocode.NopResolver{},
		nil,
		config.DispatchConfig{DefaultMaxKm: 50},
		log,
	)

	r := gin.New()
	r.POST("/api/dispatch/query", NewDispatchHandler(svc).Query)
	return r
}

func postJSON(t *testing.T, h http.Handler, url, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestDispatchQueryInvalidCoordinates(t *testing.T) {
	router := newDispatchRouter(nil)

	w := postJSON(t, router, "/api/dispatch/query", `{"latitude": 123, "longitude": -74}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Contains(t, resp["error"], "latitude")
}

func TestDispatchQueryMalformedBody(t *testing.T) {
	router := newDispatchRouter(nil)
	w := postJSON(t, router, "/api/dispatch/query", `{"latitude": "nope"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDispatchQueryReturnsRankedMatches(t *testing.T) {
	center := types.Point{Lat: 0, Lng: 0}
	a := &area.ServiceArea{
		ID:      "a1",
		OwnerID: "c1",
		Geometry: area.Geometry{
			Kind:     area.KindRadius,
			Center:   &center,
			RadiusKm: 25,
		},
		BaseTravelCharge: types.Money{Amount: 1000, Currency: "USD"},
		PerKmRate:        types.Money{Amount: 200, Currency: "USD"},
		PriorityLevel:    1,
		IsActive:         true,
		PreferredHours:   area.HoursRange{Start: 0, End: 24},
		CreatedAt:        time.Now(),
	}
	router := newDispatchRouter([]*area.ServiceArea{a})

	// 2026-02-04 is a Wednesday; no surcharges apply.
	w := postJSON(t, router, "/api/dispatch/query",
		`{"latitude": 0.0719, "longitude": 0, "requested_at": "2026-02-04T12:00:00Z"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Matches []struct {
			AreaID       string  `json:"area_id"`
			ContractorID string  `json:"contractor_id"`
			DistanceKm   float64 `json:"distance_km"`
			Quote        struct {
				BaseCharge float64 `json:"base_charge"`
				Total      float64 `json:"total"`
				Currency   string  `json:"currency"`
			} `json:"quote"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Matches, 1)

	m := resp.Matches[0]
	require.Equal(t, "a1", m.AreaID)
	require.Equal(t, "c1", m.ContractorID)
	require.InDelta(t, 8.0, m.DistanceKm, 0.05)
	require.Equal(t, 10.0, m.Quote.BaseCharge)
	require.Equal(t, "USD", m.Quote.Currency)
	// base 10 + 2/km at ~8 km, no surcharges
	require.InDelta(t, 26.0, m.Quote.Total, 0.05)
}

func TestDispatchQueryEmptyResult(t *testing.T) {
	router := newDispatchRouter(nil)

	w := postJSON(t, router, "/api/dispatch/query", `{"latitude": 40.7, "longitude": -74}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Matches []json.RawMessage `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Empty(t, resp.Matches)
}
