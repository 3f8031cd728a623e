// README: Ranking engine: filter pipeline, pricing, stable multi-key sort.
package dispatch

import (
	"context"
	"errors"
	"sort"

	"github.com/sirupsen/logrus"

	"fieldmatch/internal/config"
	"fieldmatch/internal/geocode"
	"fieldmatch/internal/modules/area"
	"fieldmatch/internal/modules/coverage"
	"fieldmatch/internal/modules/pricing"
	"fieldmatch/internal/types"
)

var ErrBadCoordinates = errors.New("latitude must be in [-90,90] and longitude in [-180,180]")

// SnapshotStore loads the per-request snapshot of active areas.
// *area.Store satisfies it.
type SnapshotStore interface {
	ListActive(ctx context.Context) ([]*area.ServiceArea, error)
	ListLandmarksForAreas(ctx context.Context, areaIDs []types.ID) (map[types.ID][]area.Landmark, error)
}

// Quoter prices a surviving match. *pricing.Service satisfies it.
type Quoter interface {
	Quote(a *area.ServiceArea, distanceKm float64, qc pricing.QuoteContext) pricing.TravelQuote
}

// Recorder receives the coverage log entry for each returned match.
// *coverage.Service satisfies it.
type Recorder interface {
	RecordAttempt(ctx context.Context, att coverage.Attempt) (types.ID, error)
}

type Service struct {
	store    SnapshotStore
	matcher  *area.Matcher
	pricer   Quoter
	resolver geocode.Resolver
	recorder Recorder
	cfg      config.DispatchConfig
	log      *logrus.Logger
}

func NewService(store SnapshotStore, matcher *area.Matcher, pricer Quoter, resolver geocode.Resolver, recorder Recorder, cfg config.DispatchConfig, log *logrus.Logger) *Service {
	return &Service{
		store:    store,
		matcher:  matcher,
		pricer:   pricer,
		resolver: resolver,
		recorder: recorder,
		cfg:      cfg,
		log:      log,
	}
}

// Query runs the full pipeline: validate, snapshot, resolve, match, rank,
// record. An empty result is a normal outcome, not an error.
func (s *Service) Query(ctx context.Context, q Query) ([]RankedMatch, error) {
	if !q.Location.Valid() {
		// Never clamped: clamping would misreport real availability.
		return nil, ErrBadCoordinates
	}

	areas, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(areas) == 0 {
		return []RankedMatch{}, nil
	}

	// Resolution is only needed when the snapshot contains set-membership
	// variants; a resolver failure degrades those variants rather than
	// failing the query.
	var resolved geocode.Resolved
	if needsResolution(areas) {
		resolved, err = s.resolver.Resolve(ctx, q.Location)
		if err != nil {
			s.log.WithError(err).Warn("location resolution failed; postal/city areas will not match")
			resolved = geocode.Resolved{}
		}
	}

	ids := make([]types.ID, len(areas))
	for i, a := range areas {
		ids[i] = a.ID
	}
	landmarks, err := s.store.ListLandmarksForAreas(ctx, ids)
	if err != nil {
		return nil, err
	}

	outcome := s.matcher.MatchPoint(q.Location, resolved, landmarks, areas)

	ranked := s.Rank(outcome.Results, Filters{
		JobValue:     q.JobValue,
		IsEmergency:  q.IsEmergency,
		MaxResults:   q.MaxResults,
		DefaultMaxKm: s.cfg.DefaultMaxKm,
	}, pricing.QuoteContext{RequestedAt: q.RequestedAt, IsEmergency: q.IsEmergency})

	s.recordMatches(ctx, q, ranked)
	return ranked, nil
}

// Rank applies the filter pipeline, prices survivors, and orders the result
// by (priority level, distance, creation time). Deterministic for any
// permutation of the input.
func (s *Service) Rank(matches []area.MatchResult, f Filters, qc pricing.QuoteContext) []RankedMatch {
	ranked := make([]RankedMatch, 0, len(matches))

	for _, m := range matches {
		if !m.WithinArea {
			continue
		}
		a := m.Area
		if f.JobValue != nil && f.JobValue.Amount < a.MinimumJobValue.Amount {
			continue
		}
		if f.IsEmergency && !a.EmergencyAvailable {
			continue
		}
		// Set-membership variants carry no distance; the travel cap does
		// not apply to them and their distance charge is zero.
		distance := 0.0
		if m.DistanceKm != nil {
			distance = *m.DistanceKm
			if distance > a.EffectiveMaxKm(f.DefaultMaxKm) {
				continue
			}
		}

		ranked = append(ranked, RankedMatch{
			Area:          a,
			AreaID:        a.ID,
			ContractorID:  a.OwnerID,
			DistanceKm:    distance,
			Quote:         s.pricer.Quote(a, distance, qc),
			PriorityLevel: a.PriorityLevel,
		})
	}

	// Lower priority number wins; distance breaks ties; creation order is
	// the final tie-break for full determinism.
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.PriorityLevel != b.PriorityLevel {
			return a.PriorityLevel < b.PriorityLevel
		}
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		if !a.Area.CreatedAt.Equal(b.Area.CreatedAt) {
			return a.Area.CreatedAt.Before(b.Area.CreatedAt)
		}
		return a.AreaID < b.AreaID
	})

	if f.MaxResults > 0 && len(ranked) > f.MaxResults {
		ranked = ranked[:f.MaxResults]
	}
	return ranked
}

// recordMatches forwards results to the coverage log. Best-effort: a
// recording failure never fails the query.
func (s *Service) recordMatches(ctx context.Context, q Query, ranked []RankedMatch) {
	if s.recorder == nil {
		return
	}
	for _, m := range ranked {
		_, err := s.recorder.RecordAttempt(ctx, coverage.Attempt{
			ServiceAreaID: m.AreaID,
			Location:      q.Location,
			DistanceKm:    m.DistanceKm,
			TravelCharge:  m.Quote.Total,
		})
		if err != nil {
			s.log.WithError(err).WithField("area_id", m.AreaID).Warn("failed to record coverage attempt")
		}
	}
}

func needsResolution(areas []*area.ServiceArea) bool {
	for _, a := range areas {
		switch a.Geometry.Kind {
		case area.KindPostalCodes, area.KindCities:
			return true
		}
	}
	return false
}
