// README: Smoke test cases: environment, schema, dispatch pipeline, and throughput checks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

// schemaTables are the tables the startup migrations create.
var schemaTables = []string{
	"service_areas",
	"landmarks",
	"coverage_events",
	"area_performance",
	"routes",
	"route_stops",
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "DB reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "geocode cache reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "FAIL", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Schema: tables exist",
			Focus: "startup migrations applied",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				for _, t := range schemaTables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					if !exists {
						return Result{Status: "FAIL", Note: "missing table: " + t}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "API: server reachable",
			Focus: "health endpoint",
			Run: func(ctx context.Context, r *Runner) Result {
				start := time.Now()
				resp, err := r.httpc.Get(base + "/health")
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				_ = resp.Body.Close()
				return Result{Status: "PASS", Latency: time.Since(start), Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			},
		},

		// Dispatch pipeline
		httpCase("Dispatch: query (valid point)", base+"/api/dispatch/query", map[string]any{
			"latitude":  40.7128,
			"longitude": -74.0060,
		}, []int{200}, nil),

		httpCase("Dispatch: query (latitude out of range -> 400)", base+"/api/dispatch/query", map[string]any{
			"latitude":  123.0,
			"longitude": -74.0060,
		}, []int{400}, nil),

		httpCase("Dispatch: query (longitude out of range -> 400)", base+"/api/dispatch/query", map[string]any{
			"latitude":  40.0,
			"longitude": 456.0,
		}, []int{400}, nil),

		httpCase("Dispatch: emergency query", base+"/api/dispatch/query", map[string]any{
			"latitude":     40.7128,
			"longitude":    -74.0060,
			"is_emergency": true,
			"max_results":  5,
		}, []int{200}, nil),

		// Area management
		httpCase("Area: create without caller header -> 400", base+"/api/areas", map[string]any{
			"name": "downtown",
		}, []int{400}, nil),

		httpCaseWithHeader("Area: create radius area", base+"/api/areas", map[string]any{
			"name": "bench-radius",
			"geometry": map[string]any{
				"kind":      "radius",
				"center":    map[string]any{"lat": 40.7128, "lng": -74.0060},
				"radius_km": 25,
			},
			"base_travel_charge": 10,
			"per_km_rate":        2,
			"priority_level":     2,
		}, []int{201, 409}, nil),

		httpCaseWithHeader("Area: invalid geometry -> 400", base+"/api/areas", map[string]any{
			"name": "bench-bad-geometry",
			"geometry": map[string]any{
				"kind": "radius",
			},
			"priority_level": 2,
		}, []int{400}, nil),

		httpCase("Coverage: outcome for unknown event -> 404", base+"/api/coverage/nonexistent/outcome", map[string]any{
			"was_accepted": true,
		}, []int{404}, nil),

		httpCase("Performance: invalid period -> 400", base+"/api/performance/aggregate", map[string]any{
			"service_area_id": "a1",
			"period_start":    "2026-02-02T00:00:00Z",
			"period_end":      "2026-02-01T00:00:00Z",
		}, []int{400}, nil),

		// Performance
		{
			Name:  "Perf: dispatch query throughput",
			Focus: "matching pipeline under load",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/dispatch/query", map[string]any{
					"latitude":  40.7128,
					"longitude": -74.0060,
				})
			},
		},
	}
}

func httpCase(name, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return httpCaseHeaders(name, url, body, nil, okStatuses, pendingStatuses)
}

func httpCaseWithHeader(name, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return httpCaseHeaders(name, url, body, map[string]string{"X-Contractor-ID": "bench-contractor"}, okStatuses, pendingStatuses)
}

func httpCaseHeaders(name, url string, body any, headers map[string]string, okStatuses, pendingStatuses []int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			var reader io.Reader
			if body != nil {
				b, _ := json.Marshal(body)
				reader = strings.NewReader(string(b))
			}
			req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
			req.Header.Set("Content-Type", "application/json")
			for k, v := range headers {
				req.Header.Set(k, v)
			}
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			latency := time.Since(start)

			if contains(okStatuses, resp.StatusCode) {
				return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			if contains(pendingStatuses, resp.StatusCode) {
				return Result{Status: "PENDING", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
		},
	}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var count int64
	var errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				mu.Lock()
				count++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}
