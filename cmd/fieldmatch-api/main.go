// README: Entry point; loads config, wires services, starts HTTP server and rollup scheduler.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"fieldmatch/internal/config"
	"fieldmatch/internal/geocode"
	httptransport "fieldmatch/internal/http"
	"fieldmatch/internal/infra"
	"fieldmatch/internal/modules/area"
	"fieldmatch/internal/modules/coverage"
	"fieldmatch/internal/modules/dispatch"
	"fieldmatch/internal/modules/performance"
	"fieldmatch/internal/modules/pricing"
	"fieldmatch/internal/modules/route"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config load failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.WithError(err).Fatal("database init failed")
	}
	defer dbPool.Close()

	if err := infra.RunMigrations(ctx, dbPool); err != nil {
		log.WithError(err).Fatal("migrations failed")
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	var resolver geocode.Resolver = geocode.NopResolver{}
	if cfg.Geocode.MapsAPIKey != "" {
		google, err := geocode.NewGoogleResolver(cfg.Geocode.MapsAPIKey)
		if err != nil {
			log.WithError(err).Fatal("maps client init failed")
		}
		ttl := time.Duration(cfg.Geocode.CacheTTLMinutes) * time.Minute
		resolver = geocode.NewCachedResolver(google, redisClient, ttl)
	} else {
		log.Warn("no maps API key configured; postal-code and city areas will not match")
	}

	areaStore := area.NewStore(dbPool)
	areaSvc := area.NewService(areaStore)

	coverageStore := coverage.NewStore(dbPool)
	coverageSvc := coverage.NewService(coverageStore)

	pricingSvc := pricing.NewService(log)
	matcher := area.NewMatcher(log, area.WithDistances())

	dispatchSvc := dispatch.NewService(areaStore, matcher, pricingSvc, resolver, coverageSvc, cfg.Dispatch, log)

	perfStore := performance.NewStore(dbPool)
	perfSvc := performance.NewService(coverageStore, perfStore, cfg.Performance, log)

	routeStore := route.NewStore(dbPool)
	routeSvc := route.NewService(routeStore)

	handler := httptransport.NewRouter(httptransport.ServerDeps{
		Dispatch:    dispatchSvc,
		Area:        areaSvc,
		Coverage:    coverageSvc,
		Performance: perfSvc,
		Route:       routeSvc,
		Log:         log,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go perfSvc.RunScheduler(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", cfg.HTTP.Addr).Info("fieldmatch api listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server error")
	}
}
