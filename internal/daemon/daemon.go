package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumeiq-app/lumeiq/internal/api"
	"github.com/lumeiq-app/lumeiq/internal/app/rewards"
	"github.com/lumeiq-app/lumeiq/internal/app/route"
	"github.com/lumeiq-app/lumeiq/internal/app/score"
	"github.com/lumeiq-app/lumeiq/internal/app/trip"
	"github.com/lumeiq-app/lumeiq/internal/app/verify"
	"github.com/lumeiq-app/lumeiq/internal/domain"
	"github.com/lumeiq-app/lumeiq/internal/health"
	_ "github.com/lumeiq-app/lumeiq/internal/infra/metrics" // Register Prometheus metrics
	"github.com/lumeiq-app/lumeiq/internal/infra/nominatim"
	"github.com/lumeiq-app/lumeiq/internal/infra/osrm"
	"github.com/lumeiq-app/lumeiq/internal/infra/sqlite"
)

// Daemon is the core LumeIQ runtime. It wires together all services.
type Daemon struct {
	Config  Config
	Version string

	DB       *sqlite.DB
	Scores   *score.Service
	Pipeline *verify.Pipeline
	Sessions *trip.SessionTracker
	Live     *trip.LiveTracker
	Planner  *route.Planner
	Rewards  *rewards.Service
	Health   *health.Checker
	Server   *api.Server

	cancel context.CancelFunc
}

// nullWatcher is the default position source: clients push fixes over the
// API, so the daemon-side watch is a no-op subscription.
type nullWatcher struct{}

func (nullWatcher) Watch(_ context.Context, _ func(domain.Position)) (func(), error) {
	return func() {}, nil
}

// New creates and initializes a Daemon with all services wired.
func New(version string) (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg, version)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config, version string) (*Daemon, error) {
	dataDir := cfg.Data.Dir
	if dataDir == "" {
		dataDir = lumeiqHome()
	}
	db, err := sqlite.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	scores := score.NewService(db)

	// Vision provider; without an API key every proof takes the
	// offline-approved path.
	var provider domain.VisionProvider
	if cfg.Vision.APIKey != "" {
		gv, err := verify.NewGoogleVision(context.Background(), cfg.Vision.APIKey)
		if err != nil {
			log.Printf("[daemon] WARNING: vision client failed to initialize: %v (verifications approve offline)", err)
		} else {
			provider = gv
		}
	} else {
		log.Printf("[daemon] no vision API key configured, verifications approve offline")
	}
	pipeline := verify.NewPipeline(verify.NewClassifier(provider), scores)

	sessions := trip.NewSessionTracker(scores)
	live := trip.NewLiveTracker(scores, db, nullWatcher{})

	router := osrm.NewClient(cfg.Routing.OSRMBaseURL)
	geocoder := nominatim.NewClient(cfg.Routing.NominatimBaseURL, cfg.Routing.UserAgent)
	planner := route.NewPlanner(router, geocoder)

	rw := rewards.NewService(db, scores)
	streaks := rewards.NewStreakService(db)
	scores.SetStreaks(streaks)

	srv := api.NewServer(version, scores, pipeline, sessions, live, planner, rw, db)
	srv.SetStreaks(streaks)
	if cfg.API.Metrics {
		srv.EnableMetrics()
	}

	d := &Daemon{
		Config:   cfg,
		Version:  version,
		DB:       db,
		Scores:   scores,
		Pipeline: pipeline,
		Sessions: sessions,
		Live:     live,
		Planner:  planner,
		Rewards:  rw,
		Health:   health.NewChecker(db, dataDir, cfg.Vision.APIKey != ""),
		Server:   srv,
	}
	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("LumeIQ serving on http://%s\n", addr)
	if d.Config.API.Metrics {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
