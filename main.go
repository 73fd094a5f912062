package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/cliparse"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/cursorcache"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/db"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/handlers"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/hub"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/loader"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/metrics"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/middleware"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/readstate"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/results"
	"github.com/samkenxstream/turnkey-triumph-326606-cultivated-card-306821-gold-fiber-346123-snapshot-app/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the cache database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	store := db.NewStore(dbConn)

	// Proposals come from the hub and are cached locally, or from the
	// cache alone when the hub is off
	var upstream loader.ProposalStore = store
	var spaces handlers.SpaceSource
	if cfg.HubEnabled() {
		client := hub.New(cfg.HubURL, nil)
		upstream = db.NewWriteThrough(client, store)
		spaces = client
		slog.Info("Hub enabled", "url", cfg.HubURL)
	} else {
		slog.Info("Hub disabled, serving from cache only")
	}

	var cursors readstate.CursorStore
	switch cfg.CursorBackend {
	case cliparse.CursorBackendRedis:
		rdb, err := cursorcache.Open(context.Background(), cfg.RedisURL)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		cursors = cursorcache.New(rdb, cfg.Account)
	default:
		cursors = db.NewCursorStore(dbConn, cfg.Account)
	}

	tracker := readstate.NewTracker(context.Background(), cursors, m)

	if spaces != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		resp, err := handlers.SyncSpaces(ctx, spaces, store, cfg.Account, handlers.DefaultSpaceSyncSize)
		cancel()
		if err != nil {
			slog.Warn("initial space sync failed", "error", err)
		} else {
			slog.Info("Spaces synced", "synced", resp.Synced, "following", resp.Following)
		}
	}

	// Create router
	mux := router.NewRouter(router.Deps{
		Store:    store,
		Loader:   loader.New(upstream, results.NewEngine(), m),
		Sessions: loader.NewRegistry(m),
		Tracker:  tracker,
		Spaces:   spaces,
		Account:  cfg.Account,
		Gatherer: reg,
	})

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
