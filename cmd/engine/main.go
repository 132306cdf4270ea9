package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/cacsx/intel-engine/internal/api"
	"github.com/cacsx/intel-engine/internal/assistant"
	"github.com/cacsx/intel-engine/internal/config"
	"github.com/cacsx/intel-engine/internal/db"
	"github.com/cacsx/intel-engine/internal/feed"
	"github.com/cacsx/intel-engine/internal/graph"
	"github.com/cacsx/intel-engine/internal/heuristics"
	"github.com/cacsx/intel-engine/internal/store"
	"github.com/cacsx/intel-engine/pkg/models"
)

const (
	alertHistory    = 1000
	shutdownTimeout = 10 * time.Second
)

func main() {
	log.Println("Starting CACS-X Intelligence Engine...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: invalid configuration: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// ─── Counters and operator settings ────────────────────────────────
	kv := openStateKV(cfg.Storage.StatePath)
	defer kv.Close()
	state := store.NewStateStore(kv, cfg.DefaultSettings())

	// ─── Wallet intelligence source ────────────────────────────────────
	// Simulated fixtures by default; PostgreSQL when DATABASE_URL is set.
	mock := feed.NewMockSource(cfg.Simulator.Seed)
	var source feed.DataSource = mock
	var caseStore heuristics.CaseStore

	dbStore := connectPostgres(ctx, cfg.Storage, mock)
	if dbStore != nil {
		defer dbStore.Close()
		source = dbStore
		caseStore = dbStore
	}

	// ─── Relationship graph (optional) ─────────────────────────────────
	var syncer *graph.Syncer
	if cfg.Graph.URI != "" {
		client, err := graph.NewNeo4jClient(ctx, cfg.Graph)
		if err != nil {
			log.Printf("Warning: Failed to connect to graph database, relationship sync disabled. Error: %v", err)
		} else {
			syncer = graph.NewSyncer(client)
			defer syncer.Close(context.Background())
		}
	}

	// ─── Live stream and alerts ────────────────────────────────────────
	wsHub := api.NewHub()
	go wsHub.Run()

	alerts := heuristics.NewAlertManager(func(a models.Alert) {
		wsHub.Broadcast(feed.AlertEvent(a).Encode())
		if dbStore != nil {
			if err := dbStore.SaveAlert(context.Background(), a); err != nil {
				log.Printf("[Alert] Failed to persist alert %s: %v", a.ID, err)
			}
		}
	}, alertHistory)

	if history, err := source.ListAlerts(ctx); err != nil {
		log.Printf("Warning: Failed to load alert history: %v", err)
	} else {
		alerts.Seed(history)
	}

	if cfg.Webhook.URL != "" {
		var headers map[string]string
		if cfg.Webhook.Token != "" {
			headers = map[string]string{"X-Token": cfg.Webhook.Token}
		}
		alerts.RegisterWebhook("default", cfg.Webhook.URL, cfg.Webhook.MinSeverity, headers)
	}

	// ─── Cases and watchlist ───────────────────────────────────────────
	cases := heuristics.NewCaseManager(caseStore)
	if caseStore != nil {
		if _, err := cases.Load(ctx); err != nil {
			log.Printf("Warning: %v", err)
		}
	} else {
		cases.Seed(mock.Cases())
	}

	watchlist := heuristics.NewWalletWatchlist()
	watched := 0
	for _, cf := range cases.List("") {
		if cf.Status == models.CaseClosed {
			continue
		}
		watched += watchlist.LoadFromCase(cf, func(id string) (models.Wallet, bool) {
			w, err := source.GetWallet(ctx, id)
			return w, err == nil
		})
	}
	log.Printf("[Watchlist] Watching %d wallet(s) from open cases", watched)

	// ─── Background simulator ──────────────────────────────────────────
	sim := feed.NewSimulator(source, state, alerts, wsHub, cfg.Simulator.Seed)
	go sim.Run(ctx)

	r := api.SetupRouter(api.Deps{
		Source:         source,
		State:          state,
		Alerts:         alerts,
		Cases:          cases,
		Watchlist:      watchlist,
		Assistant:      assistant.New(),
		Graph:          syncer,
		Hub:            wsHub,
		AuthToken:      cfg.HTTP.AuthToken,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RateLimitRPM:   cfg.HTTP.RateLimitRPM,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
		DBConnected:    dbStore != nil,
	})

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.HTTP.Port),
		Handler: r,
	}
	go func() {
		log.Printf("Engine running on :%d (layering threshold %s, %d scan workers)",
			cfg.HTTP.Port, cfg.Detection.LayeringThreshold, cfg.Detection.ScanWorkers)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: graceful shutdown failed: %v", err)
	}
}

// openStateKV opens the bbolt state file, falling back to memory when no
// path is configured or the file cannot be opened.
func openStateKV(path string) store.KV {
	if path == "" {
		log.Println("[State] STATE_DB_PATH is empty, keeping counters in memory")
		return store.NewMemoryKV()
	}
	kv, err := store.OpenBolt(path)
	if err != nil {
		log.Printf("Warning: Failed to open state file %s, keeping counters in memory. Error: %v", path, err)
		return store.NewMemoryKV()
	}
	log.Printf("[State] Using %s", path)
	return kv
}

// connectPostgres returns nil when no database is configured or it is
// unreachable; the engine then serves the simulated fixtures.
func connectPostgres(ctx context.Context, cfg config.StorageConfig, seed *feed.MockSource) *db.PostgresStore {
	if cfg.DatabaseURL == "" {
		log.Println("[DB] DATABASE_URL not set, serving simulated wallet data")
		return nil
	}

	dbStore, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to PostgreSQL, serving simulated wallet data. Error: %v", err)
		return nil
	}
	if err := dbStore.InitSchema(ctx); err != nil {
		log.Printf("Warning: DB schema init failed, serving simulated wallet data. Error: %v", err)
		dbStore.Close()
		return nil
	}
	if cfg.SeedDatabase {
		if err := dbStore.SeedFrom(ctx, seed, seed.Cases()); err != nil {
			log.Printf("Warning: DB seed failed: %v", err)
		}
	}
	return dbStore
}
