package control

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/herbarium/florasync/internal/core/config"
	"github.com/herbarium/florasync/internal/infra/botapi"
	redisclient "github.com/herbarium/florasync/internal/infra/redis"
	"github.com/herbarium/florasync/internal/infra/storage"
	"github.com/herbarium/florasync/internal/infra/storage/memory"
	"github.com/herbarium/florasync/internal/infra/storage/postgres"
	"github.com/herbarium/florasync/internal/ingest/dedup"
	"github.com/herbarium/florasync/internal/ingest/health"
)

// Importer is the main application struct that wires providers,
// storage and the dedup pipeline together and manages their lifecycle.
type Importer struct {
	cfg          config.AppConfig
	repo         storage.HerbRepository
	db           *postgres.DB
	redisClient  *redisclient.Client
	trefle       *botapi.TrefleClient
	perenual     *botapi.PerenualClient
	orchestrator *dedup.Orchestrator
	healthServer *health.Server
	reconcileMu  sync.Mutex
	log          *slog.Logger
}

// NewImporter creates an Importer with all dependencies initialized.
// Providers without an API key are left unconfigured; at least one
// must be available.
func NewImporter(cfg config.AppConfig) (*Importer, error) {
	log := slog.Default()

	// 1. Storage
	var repo storage.HerbRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}
		repo = postgres.NewHerbRepo(db)
		log.Info("Using PostgreSQL storage")
	} else {
		repo = memory.NewHerbRepo()
		log.Info("Using Memory storage")
	}

	// 2. Response cache (optional)
	var redisClient *redisclient.Client
	var cache botapi.Cache
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, response cache disabled", "error", err)
		} else {
			cache = redisClient
			log.Info("Provider response cache enabled")
		}
	}

	// 3. Provider clients
	var trefle *botapi.TrefleClient
	var perenual *botapi.PerenualClient
	var providers []health.Provider

	if cfg.Providers.Trefle.APIKey != "" {
		var err error
		trefle, err = botapi.NewTrefleClient(cfg.Providers.Trefle, cache, log)
		if err != nil {
			return nil, fmt.Errorf("failed to init trefle client: %w", err)
		}
		providers = append(providers, trefle)
	} else {
		log.Warn("Trefle API key not set, provider disabled")
	}
	if cfg.Providers.Perenual.APIKey != "" {
		var err error
		perenual, err = botapi.NewPerenualClient(cfg.Providers.Perenual, cache, log)
		if err != nil {
			return nil, fmt.Errorf("failed to init perenual client: %w", err)
		}
		providers = append(providers, perenual)
	} else {
		log.Warn("Perenual API key not set, provider disabled")
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("no provider configured: set at least one API key")
	}

	// 4. Dedup pipeline
	resolver := dedup.NewResolver(repo, cfg.Dedup.PageSize, log)
	orchestrator := dedup.NewOrchestrator(repo, resolver, log)

	// 5. Monitoring server
	var checker health.StoreChecker
	if db != nil {
		checker = db
	}
	healthServer := health.NewServer(providers, checker, cfg.Server.Port)

	return &Importer{
		cfg:          cfg,
		repo:         repo,
		db:           db,
		redisClient:  redisClient,
		trefle:       trefle,
		perenual:     perenual,
		orchestrator: orchestrator,
		healthServer: healthServer,
		log:          log,
	}, nil
}

// Start starts the monitoring server and background jobs.
func (im *Importer) Start(ctx context.Context) error {
	go func() {
		if err := im.healthServer.Start(); err != nil {
			im.log.Error("Health server failed", "error", err)
		}
	}()

	if im.db != nil {
		im.db.StartMetricsCollector(ctx)
	}

	if im.cfg.Dedup.ReconcileInterval > 0 {
		go im.runPeriodicReconcile(ctx)
	}

	return nil
}

// Stop stops the importer.
func (im *Importer) Stop(ctx context.Context) error {
	im.log.Info("Stopping Importer...")

	if im.redisClient != nil {
		if err := im.redisClient.Close(); err != nil {
			im.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if im.db != nil {
		im.db.Close()
	}

	return im.healthServer.Stop(ctx)
}

// Repository exposes the canonical store.
func (im *Importer) Repository() storage.HerbRepository {
	return im.repo
}

// ImportReport summarizes an import run.
type ImportReport struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Merged  int `json:"merged"`
	Errors  int `json:"errors"`
}

// ImportSearch searches the Trefle catalog for the query, fetches the
// detail record for every hit and routes it through the dedup
// pipeline. Per-plant failures are logged and counted, not fatal.
func (im *Importer) ImportSearch(ctx context.Context, query string) (ImportReport, error) {
	var report ImportReport
	if im.trefle == nil {
		return report, fmt.Errorf("trefle provider not configured")
	}

	summaries, err := im.trefle.SearchPlants(ctx, query)
	if err != nil {
		return report, fmt.Errorf("search plants: %w", err)
	}
	im.log.Info("Search returned plants", "query", query, "count", len(summaries))

	for _, summary := range summaries {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		plant, err := im.trefle.GetPlantCached(ctx, summary.ID)
		if err != nil {
			report.Errors++
			im.log.Error("Failed to fetch plant", "id", summary.ID, "error", err)
			continue
		}
		report.Fetched++

		_, created, err := im.orchestrator.CreateOrUpdate(ctx, im.trefle.ExtractEnrichment(plant))
		if err != nil {
			report.Errors++
			im.log.Error("Failed to ingest plant", "id", summary.ID, "error", err)
			continue
		}
		if created {
			report.Created++
		} else {
			report.Merged++
		}
	}
	return report, nil
}

// ImportSpecies walks the Perenual species list page by page, fetches
// details and routes them through the dedup pipeline. pages <= 0
// imports a single page.
func (im *Importer) ImportSpecies(ctx context.Context, startPage, pages, perPage int) (ImportReport, error) {
	var report ImportReport
	if im.perenual == nil {
		return report, fmt.Errorf("perenual provider not configured")
	}
	if startPage <= 0 {
		startPage = 1
	}
	if pages <= 0 {
		pages = 1
	}

	for page := startPage; page < startPage+pages; page++ {
		species, err := im.perenual.ListSpecies(ctx, page, perPage)
		if err != nil {
			return report, fmt.Errorf("list species page %d: %w", page, err)
		}
		if len(species) == 0 {
			break
		}
		im.log.Info("Species page fetched", "page", page, "count", len(species))

		for _, entry := range species {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			detail, err := im.perenual.GetSpeciesDetailsCached(ctx, entry.ID)
			if err != nil {
				report.Errors++
				im.log.Error("Failed to fetch species details", "id", entry.ID, "error", err)
				continue
			}
			report.Fetched++

			_, created, err := im.orchestrator.CreateOrUpdate(ctx, im.perenual.ExtractEnrichment(detail))
			if err != nil {
				report.Errors++
				im.log.Error("Failed to ingest species", "id", entry.ID, "error", err)
				continue
			}
			if created {
				report.Created++
			} else {
				report.Merged++
			}
		}
	}
	return report, nil
}

// Reconcile runs a bulk duplicate reconciliation pass. Only one pass
// runs at a time; concurrent calls wait.
func (im *Importer) Reconcile(ctx context.Context) (dedup.ReconcileReport, error) {
	im.reconcileMu.Lock()
	defer im.reconcileMu.Unlock()
	return im.orchestrator.BulkReconcile(ctx)
}

// ProviderStatuses returns the runtime status of every configured
// provider.
func (im *Importer) ProviderStatuses() map[string]health.ProviderStatus {
	statuses := make(map[string]health.ProviderStatus)
	if im.trefle != nil {
		statuses[im.trefle.Name()] = health.ProviderStatus{
			Circuit: im.trefle.CircuitState().String(),
			Stats:   im.trefle.Stats(),
		}
	}
	if im.perenual != nil {
		statuses[im.perenual.Name()] = health.ProviderStatus{
			Circuit: im.perenual.CircuitState().String(),
			Stats:   im.perenual.Stats(),
		}
	}
	return statuses
}

func (im *Importer) runPeriodicReconcile(ctx context.Context) {
	ticker := time.NewTicker(im.cfg.Dedup.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := im.Reconcile(ctx); err != nil {
				im.log.Error("Periodic reconcile failed", "error", err)
			}
		}
	}
}
