package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ersonp/biblio-core/internal/application/handlers"
	"github.com/ersonp/biblio-core/internal/domain/ports"
	"github.com/ersonp/biblio-core/internal/domain/services"
	rediscache "github.com/ersonp/biblio-core/internal/infrastructure/cache/redis"
	"github.com/ersonp/biblio-core/internal/infrastructure/config"
	embedder "github.com/ersonp/biblio-core/internal/infrastructure/embedder/openai"
	"github.com/ersonp/biblio-core/internal/infrastructure/events/kafka"
	"github.com/ersonp/biblio-core/internal/infrastructure/logging"
	"github.com/ersonp/biblio-core/internal/infrastructure/metrics"
	"github.com/ersonp/biblio-core/internal/infrastructure/relationaldb/sqlite"
	"github.com/ersonp/biblio-core/internal/infrastructure/vectordb/qdrant"
)

var errSearchDisabled = errors.New("search requires an embedder API key (set OPENAI_API_KEY)")

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config        *config.Config
	Logger        *slog.Logger
	Entities      *handlers.EntityHandler
	Revisions     *handlers.RevisionHandler
	Relationships *handlers.RelationshipHandler
	Import        *handlers.ImportHandler
	Types         *handlers.TypeHandler
	Featured      *handlers.FeaturedHandler
	Init          *handlers.InitHandler
	Editors       *handlers.EditorHandler

	// Search is nil when no embedder is configured.
	Search *handlers.SearchHandler
}

// RequireSearch returns the search handler or an error when search is off.
func (d *Deps) RequireSearch() (*handlers.SearchHandler, error) {
	if d.Search == nil {
		return nil, errSearchDisabled
	}
	return d.Search, nil
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log, os.Stderr)

	relationalDB, err := sqlite.NewRepository(cfg.SQLite)
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer relationalDB.Close()

	if err := relationalDB.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	var cache ports.StateCache
	if cfg.Redis.Addr != "" {
		redisCache, err := rediscache.NewCache(cfg.Redis)
		if err != nil {
			return fmt.Errorf("creating redis cache: %w", err)
		}
		defer redisCache.Close()

		// An unreachable cache degrades to reading through the database.
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, caching disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			cache = redisCache
		}
	}

	var events ports.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := kafka.NewPublisher(cfg.Kafka)
		if err != nil {
			logger.Warn("kafka unavailable, events disabled", "brokers", cfg.Kafka.Brokers, "error", err)
		} else {
			defer publisher.Close()
			events = publisher
		}
	}

	store := services.NewEntityStore(relationalDB, cache, logger)
	types := services.NewTypeRegistry(relationalDB)
	validator := services.NewValidator(relationalDB, types)

	effects := services.SideEffects{Cache: cache, Events: events}
	var (
		searchHandler *handlers.SearchHandler
		collections   ports.CollectionManager
	)
	if cfg.Embedder.APIKey != "" {
		emb, err := embedder.NewEmbedder(cfg.Embedder)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}

		repo, err := qdrant.NewRepository(cfg.Qdrant)
		if err != nil {
			return fmt.Errorf("creating qdrant repository: %w", err)
		}
		defer repo.Close()

		indexer := services.NewIndexer(repo, emb, store, services.IndexerOptions{
			Concurrency:       cfg.Search.Concurrency,
			RequestsPerSecond: cfg.Search.RequestsPerSecond,
		}, logger)
		effects.Indexer = indexer
		collections = repo
		searchHandler = handlers.NewSearchHandler(services.NewSearchService(repo, emb, store), indexer)
	} else {
		logger.Debug("no embedder API key, search disabled")
	}

	mutations := services.NewMutationService(relationalDB, store, validator, effects, services.MutationOptions{
		MaxAttempts: cfg.Mutation.MaxAttempts,
	}, logger)

	deps := &Deps{
		Config:        cfg,
		Logger:        logger,
		Entities:      handlers.NewEntityHandler(store, mutations),
		Revisions:     handlers.NewRevisionHandler(services.NewRevisionService(relationalDB, services.NewDiffService(relationalDB))),
		Relationships: handlers.NewRelationshipHandler(store, mutations),
		Import:        handlers.NewImportHandler(services.NewImportService(mutations, validator)),
		Types:         handlers.NewTypeHandler(types),
		Featured:      handlers.NewFeaturedHandler(services.NewFeaturedService(store, cache)),
		Init:          handlers.NewInitHandler(relationalDB, types, collections),
		Editors:       handlers.NewEditorHandler(services.NewEditorService(relationalDB, validator)),
		Search:        searchHandler,
	}

	err = fn(deps)
	exportMetrics(ctx, cfg.Metrics, logger)
	return err
}

// exportMetrics pushes the run's metrics to the Pushgateway and, with
// --metrics, prints them to stderr. Export failures never fail the command.
func exportMetrics(ctx context.Context, cfg config.MetricsConfig, logger *slog.Logger) {
	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsPushTimeout)
		defer cancel()
		if err := metrics.Push(pushCtx, cfg, prometheus.DefaultGatherer); err != nil {
			logger.Warn("pushing metrics", "url", cfg.PushgatewayURL, "error", err)
		}
	}
	if globalMetrics {
		if err := metrics.WriteText(os.Stderr, prometheus.DefaultGatherer); err != nil {
			logger.Warn("writing metrics", "error", err)
		}
	}
}

// requireEditor returns the --editor flag value, which every write needs.
func requireEditor() (int64, error) {
	if globalEditor <= 0 {
		return 0, errors.New("editor is required (use --editor)")
	}
	return globalEditor, nil
}
