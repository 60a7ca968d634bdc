// Package container wires the application's dependency graph the way the
// teacher's own container does: read config, open infrastructure
// connections, construct repositories, construct the domain-facing
// collaborators, then the delivery layer, in that order.
package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/coffeeisafruit/jv-matcher/internal/config"
	"github.com/coffeeisafruit/jv-matcher/internal/cycle"
	deliveryhttp "github.com/coffeeisafruit/jv-matcher/internal/delivery/http"
	"github.com/coffeeisafruit/jv-matcher/internal/delivery/http/handler"
	"github.com/coffeeisafruit/jv-matcher/internal/delivery/http/middleware"
	"github.com/coffeeisafruit/jv-matcher/internal/infrastructure/database"
	"github.com/coffeeisafruit/jv-matcher/internal/infrastructure/server"
	"github.com/coffeeisafruit/jv-matcher/internal/ingest"
	"github.com/coffeeisafruit/jv-matcher/internal/logger"
	"github.com/coffeeisafruit/jv-matcher/internal/metrics"
	"github.com/coffeeisafruit/jv-matcher/internal/oracle"
	"github.com/coffeeisafruit/jv-matcher/internal/repository/postgres"
	"github.com/coffeeisafruit/jv-matcher/internal/resolver"
)

// Container holds every wired dependency the process needs.
type Container struct {
	Config       *config.Config
	DB           *sqlx.DB
	Redis        *redis.Client
	Log          logger.Logger
	Runner       *cycle.Runner
	IngestRunner *ingest.Runner
	Server       *server.Server
}

// NewContainer builds the dependency graph. Oracle and Redis initialization
// failures are non-fatal (§6: "on any error the oracle falls back"; without
// Redis the oracle runs uncached); everything else is.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, oracle memoization disabled", nil)
	}

	metricsReg := metrics.New(prometheus.DefaultRegisterer)

	// sim stays nil when no semantic backend is configured: cycle.Runner
	// falls back to its own Jaccard oracle and the intent_fallback_threshold
	// in that case (§6, §9(c)) rather than pretending Jaccard is semantic.
	var sim oracle.Similarity
	if cfg.Oracle.Enabled && cfg.Oracle.APIKey != "" {
		gemini, err := oracle.NewGeminiOracle(ctx, cfg.Oracle.APIKey, cfg.Oracle.Model, oracle.NewJaccard(nil), log)
		if err != nil {
			log.WithError(err).Warn("gemini oracle unavailable, falling back at scoring time", nil)
		} else {
			gemini.OnFallback(func() { metricsReg.OracleFallbacks.Inc() })
			sim = gemini
			if redisClient != nil {
				caching := oracle.NewCaching(redisClient, sim, cfg.Oracle.CacheTTL, log)
				caching.OnHit(func() { metricsReg.OracleCacheHits.Inc() })
				sim = caching
			}
		}
	}

	profileRepo := postgres.NewProfileRepository(db)
	intakeRepo := postgres.NewIntakeRepository(db)
	suggestionRepo := postgres.NewMatchSuggestionRepository(db)
	popularityRepo := postgres.NewPopularityRepository(db)
	reviewQueueRepo := postgres.NewReviewQueueRepository(db)
	candidateRecords := postgres.NewCandidateRecordSource(db)

	runner := cycle.NewRunner(profileRepo, intakeRepo, suggestionRepo, popularityRepo, sim, nil, log, metricsReg)
	ingestRunner := ingest.NewRunner(candidateRecords, profileRepo, reviewQueueRepo, resolver.New(nil, log), nil, log, metricsReg)

	cycleHandler := handler.NewCycleHandler(runner, log).WithMatchingConfig(cfg.Matching)
	ingestHandler := handler.NewIngestHandler(ingestRunner, log)
	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.BearerSecret)
	router := deliveryhttp.NewRouter(cycleHandler, ingestHandler, authMiddleware)
	srv := server.NewServer(&cfg.Server, router.Setup(), log)

	return &Container{
		Config:       cfg,
		DB:           db,
		Redis:        redisClient,
		Log:          log,
		Runner:       runner,
		IngestRunner: ingestRunner,
		Server:       srv,
	}, nil
}

// Close releases infrastructure connections in reverse acquisition order.
func (c *Container) Close() error {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.WithError(err).Warn("error closing redis", nil)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}
