package app

import (
	"time"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/data/cache"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/modules/scoring"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/envutil"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
)

type Config struct {
	Port        string
	ServiceName string

	UpstreamTimeout      time.Duration
	RebuildTimeout       time.Duration
	VenueCacheTTL        time.Duration
	SignalLimit          int
	AutoMigrate          bool
	ScoringConfigPath    string
	Weights              scoring.Weights
	GraphSchemaOnStartup bool
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:                 envutil.String("PORT", "8080"),
		ServiceName:          envutil.String("OTEL_SERVICE_NAME", "pachu-taste"),
		UpstreamTimeout:      envutil.Seconds("UPSTREAM_TIMEOUT_SECONDS", 5*time.Second),
		RebuildTimeout:       envutil.Seconds("EMBEDDING_REBUILD_TIMEOUT_SECONDS", 30*time.Second),
		VenueCacheTTL:        envutil.Seconds("VENUE_CACHE_TTL_SECONDS", cache.DefaultResolutionTTL),
		SignalLimit:          envutil.Int("EMBEDDING_SIGNAL_LIMIT", 500),
		AutoMigrate:          envutil.Bool("POSTGRES_AUTO_MIGRATE", true),
		ScoringConfigPath:    envutil.String("SCORING_CONFIG_PATH", ""),
		GraphSchemaOnStartup: envutil.Bool("NEO4J_ENSURE_SCHEMA", true),
	}
	weights, err := scoring.LoadWeights(cfg.ScoringConfigPath)
	if err != nil {
		return cfg, err
	}
	cfg.Weights = weights
	log.Info("Config loaded",
		"port", cfg.Port,
		"upstream_timeout", cfg.UpstreamTimeout.String(),
		"rebuild_timeout", cfg.RebuildTimeout.String(),
		"venue_cache_ttl", cfg.VenueCacheTTL.String(),
		"scoring_config", cfg.ScoringConfigPath,
	)
	return cfg, nil
}
