package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/data/db"
	httpH "github.com/daniel-davidyan/pachu-app-sub003/internal/http/handlers"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/catalog"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/neo4jdb"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/openai"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/redisx"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/websearch"
)

// Clients holds every process-wide connection. Optional upstreams are nil
// when unconfigured and the services fall back accordingly.
type Clients struct {
	Postgres  *db.PostgresService
	Redis     *goredis.Client
	Neo4j     *neo4jdb.Client
	Embedder  openai.Client
	Catalog   catalog.Client
	WebSearch websearch.Client
}

// HealthChecks lists the configured stores. Postgres is required; Redis and
// Neo4j only degrade caching and the friends signal.
func (c Clients) HealthChecks() []httpH.DependencyCheck {
	var out []httpH.DependencyCheck
	if c.Postgres != nil {
		out = append(out, httpH.DependencyCheck{Name: "postgres", Required: true, Ping: c.Postgres.Ping})
	}
	if c.Redis != nil {
		rdb := c.Redis
		out = append(out, httpH.DependencyCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	if c.Neo4j != nil {
		out = append(out, httpH.DependencyCheck{Name: "neo4j", Ping: c.Neo4j.Ping})
	}
	return out
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	pg, err := db.NewPostgresService(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init postgres: %w", err)
	}
	out.Postgres = pg

	// Redis
	rdb, err := redisx.NewFromEnv(log)
	if err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	if rdb == nil {
		log.Warn("REDIS_ADDR not set; venue resolutions will not be cached")
	}
	out.Redis = rdb

	// Neo4j
	graph, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("init neo4j: %w", err)
	}
	if graph == nil {
		log.Warn("NEO4J_URI not set; social proof uses the neutral default")
	}
	out.Neo4j = graph

	// Openai
	embedder, err := openai.NewClient(log)
	if err != nil {
		log.Warn("Embedding client disabled; taste embeddings will not be rebuilt", "error", err)
	} else {
		out.Embedder = embedder
	}

	// Catalog
	if cfg, ok := catalog.ConfigFromEnv(); ok {
		cat, err := catalog.New(cfg, log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init catalog client: %w", err)
		}
		out.Catalog = cat
	} else {
		log.Warn("CATALOG_BASE_URL not set; venue resolution reports unavailable")
	}

	// Web search
	search, err := websearch.NewFromEnv(log)
	if err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("init web search client: %w", err)
	}
	out.WebSearch = search

	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Neo4j != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = c.Neo4j.Close(ctx)
		cancel()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Postgres != nil {
		_ = c.Postgres.Close()
	}
}
