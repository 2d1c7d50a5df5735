package app

import (
	"github.com/daniel-davidyan/pachu-app-sub003/internal/data/cache"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/data/graph"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/services"
)

type Services struct {
	Embeddings  services.EmbeddingService
	Scores      services.MatchScoreService
	Venues      services.VenueIdentityService
	Signals     services.SignalService
	Profiles    services.ProfileService
	Restaurants services.RestaurantService

	SocialGraph *graph.SocialGraph
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, reposet Repos) Services {
	log.Info("Wiring services...")

	var embedder services.Embedder
	if clients.Embedder != nil {
		embedder = clients.Embedder
	}
	embeddings := services.NewEmbeddingService(log, reposet.TasteProfile, reposet.TasteSignal, embedder, services.EmbeddingConfig{
		CallTimeout:  cfg.UpstreamTimeout,
		AsyncTimeout: cfg.RebuildTimeout,
		SignalLimit:  cfg.SignalLimit,
	})

	social := graph.NewSocialGraph(clients.Neo4j, log)
	resolutions := cache.NewVenueResolutionCache(clients.Redis, cfg.VenueCacheTTL, log)

	return Services{
		Embeddings:  embeddings,
		Scores:      services.NewMatchScoreService(log, embeddings, reposet.Restaurant, reposet.RestaurantCache, social, cfg.Weights, cfg.UpstreamTimeout),
		Venues:      services.NewVenueIdentityService(log, resolutions, clients.Catalog, clients.WebSearch, cfg.UpstreamTimeout),
		Signals:     services.NewSignalService(log, reposet.TasteSignal, embeddings, social, cfg.UpstreamTimeout),
		Profiles:    services.NewProfileService(log, reposet.TasteProfile, embeddings),
		Restaurants: services.NewRestaurantService(log, reposet.RestaurantCache),
		SocialGraph: social,
	}
}
