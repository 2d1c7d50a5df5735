package app

import (
	"github.com/gin-gonic/gin"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/http"
	httpH "github.com/daniel-davidyan/pachu-app-sub003/internal/http/handlers"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/observability"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Score      *httpH.ScoreHandler
	Venue      *httpH.VenueHandler
	Signal     *httpH.SignalHandler
	Profile    *httpH.ProfileHandler
	Restaurant *httpH.RestaurantHandler
}

func wireHandlers(log *logger.Logger, clients Clients, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(clients.HealthChecks()...),
		Score:      httpH.NewScoreHandler(services.Scores),
		Venue:      httpH.NewVenueHandler(services.Venues),
		Signal:     httpH.NewSignalHandler(services.Signals),
		Profile:    httpH.NewProfileHandler(services.Profiles, services.Embeddings),
		Restaurant: httpH.NewRestaurantHandler(services.Restaurants),
	}
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers) *gin.Engine {
	serviceName := ""
	if observability.OtelEnabled() {
		serviceName = cfg.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		ServiceName:       serviceName,
		HealthHandler:     handlers.Health,
		ScoreHandler:      handlers.Score,
		VenueHandler:      handlers.Venue,
		SignalHandler:     handlers.Signal,
		ProfileHandler:    handlers.Profile,
		RestaurantHandler: handlers.Restaurant,
	})
}
