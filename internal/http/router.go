package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/daniel-davidyan/pachu-app-sub003/internal/http/handlers"
	httpMW "github.com/daniel-davidyan/pachu-app-sub003/internal/http/middleware"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/observability"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string

	ScoreHandler      *httpH.ScoreHandler
	VenueHandler      *httpH.VenueHandler
	SignalHandler     *httpH.SignalHandler
	ProfileHandler    *httpH.ProfileHandler
	RestaurantHandler *httpH.RestaurantHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.TraceIDs())
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		h := cfg.Metrics.Handler()
		r.GET("/metrics", func(c *gin.Context) { h.ServeHTTP(c.Writer, c.Request) })
	}

	api := r.Group("/api")
	{
		// Scores and resolution accept anonymous callers.
		if cfg.ScoreHandler != nil {
			api.POST("/scores", cfg.ScoreHandler.Score)
		}
		if cfg.VenueHandler != nil {
			api.POST("/venues/resolve", cfg.VenueHandler.Resolve)
		}
		if cfg.RestaurantHandler != nil {
			api.GET("/restaurants/stale", cfg.RestaurantHandler.ListStale)
		}
	}

	protected := api.Group("/")
	{
		protected.Use(httpMW.RequireCaller())

		if cfg.SignalHandler != nil {
			protected.POST("/signals", cfg.SignalHandler.Record)
		}

		if cfg.ProfileHandler != nil {
			protected.GET("/profile", cfg.ProfileHandler.Get)
			protected.PUT("/profile", cfg.ProfileHandler.Update)
			protected.POST("/profile/onboarding/complete", cfg.ProfileHandler.CompleteOnboarding)
			protected.POST("/profile/embeddings/rebuild", cfg.ProfileHandler.RebuildEmbeddings)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "route not found", "code": "not_found"}})
	})
	return r
}
