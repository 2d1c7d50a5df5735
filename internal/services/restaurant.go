package services

import (
	"context"
	"time"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/data/repos"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/dbctx"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
)

const (
	DefaultStaleLimit = 100
	MaxStaleLimit     = 1000
)

// StaleRestaurant is a cache row due for re-enrichment.
type StaleRestaurant struct {
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type RestaurantService interface {
	ListStale(ctx context.Context, limit int) ([]StaleRestaurant, error)
}

type restaurantService struct {
	log   *logger.Logger
	cache repos.RestaurantCacheRepo
	now   func() time.Time
}

func NewRestaurantService(log *logger.Logger, cache repos.RestaurantCacheRepo) RestaurantService {
	return &restaurantService{
		log:   log.With("service", "RestaurantService"),
		cache: cache,
		now:   time.Now,
	}
}

// ListStale returns the oldest cache rows first. limit <= 0 uses the default;
// larger values are capped.
func (s *restaurantService) ListStale(ctx context.Context, limit int) ([]StaleRestaurant, error) {
	if limit <= 0 {
		limit = DefaultStaleLimit
	}
	if limit > MaxStaleLimit {
		limit = MaxStaleLimit
	}
	rows, err := s.cache.ListStale(dbctx.Context{Ctx: ctx}, s.now().UTC(), limit)
	if err != nil {
		return nil, err
	}
	out := make([]StaleRestaurant, 0, len(rows))
	for _, r := range rows {
		if r == nil {
			continue
		}
		out = append(out, StaleRestaurant{ExternalID: r.ExternalID, Name: r.Name, UpdatedAt: r.UpdatedAt})
	}
	return out, nil
}
