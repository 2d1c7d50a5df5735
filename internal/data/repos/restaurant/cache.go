package restaurant

import (
	"time"

	"gorm.io/gorm"

	types "github.com/daniel-davidyan/pachu-app-sub003/internal/domain"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/dbctx"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
)

// RestaurantCacheRepo only reads; rows are owned by the enrichment collaborator.
type RestaurantCacheRepo interface {
	GetByExternalIDs(dbc dbctx.Context, externalIDs []string) ([]*types.RestaurantCacheEntry, error)
	ListStale(dbc dbctx.Context, now time.Time, limit int) ([]*types.RestaurantCacheEntry, error)
}

type restaurantCacheRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRestaurantCacheRepo(db *gorm.DB, baseLog *logger.Logger) RestaurantCacheRepo {
	return &restaurantCacheRepo{
		db:  db,
		log: baseLog.With("repo", "RestaurantCacheRepo"),
	}
}

func (r *restaurantCacheRepo) GetByExternalIDs(dbc dbctx.Context, externalIDs []string) ([]*types.RestaurantCacheEntry, error) {
	var out []*types.RestaurantCacheEntry
	if len(externalIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("external_id IN ?", externalIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListStale returns entries last updated at least types.RestaurantStaleAfter before
// now, oldest first.
func (r *restaurantCacheRepo) ListStale(dbc dbctx.Context, now time.Time, limit int) ([]*types.RestaurantCacheEntry, error) {
	var out []*types.RestaurantCacheEntry
	q := dbc.DB(r.db).
		Where("updated_at <= ?", now.Add(-types.RestaurantStaleAfter)).
		Order("updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
