package restaurant

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/daniel-davidyan/pachu-app-sub003/internal/domain"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/dbctx"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
)

type RestaurantRepo interface {
	Create(dbc dbctx.Context, rows []*types.Restaurant) ([]*types.Restaurant, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Restaurant, error)
	GetByExternalIDs(dbc dbctx.Context, externalIDs []string) ([]*types.Restaurant, error)
}

type restaurantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRestaurantRepo(db *gorm.DB, baseLog *logger.Logger) RestaurantRepo {
	return &restaurantRepo{
		db:  db,
		log: baseLog.With("repo", "RestaurantRepo"),
	}
}

func (r *restaurantRepo) Create(dbc dbctx.Context, rows []*types.Restaurant) ([]*types.Restaurant, error) {
	if len(rows) == 0 {
		return []*types.Restaurant{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *restaurantRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Restaurant, error) {
	var out []*types.Restaurant
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *restaurantRepo) GetByExternalIDs(dbc dbctx.Context, externalIDs []string) ([]*types.Restaurant, error) {
	var out []*types.Restaurant
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
