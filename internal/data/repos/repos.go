package repos

import (
	"gorm.io/gorm"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/data/repos/restaurant"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/data/repos/taste"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
)

type TasteSignalRepo = taste.TasteSignalRepo
type TasteProfileRepo = taste.TasteProfileRepo

type RestaurantRepo = restaurant.RestaurantRepo
type RestaurantCacheRepo = restaurant.RestaurantCacheRepo

func NewTasteSignalRepo(db *gorm.DB, baseLog *logger.Logger) TasteSignalRepo {
	return taste.NewTasteSignalRepo(db, baseLog)
}

func NewTasteProfileRepo(db *gorm.DB, baseLog *logger.Logger) TasteProfileRepo {
	return taste.NewTasteProfileRepo(db, baseLog)
}

func NewRestaurantRepo(db *gorm.DB, baseLog *logger.Logger) RestaurantRepo {
	return restaurant.NewRestaurantRepo(db, baseLog)
}

func NewRestaurantCacheRepo(db *gorm.DB, baseLog *logger.Logger) RestaurantCacheRepo {
	return restaurant.NewRestaurantCacheRepo(db, baseLog)
}
