package app

import (
	"gorm.io/gorm"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/data/repos"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
)

type Repos struct {
	TasteSignal     repos.TasteSignalRepo
	TasteProfile    repos.TasteProfileRepo
	Restaurant      repos.RestaurantRepo
	RestaurantCache repos.RestaurantCacheRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		TasteSignal:     repos.NewTasteSignalRepo(db, log),
		TasteProfile:    repos.NewTasteProfileRepo(db, log),
		Restaurant:      repos.NewRestaurantRepo(db, log),
		RestaurantCache: repos.NewRestaurantCacheRepo(db, log),
	}
}
