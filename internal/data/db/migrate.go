package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/domain/restaurant"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/domain/taste"
)

func EnsureExtensions(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		return fmt.Errorf("failed to enable vector extension: %w", err)
	}
	return nil
}

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// Taste
		&taste.TasteSignal{},
		&taste.TasteProfile{},

		// Restaurants (cache rows are written by the enrichment job)
		&restaurant.Restaurant{},
		&restaurant.CacheEntry{},
	); err != nil {
		return err
	}
	return EnsureIndexes(db)
}

func EnsureIndexes(db *gorm.DB) error {
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_taste_signal_user_kind ON taste_signal(user_id, kind);`).Error; err != nil {
		return fmt.Errorf("create idx_taste_signal_user_kind: %w", err)
	}
	return nil
}
