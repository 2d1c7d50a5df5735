package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	types "github.com/daniel-davidyan/pachu-app-sub003/internal/domain"
)

func SeedRestaurant(tb testing.TB, ctx context.Context, tx *gorm.DB, externalID, name string, rating *float64) *types.Restaurant {
	tb.Helper()
	r := &types.Restaurant{
		ID:         uuid.New(),
		ExternalID: externalID,
		Name:       name,
		Rating:     rating,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed restaurant: %v", err)
	}
	return r
}

func SeedCacheEntry(tb testing.TB, ctx context.Context, tx *gorm.DB, externalID string, summary []float32, updatedAt time.Time) *types.RestaurantCacheEntry {
	tb.Helper()
	e := &types.RestaurantCacheEntry{
		ExternalID: externalID,
		Name:       "cached " + externalID,
		Summary:    "summary",
		UpdatedAt:  updatedAt.UTC(),
	}
	if len(summary) > 0 {
		v := pgvector.NewVector(summary)
		e.SummaryEmbedding = &v
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed cache entry: %v", err)
	}
	return e
}
