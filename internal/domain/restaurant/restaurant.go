package restaurant

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// StaleAfter is the single freshness rule for cache entries: older rows are
// eligible for re-enrichment by the external collaborator.
const StaleAfter = 7 * 24 * time.Hour

// Restaurant is the relational record. ExternalID is the venue catalog id.
type Restaurant struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ExternalID string    `gorm:"column:external_id;uniqueIndex" json:"external_id"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	Address    string    `gorm:"column:address" json:"address"`
	Rating     *float64  `gorm:"column:rating" json:"rating,omitempty"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Restaurant) TableName() string { return "restaurant" }

// CacheEntry is the enrichment row keyed by catalog id. It is written by the
// enrichment collaborator and only read here.
type CacheEntry struct {
	ExternalID       string           `gorm:"column:external_id;primaryKey" json:"external_id"`
	Name             string           `gorm:"column:name" json:"name"`
	Summary          string           `gorm:"column:summary;type:text" json:"summary"`
	SummaryEmbedding *pgvector.Vector `gorm:"column:summary_embedding;type:vector" json:"-"`
	ReviewsSummary   string           `gorm:"column:reviews_summary;type:text" json:"reviews_summary"`
	ReviewsEmbedding *pgvector.Vector `gorm:"column:reviews_embedding;type:vector" json:"-"`
	Rating           *float64         `gorm:"column:rating" json:"rating,omitempty"`
	UpdatedAt        time.Time        `gorm:"not null;default:now();index" json:"updated_at"`
}

func (CacheEntry) TableName() string { return "restaurant_cache" }

func (e *CacheEntry) IsStale(now time.Time) bool {
	if e == nil {
		return false
	}
	return now.Sub(e.UpdatedAt) >= StaleAfter
}

func (e *CacheEntry) SummaryVector() []float32 {
	if e == nil || e.SummaryEmbedding == nil {
		return nil
	}
	return e.SummaryEmbedding.Slice()
}

func (e *CacheEntry) ReviewsVector() []float32 {
	if e == nil || e.ReviewsEmbedding == nil {
		return nil
	}
	return e.ReviewsEmbedding.Slice()
}
