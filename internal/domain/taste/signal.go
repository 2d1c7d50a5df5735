package taste

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SignalKind is the closed set of interactions that produce taste signals.
type SignalKind string

const (
	SignalReview     SignalKind = "review"
	SignalWishlist   SignalKind = "wishlist"
	SignalChat       SignalKind = "chat"
	SignalOnboarding SignalKind = "onboarding"
)

const (
	MinStrength = 1
	MaxStrength = 5
)

func (k SignalKind) Valid() bool {
	switch k {
	case SignalReview, SignalWishlist, SignalChat, SignalOnboarding:
		return true
	default:
		return false
	}
}

// EmbeddingSource maps a signal kind to the per-user embedding it feeds.
func (k SignalKind) EmbeddingSource() (EmbeddingSource, bool) {
	switch k {
	case SignalReview, SignalWishlist:
		return SourceReviews, true
	case SignalChat:
		return SourceChat, true
	case SignalOnboarding:
		return SourceOnboarding, true
	default:
		return "", false
	}
}

func ParseSignalKind(raw string) (SignalKind, error) {
	k := SignalKind(strings.ToLower(strings.TrimSpace(raw)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown signal kind %q", raw)
	}
	return k, nil
}

// TasteSignal is an append-only record of one preference-bearing interaction.
// Rows are never updated or deleted.
type TasteSignal struct {
	ID             uuid.UUID                   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID                   `gorm:"type:uuid;not null;index:idx_taste_signal_user_created,priority:1" json:"user_id" validate:"required"`
	Kind           SignalKind                  `gorm:"column:kind;type:text;not null;index" json:"kind" validate:"required,oneof=review wishlist chat onboarding"`
	IsPositive     bool                        `gorm:"column:is_positive;not null" json:"is_positive"`
	Strength       int                         `gorm:"column:strength;not null;check:chk_taste_signal_strength,strength >= 1 AND strength <= 5" json:"strength" validate:"min=1,max=5"`
	RestaurantID   *uuid.UUID                  `gorm:"type:uuid;column:restaurant_id;index" json:"restaurant_id,omitempty"`
	RestaurantName string                      `gorm:"column:restaurant_name" json:"restaurant_name,omitempty" validate:"max=256"`
	CuisineTypes   datatypes.JSONSlice[string] `gorm:"column:cuisine_types" json:"cuisine_types,omitempty" validate:"max=20,dive,max=64"`
	Content        string                      `gorm:"column:content;type:text" json:"content,omitempty" validate:"max=4000"`
	CreatedAt      time.Time                   `gorm:"not null;default:now();index:idx_taste_signal_user_created,priority:2" json:"created_at"`
}

func (TasteSignal) TableName() string { return "taste_signal" }

// RestaurantKey identifies the referenced restaurant for aggregation: the name when
// present, otherwise the id.
func (s *TasteSignal) RestaurantKey() string {
	if s == nil {
		return ""
	}
	if name := strings.TrimSpace(s.RestaurantName); name != "" {
		return name
	}
	if s.RestaurantID != nil && *s.RestaurantID != uuid.Nil {
		return s.RestaurantID.String()
	}
	return ""
}
