package taste

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// TasteProfile is the per-user preference record plus derived embeddings.
// Embedding columns are written only by the embedding manager; preference
// fields are written by profile edits. Both go through column-scoped updates.
type TasteProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	Kosher     bool `gorm:"column:kosher;not null;default:false" json:"kosher"`
	Vegetarian bool `gorm:"column:vegetarian;not null;default:false" json:"vegetarian"`
	Vegan      bool `gorm:"column:vegan;not null;default:false" json:"vegan"`
	GlutenFree bool `gorm:"column:gluten_free;not null;default:false" json:"gluten_free"`

	Likes    datatypes.JSONSlice[string] `gorm:"column:likes" json:"likes"`
	Dislikes datatypes.JSONSlice[string] `gorm:"column:dislikes" json:"dislikes"`
	FreeText string                      `gorm:"column:free_text;type:text" json:"free_text"`

	DatePlaces     datatypes.JSONSlice[string] `gorm:"column:date_places" json:"date_places"`
	FriendsPlaces  datatypes.JSONSlice[string] `gorm:"column:friends_places" json:"friends_places"`
	FamilyPlaces   datatypes.JSONSlice[string] `gorm:"column:family_places" json:"family_places"`
	SoloPlaces     datatypes.JSONSlice[string] `gorm:"column:solo_places" json:"solo_places"`
	WorkPlaces     datatypes.JSONSlice[string] `gorm:"column:work_places" json:"work_places"`
	DislikedPlaces datatypes.JSONSlice[string] `gorm:"column:disliked_places" json:"disliked_places"`
	// Favorites pulled in from an external account (e.g. a maps export).
	ImportedFavorites datatypes.JSONSlice[string] `gorm:"column:imported_favorites" json:"imported_favorites"`

	OnboardingCompleted bool `gorm:"column:onboarding_completed;not null;default:false" json:"onboarding_completed"`

	OnboardingEmbedding     *pgvector.Vector `gorm:"column:onboarding_embedding;type:vector" json:"-"`
	OnboardingEmbeddingText string           `gorm:"column:onboarding_embedding_text;type:text" json:"-"`
	ChatEmbedding           *pgvector.Vector `gorm:"column:chat_embedding;type:vector" json:"-"`
	ChatEmbeddingText       string           `gorm:"column:chat_embedding_text;type:text" json:"-"`
	// Legacy single embedding built from reviews; last in lookup priority.
	ReviewsEmbedding      *pgvector.Vector `gorm:"column:reviews_embedding;type:vector" json:"-"`
	ReviewsEmbeddingText  string           `gorm:"column:reviews_embedding_text;type:text" json:"-"`
	CombinedEmbedding     *pgvector.Vector `gorm:"column:combined_embedding;type:vector" json:"-"`
	CombinedEmbeddingText string           `gorm:"column:combined_embedding_text;type:text" json:"-"`
	EmbeddingsUpdatedAt   *time.Time       `gorm:"column:embeddings_updated_at" json:"embeddings_updated_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (TasteProfile) TableName() string { return "taste_profile" }

// ProfileFields is the editable preference subset of a TasteProfile.
// Nil fields are left unchanged by an update.
type ProfileFields struct {
	Kosher            *bool    `json:"kosher,omitempty"`
	Vegetarian        *bool    `json:"vegetarian,omitempty"`
	Vegan             *bool    `json:"vegan,omitempty"`
	GlutenFree        *bool    `json:"gluten_free,omitempty"`
	Likes             []string `json:"likes,omitempty" validate:"max=50,dive,max=128"`
	Dislikes          []string `json:"dislikes,omitempty" validate:"max=50,dive,max=128"`
	FreeText          *string  `json:"free_text,omitempty" validate:"omitempty,max=4000"`
	DatePlaces        []string `json:"date_places,omitempty" validate:"max=50,dive,max=256"`
	FriendsPlaces     []string `json:"friends_places,omitempty" validate:"max=50,dive,max=256"`
	FamilyPlaces      []string `json:"family_places,omitempty" validate:"max=50,dive,max=256"`
	SoloPlaces        []string `json:"solo_places,omitempty" validate:"max=50,dive,max=256"`
	WorkPlaces        []string `json:"work_places,omitempty" validate:"max=50,dive,max=256"`
	DislikedPlaces    []string `json:"disliked_places,omitempty" validate:"max=50,dive,max=256"`
	ImportedFavorites []string `json:"imported_favorites,omitempty" validate:"max=200,dive,max=256"`
}

// Columns renders the non-nil fields as a column map for a scoped update.
func (f ProfileFields) Columns() map[string]any {
	out := map[string]any{}
	setBool := func(col string, v *bool) {
		if v != nil {
			out[col] = *v
		}
	}
	setList := func(col string, v []string) {
		if v != nil {
			out[col] = datatypes.NewJSONSlice(v)
		}
	}
	setBool("kosher", f.Kosher)
	setBool("vegetarian", f.Vegetarian)
	setBool("vegan", f.Vegan)
	setBool("gluten_free", f.GlutenFree)
	setList("likes", f.Likes)
	setList("dislikes", f.Dislikes)
	if f.FreeText != nil {
		out["free_text"] = *f.FreeText
	}
	setList("date_places", f.DatePlaces)
	setList("friends_places", f.FriendsPlaces)
	setList("family_places", f.FamilyPlaces)
	setList("solo_places", f.SoloPlaces)
	setList("work_places", f.WorkPlaces)
	setList("disliked_places", f.DislikedPlaces)
	setList("imported_favorites", f.ImportedFavorites)
	return out
}

// Apply copies the non-nil fields onto p.
func (f ProfileFields) Apply(p *TasteProfile) {
	if p == nil {
		return
	}
	if f.Kosher != nil {
		p.Kosher = *f.Kosher
	}
	if f.Vegetarian != nil {
		p.Vegetarian = *f.Vegetarian
	}
	if f.Vegan != nil {
		p.Vegan = *f.Vegan
	}
	if f.GlutenFree != nil {
		p.GlutenFree = *f.GlutenFree
	}
	if f.Likes != nil {
		p.Likes = f.Likes
	}
	if f.Dislikes != nil {
		p.Dislikes = f.Dislikes
	}
	if f.FreeText != nil {
		p.FreeText = *f.FreeText
	}
	if f.DatePlaces != nil {
		p.DatePlaces = f.DatePlaces
	}
	if f.FriendsPlaces != nil {
		p.FriendsPlaces = f.FriendsPlaces
	}
	if f.FamilyPlaces != nil {
		p.FamilyPlaces = f.FamilyPlaces
	}
	if f.SoloPlaces != nil {
		p.SoloPlaces = f.SoloPlaces
	}
	if f.WorkPlaces != nil {
		p.WorkPlaces = f.WorkPlaces
	}
	if f.DislikedPlaces != nil {
		p.DislikedPlaces = f.DislikedPlaces
	}
	if f.ImportedFavorites != nil {
		p.ImportedFavorites = f.ImportedFavorites
	}
}
