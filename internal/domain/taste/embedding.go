package taste

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// EmbeddingSource names one embedding slot on a TasteProfile.
type EmbeddingSource string

const (
	SourceCombined   EmbeddingSource = "combined"
	SourceOnboarding EmbeddingSource = "onboarding"
	SourceChat       EmbeddingSource = "chat"
	SourceReviews    EmbeddingSource = "reviews"
)

// BuildSources are the slots computed by the embedding service, in build order.
// The combined slot is derived from them.
var BuildSources = []EmbeddingSource{SourceOnboarding, SourceChat, SourceReviews}

// LookupPriority is the strict order used to pick a user's embedding for matching.
var LookupPriority = []EmbeddingSource{SourceCombined, SourceOnboarding, SourceReviews}

func (s EmbeddingSource) Valid() bool {
	switch s {
	case SourceCombined, SourceOnboarding, SourceChat, SourceReviews:
		return true
	default:
		return false
	}
}

// Columns returns the vector and provenance-text column names of a slot.
func (s EmbeddingSource) Columns() (vectorCol, textCol string) {
	switch s {
	case SourceCombined:
		return "combined_embedding", "combined_embedding_text"
	case SourceOnboarding:
		return "onboarding_embedding", "onboarding_embedding_text"
	case SourceChat:
		return "chat_embedding", "chat_embedding_text"
	case SourceReviews:
		return "reviews_embedding", "reviews_embedding_text"
	default:
		return "", ""
	}
}

// Slot returns the stored vector and its source text. ok is false when the slot is empty.
func (p *TasteProfile) Slot(s EmbeddingSource) (vec []float32, text string, ok bool) {
	if p == nil {
		return nil, "", false
	}
	var v *pgvector.Vector
	switch s {
	case SourceCombined:
		v, text = p.CombinedEmbedding, p.CombinedEmbeddingText
	case SourceOnboarding:
		v, text = p.OnboardingEmbedding, p.OnboardingEmbeddingText
	case SourceChat:
		v, text = p.ChatEmbedding, p.ChatEmbeddingText
	case SourceReviews:
		v, text = p.ReviewsEmbedding, p.ReviewsEmbeddingText
	default:
		return nil, "", false
	}
	if v == nil || len(v.Slice()) == 0 {
		return nil, text, false
	}
	return v.Slice(), text, true
}

// SetSlot stores vec and its exact source text in slot s.
func (p *TasteProfile) SetSlot(s EmbeddingSource, vec []float32, text string, at time.Time) {
	if p == nil {
		return
	}
	v := pgvector.NewVector(vec)
	switch s {
	case SourceCombined:
		p.CombinedEmbedding, p.CombinedEmbeddingText = &v, text
	case SourceOnboarding:
		p.OnboardingEmbedding, p.OnboardingEmbeddingText = &v, text
	case SourceChat:
		p.ChatEmbedding, p.ChatEmbeddingText = &v, text
	case SourceReviews:
		p.ReviewsEmbedding, p.ReviewsEmbeddingText = &v, text
	default:
		return
	}
	at = at.UTC()
	p.EmbeddingsUpdatedAt = &at
}

// FirstPresent walks order and returns the first non-empty slot.
func FirstPresent(p *TasteProfile, order ...EmbeddingSource) ([]float32, EmbeddingSource, bool) {
	for _, s := range order {
		if vec, _, ok := p.Slot(s); ok {
			return vec, s, true
		}
	}
	return nil, "", false
}

// BestEmbedding resolves the embedding used for matching via LookupPriority.
func BestEmbedding(p *TasteProfile) ([]float32, EmbeddingSource, bool) {
	return FirstPresent(p, LookupPriority...)
}
