package scoring

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultScore is returned whenever a score cannot be computed from data.
const DefaultScore = 75

// Basis records which formula produced a score.
type Basis string

const (
	BasisEmbedding Basis = "embedding"
	BasisRating    Basis = "rating"
	BasisDefault   Basis = "default"
)

// Weights holds the blend coefficients. The zero value is not usable; start
// from DefaultWeights.
type Weights struct {
	SummaryWeight float64 `yaml:"summary_weight"`
	ReviewsWeight float64 `yaml:"reviews_weight"`

	SimilarityWeight float64 `yaml:"similarity_weight"`
	RatingWeight     float64 `yaml:"rating_weight"`
	FriendsWeight    float64 `yaml:"friends_weight"`

	FallbackRatingWeight  float64 `yaml:"fallback_rating_weight"`
	FallbackFriendsWeight float64 `yaml:"fallback_friends_weight"`

	DefaultRating        float64 `yaml:"default_rating"`
	MaxRating            float64 `yaml:"max_rating"`
	FriendsNormalization float64 `yaml:"friends_normalization"`
	DefaultFriendsScore  float64 `yaml:"default_friends_score"`
}

func DefaultWeights() Weights {
	return Weights{
		SummaryWeight:         0.7,
		ReviewsWeight:         0.3,
		SimilarityWeight:      0.50,
		RatingWeight:          0.25,
		FriendsWeight:         0.25,
		FallbackRatingWeight:  0.60,
		FallbackFriendsWeight: 0.40,
		DefaultRating:         3.5,
		MaxRating:             5,
		FriendsNormalization:  25,
		DefaultFriendsScore:   0.5,
	}
}

// LoadWeights reads a yaml override file on top of DefaultWeights. An empty
// path returns the defaults.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	if path == "" {
		return w, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read scoring config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return DefaultWeights(), fmt.Errorf("parse scoring config: %w", err)
	}
	if err := w.Validate(); err != nil {
		return DefaultWeights(), err
	}
	return w, nil
}

func (w Weights) Validate() error {
	if w.MaxRating <= 0 {
		return fmt.Errorf("scoring config: max_rating must be positive")
	}
	if w.FriendsNormalization <= 0 {
		return fmt.Errorf("scoring config: friends_normalization must be positive")
	}
	for name, v := range map[string]float64{
		"summary_weight":          w.SummaryWeight,
		"reviews_weight":          w.ReviewsWeight,
		"similarity_weight":       w.SimilarityWeight,
		"rating_weight":           w.RatingWeight,
		"friends_weight":          w.FriendsWeight,
		"fallback_rating_weight":  w.FallbackRatingWeight,
		"fallback_friends_weight": w.FallbackFriendsWeight,
		"default_friends_score":   w.DefaultFriendsScore,
	} {
		if v < 0 {
			return fmt.Errorf("scoring config: %s must not be negative", name)
		}
	}
	return nil
}

// Input is everything known about one restaurant for one user.
type Input struct {
	UserEmbedding []float32
	Summary       []float32
	Reviews       []float32

	// Rating is nil when neither the cache nor the relational row has one.
	Rating *float64

	FriendsSum float64
	HasFriends bool
}

// Compute scores one restaurant. The result is always an integer in [0,100].
func Compute(w Weights, in Input) (int, Basis) {
	friends := w.friendsScore(in)

	if len(in.Summary) > 0 && len(in.UserEmbedding) > 0 {
		sim := Cosine(in.UserEmbedding, in.Summary)
		if len(in.Reviews) > 0 {
			sim = w.SummaryWeight*sim + w.ReviewsWeight*Cosine(in.UserEmbedding, in.Reviews)
		}
		raw := w.SimilarityWeight*sim + w.RatingWeight*w.ratingScore(in.Rating) + w.FriendsWeight*friends
		return toScore(raw), BasisEmbedding
	}

	if in.Rating != nil {
		raw := w.FallbackRatingWeight*w.ratingScore(in.Rating) + w.FallbackFriendsWeight*friends
		return toScore(raw), BasisRating
	}

	return DefaultScore, BasisDefault
}

func (w Weights) ratingScore(r *float64) float64 {
	rating := w.DefaultRating
	if r != nil {
		rating = *r
	}
	return rating / w.MaxRating
}

func (w Weights) friendsScore(in Input) float64 {
	if !in.HasFriends {
		return w.DefaultFriendsScore
	}
	return math.Min(in.FriendsSum/w.FriendsNormalization, 1)
}

func toScore(raw float64) int {
	if math.IsNaN(raw) {
		return DefaultScore
	}
	v := math.Round(100 * raw)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
