package tastetext

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/domain/taste"
)

const (
	// MinEmbeddableRunes is the shortest text worth sending to the embedding service.
	MinEmbeddableRunes = 10

	maxImportedFavorites = 10
	maxPositiveContents  = 15
	maxNegativeContents  = 10
	maxEnjoyedCuisines   = 5
	avoidBelow           = -2
)

// Embeddable reports whether text clears the minimum length. Callers skip the
// embedding service entirely when it does not.
func Embeddable(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= MinEmbeddableRunes
}

// BuildTasteText renders the full taste summary for a profile and its signals.
// Sections appear in a fixed order and empty ones are omitted, so an empty
// profile with no signals yields "".
func BuildTasteText(p *taste.TasteProfile, signals []*taste.TasteSignal) string {
	var lines []string
	lines = append(lines, profileLines(p)...)
	lines = append(lines, signalLines(signals)...)
	return strings.Join(lines, "\n")
}

// BuildOnboardingText covers the profile fields plus onboarding answers.
func BuildOnboardingText(p *taste.TasteProfile, signals []*taste.TasteSignal) string {
	return BuildTasteText(p, filterKinds(signals, taste.SignalOnboarding))
}

func BuildChatText(signals []*taste.TasteSignal) string {
	return BuildTasteText(nil, filterKinds(signals, taste.SignalChat))
}

func BuildReviewsText(signals []*taste.TasteSignal) string {
	return BuildTasteText(nil, filterKinds(signals, taste.SignalReview, taste.SignalWishlist))
}

// ForSource renders the text behind one embedding slot. The combined slot is
// derived from the others and has no text builder of its own.
func ForSource(src taste.EmbeddingSource, p *taste.TasteProfile, signals []*taste.TasteSignal) (string, bool) {
	switch src {
	case taste.SourceOnboarding:
		return BuildOnboardingText(p, signals), true
	case taste.SourceChat:
		return BuildChatText(signals), true
	case taste.SourceReviews:
		return BuildReviewsText(signals), true
	case taste.SourceCombined:
		return "", false
	default:
		return "", false
	}
}

func profileLines(p *taste.TasteProfile) []string {
	if p == nil {
		return nil
	}
	var out []string

	var diet []string
	if p.Kosher {
		diet = append(diet, "kosher")
	}
	if p.Vegetarian {
		diet = append(diet, "vegetarian")
	}
	if p.Vegan {
		diet = append(diet, "vegan")
	}
	if p.GlutenFree {
		diet = append(diet, "gluten-free")
	}
	out = appendList(out, "Dietary restrictions", diet)

	out = appendList(out, "Likes", p.Likes)
	out = appendList(out, "Dislikes", p.Dislikes)
	if notes := strings.TrimSpace(p.FreeText); notes != "" {
		out = append(out, "Notes: "+sentence(notes))
	}

	out = appendList(out, "Favorite places for a date", p.DatePlaces)
	out = appendList(out, "Favorite places with friends", p.FriendsPlaces)
	out = appendList(out, "Favorite places with family", p.FamilyPlaces)
	out = appendList(out, "Favorite places when alone", p.SoloPlaces)
	out = appendList(out, "Favorite places for work", p.WorkPlaces)

	out = appendList(out, "Disliked restaurants", p.DislikedPlaces)
	out = appendList(out, "Favorite restaurants", capList(clean(p.ImportedFavorites), maxImportedFavorites))
	return out
}

func signalLines(signals []*taste.TasteSignal) []string {
	ordered := newestFirst(signals)
	if len(ordered) == 0 {
		return nil
	}

	var positive, negative []string
	cuisine := map[string]int{}
	visits := map[string]int{}

	for _, s := range ordered {
		isReview, ok := kindTraits(s.Kind)
		if !ok {
			continue
		}
		weight := clampStrength(s.Strength)
		if !s.IsPositive {
			weight = -weight
		}
		for _, c := range s.CuisineTypes {
			c = strings.ToLower(strings.TrimSpace(c))
			if c == "" {
				continue
			}
			cuisine[c] += weight
		}
		if content := strings.TrimSpace(s.Content); content != "" {
			if s.IsPositive {
				positive = append(positive, strings.TrimRight(content, ". "))
			} else {
				negative = append(negative, strings.TrimRight(content, ". "))
			}
		}
		if isReview {
			if key := s.RestaurantKey(); key != "" {
				visits[key]++
			}
		}
	}

	var out []string
	if len(positive) > 0 {
		out = append(out, "Enjoyed: "+strings.Join(capList(positive, maxPositiveContents), "; ")+".")
	}
	if len(negative) > 0 {
		out = append(out, "Did not enjoy: "+strings.Join(capList(negative, maxNegativeContents), "; ")+".")
	}

	enjoyed, avoided := rankCuisines(cuisine)
	out = appendList(out, "Frequently enjoys", enjoyed)
	out = appendList(out, "Tends to avoid", avoided)

	var frequent []string
	for _, kv := range sortedCounts(visits) {
		if kv.n > 1 {
			frequent = append(frequent, kv.key)
		}
	}
	out = appendList(out, "Frequently visits", frequent)
	return out
}

// kindTraits is the single switch every signal passes through. ok is false for
// kinds this builder does not know, which are skipped rather than guessed at.
func kindTraits(k taste.SignalKind) (isReview bool, ok bool) {
	switch k {
	case taste.SignalReview:
		return true, true
	case taste.SignalWishlist, taste.SignalChat, taste.SignalOnboarding:
		return false, true
	default:
		return false, false
	}
}

// rankCuisines returns up to five cuisines with positive net score (highest
// first, ties by name) and every cuisine whose net score is below -2.
func rankCuisines(scores map[string]int) (enjoyed, avoided []string) {
	ranked := sortedCounts(scores)
	for _, kv := range ranked {
		if kv.n > 0 && len(enjoyed) < maxEnjoyedCuisines {
			enjoyed = append(enjoyed, kv.key)
		}
	}
	for i := len(ranked) - 1; i >= 0; i-- {
		if ranked[i].n < avoidBelow {
			avoided = append(avoided, ranked[i].key)
		}
	}
	return enjoyed, avoided
}

type keyCount struct {
	key string
	n   int
}

func sortedCounts(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, n := range m {
		out = append(out, keyCount{key: k, n: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].key < out[j].key
	})
	return out
}

func newestFirst(signals []*taste.TasteSignal) []*taste.TasteSignal {
	out := make([]*taste.TasteSignal, 0, len(signals))
	for _, s := range signals {
		if s != nil {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func filterKinds(signals []*taste.TasteSignal, kinds ...taste.SignalKind) []*taste.TasteSignal {
	out := make([]*taste.TasteSignal, 0, len(signals))
	for _, s := range signals {
		if s == nil {
			continue
		}
		for _, k := range kinds {
			if s.Kind == k {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func clampStrength(n int) int {
	if n < taste.MinStrength {
		return taste.MinStrength
	}
	if n > taste.MaxStrength {
		return taste.MaxStrength
	}
	return n
}

func appendList(out []string, label string, items []string) []string {
	items = clean(items)
	if len(items) == 0 {
		return out
	}
	return append(out, label+": "+strings.Join(items, ", ")+".")
}

// clean trims entries and drops blanks and case-insensitive duplicates, keeping order.
func clean(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		k := strings.ToLower(it)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}

func capList(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}
