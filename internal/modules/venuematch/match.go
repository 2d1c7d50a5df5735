package venuematch

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/domain/venue"
)

const (
	// MinConfidence is the lowest similarity (or blended total) accepted as a match.
	MinConfidence = 40.0

	nameWeight    = 0.7
	addressWeight = 0.3
)

// Normalize lowercases s and keeps only ASCII word characters, whitespace and
// Hebrew letters, collapsing whitespace runs to one space.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case isWordRune(r), isHebrew(r):
		default:
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isHebrew(r rune) bool {
	return r >= 0x0590 && r <= 0x05FF
}

// Similarity compares two raw strings after normalization, 0..100.
func Similarity(a, b string) float64 {
	return similarityNormalized(Normalize(a), Normalize(b))
}

func similarityNormalized(a, b string) float64 {
	if a == b {
		return 100
	}
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	s := float64(maxLen-d) * 100 / float64(maxLen)
	if s < 0 {
		return 0
	}
	return s
}

// CityToken returns the normalized last comma-separated segment of an address.
func CityToken(address string) string {
	if i := strings.LastIndex(address, ","); i >= 0 {
		address = address[i+1:]
	}
	return Normalize(address)
}

// AddressScore is 0 unless both addresses are present.
func AddressScore(query, candidate string) float64 {
	qn, cn := Normalize(query), Normalize(candidate)
	if qn == "" || cn == "" {
		return 0
	}
	full := similarityNormalized(qn, cn)
	city := similarityNormalized(CityToken(query), CityToken(candidate))
	if city > full {
		return city
	}
	return full
}

// Match is the accepted candidate and its confidence.
type Match struct {
	Index      int
	Candidate  venue.Candidate
	Confidence float64
}

// SelectCandidate picks at most one candidate for q. A lone candidate is
// judged on name alone; several are ranked by blended name and address score
// and the first maximum wins.
func SelectCandidate(q venue.Query, candidates []venue.Candidate) (Match, bool) {
	switch len(candidates) {
	case 0:
		return Match{}, false
	case 1:
		s := Similarity(q.Name, candidates[0].Name)
		if s < MinConfidence {
			return Match{}, false
		}
		return Match{Index: 0, Candidate: candidates[0], Confidence: s}, true
	}

	address := queryAddress(q)
	qName := Normalize(q.Name)

	best := -1
	bestTotal := -1.0
	for i, c := range candidates {
		total := nameWeight*similarityNormalized(qName, Normalize(c.Name)) + addressWeight*AddressScore(address, c.Address)
		if total > bestTotal {
			best, bestTotal = i, total
		}
	}
	if best < 0 || bestTotal < MinConfidence {
		return Match{}, false
	}
	return Match{Index: best, Candidate: candidates[best], Confidence: bestTotal}, true
}

// queryAddress joins address and locality so the locality becomes the city token.
func queryAddress(q venue.Query) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{q.Address, q.Locality} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// SelectPage prefers the reservation page and otherwise takes the first one.
func SelectPage(pages []venue.Page) (venue.Page, bool) {
	if len(pages) == 0 {
		return venue.Page{}, false
	}
	for _, p := range pages {
		if strings.EqualFold(strings.TrimSpace(p.Type), venue.PageTypeReservation) {
			return p, true
		}
	}
	return pages[0], true
}
