package venue

import "strings"

// Query is a free-text venue reference.
type Query struct {
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Locality string `json:"locality,omitempty"`
}

func (q Query) Trimmed() Query {
	return Query{
		Name:     strings.TrimSpace(q.Name),
		Address:  strings.TrimSpace(q.Address),
		Locality: strings.TrimSpace(q.Locality),
	}
}

// Candidate is one catalog search hit.
type Candidate struct {
	ID      string `json:"id"`
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// Page is a bookable or informational sub-page of a venue.
type Page struct {
	Type  string `json:"type"`
	Slug  string `json:"slug"`
	Title string `json:"title,omitempty"`
}

const PageTypeReservation = "reservation"

// Profile is the catalog's detail record for one venue.
type Profile struct {
	ID      string `json:"id"`
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Pages   []Page `json:"pages"`
}

type Status string

const (
	StatusResolved    Status = "resolved"
	StatusNoResults   Status = "no_results"
	StatusNoMatch     Status = "no_match"
	StatusUnavailable Status = "unavailable"
)

const (
	StrategyWebSearch = "web_search"
	StrategyCatalog   = "catalog"
)

// Resolution is the outcome of one identity-resolution query.
type Resolution struct {
	Status     Status  `json:"status"`
	Strategy   string  `json:"strategy,omitempty"`
	VenueID    string  `json:"venue_id,omitempty"`
	VenueSlug  string  `json:"venue_slug,omitempty"`
	PageSlug   string  `json:"page_slug,omitempty"`
	DeepLink   string  `json:"deep_link,omitempty"`
	Name       string  `json:"name,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Terminal reports whether the outcome is stable against unchanged catalog
// state and may be cached.
func (r Resolution) Terminal() bool {
	switch r.Status {
	case StatusResolved, StatusNoResults, StatusNoMatch:
		return true
	default:
		return false
	}
}
