package services

import (
	"context"
	"errors"
	"testing"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/domain/venue"
	errs "github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/errors"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/websearch"
)

const testDeepLinkBase = "https://book.example.com"

func cafeNoirCatalog() *fakeCatalog {
	return &fakeCatalog{
		base:       testDeepLinkBase,
		candidates: []venue.Candidate{{ID: "v1", Slug: "cafe-noir", Name: "Cafe Noir", Address: "12 Dizengoff St, Tel Aviv"}},
		profiles: map[string]venue.Profile{
			"v1": {ID: "v1", Slug: "cafe-noir", Name: "Cafe Noir", Pages: []venue.Page{
				{Type: "menu", Slug: "cafe-noir-menu"},
				{Type: "Reservation", Slug: "cafe-noir-tlv"},
			}},
		},
	}
}

func TestResolveCatalogMatchIsCachedAndIdempotent(t *testing.T) {
	cat := cafeNoirCatalog()
	cache := newFakeResolutionCache()
	svc := NewVenueIdentityService(testLogger(t), cache, cat, nil, 0)

	q := venue.Query{Name: "  Café Noir ", Locality: "Tel Aviv"}
	first, err := svc.Resolve(context.Background(), q)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first.Status != venue.StatusResolved || first.VenueID != "v1" {
		t.Fatalf("resolution=%+v", first)
	}
	if first.PageSlug != "cafe-noir-tlv" || first.DeepLink != testDeepLinkBase+"/page/cafe-noir-tlv" {
		t.Fatalf("page=%q link=%q", first.PageSlug, first.DeepLink)
	}

	second, err := svc.Resolve(context.Background(), q)
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if second != first {
		t.Fatalf("second=%+v, want %+v", second, first)
	}
	if cat.searchCalls != 1 {
		t.Fatalf("catalog searched %d times, want 1", cat.searchCalls)
	}
}

func TestResolveOutcomes(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(c *fakeCatalog)
		want      venue.Status
		cacheSets int
	}{
		{name: "no_results", mutate: func(c *fakeCatalog) { c.candidates = nil }, want: venue.StatusNoResults, cacheSets: 1},
		{name: "no_match", mutate: func(c *fakeCatalog) {
			c.candidates = []venue.Candidate{{ID: "v9", Name: "Burger Station"}}
		}, want: venue.StatusNoMatch, cacheSets: 1},
		{name: "search_error", mutate: func(c *fakeCatalog) { c.searchErr = errors.New("502") }, want: venue.StatusUnavailable},
		{name: "profile_error", mutate: func(c *fakeCatalog) { c.profileErr = errors.New("timeout") }, want: venue.StatusUnavailable},
	}
	for _, tc := range cases {
		cat := cafeNoirCatalog()
		tc.mutate(cat)
		cache := newFakeResolutionCache()
		svc := NewVenueIdentityService(testLogger(t), cache, cat, nil, 0)

		got, err := svc.Resolve(context.Background(), venue.Query{Name: "Cafe Noir"})
		if err != nil {
			t.Fatalf("%s: Resolve: %v", tc.name, err)
		}
		if got.Status != tc.want {
			t.Fatalf("%s: status=%s, want %s", tc.name, got.Status, tc.want)
		}
		if cache.sets != tc.cacheSets {
			t.Fatalf("%s: cache sets=%d, want %d", tc.name, cache.sets, tc.cacheSets)
		}
	}
}

func TestResolveWithoutPagesLinksVenue(t *testing.T) {
	cat := cafeNoirCatalog()
	p := cat.profiles["v1"]
	p.Pages = nil
	cat.profiles["v1"] = p
	svc := NewVenueIdentityService(testLogger(t), nil, cat, nil, 0)

	got, err := svc.Resolve(context.Background(), venue.Query{Name: "Cafe Noir"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.DeepLink != testDeepLinkBase+"/venue/cafe-noir" {
		t.Fatalf("deep link=%q", got.DeepLink)
	}
}

func TestResolveRequiresName(t *testing.T) {
	svc := NewVenueIdentityService(testLogger(t), nil, cafeNoirCatalog(), nil, 0)
	if _, err := svc.Resolve(context.Background(), venue.Query{Name: "   ", Address: "x"}); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("err=%v, want invalid argument", err)
	}
}

func TestResolveWithoutCatalogIsUnavailable(t *testing.T) {
	svc := NewVenueIdentityService(testLogger(t), nil, nil, nil, 0)
	got, err := svc.Resolve(context.Background(), venue.Query{Name: "Cafe Noir"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Status != venue.StatusUnavailable {
		t.Fatalf("status=%s, want unavailable", got.Status)
	}
}

func TestResolveWebSearchDiscovery(t *testing.T) {
	cat := cafeNoirCatalog()
	search := &fakeSearch{results: []websearch.Result{
		{Title: "Some blog", Link: "https://blog.example.org/cafe-noir"},
		{Title: "Cafe Noir | Book a table", Link: "https://www.book.example.com/page/cafe-noir-tlv"},
	}}
	svc := NewVenueIdentityService(testLogger(t), nil, cat, search, 0)

	got, err := svc.Resolve(context.Background(), venue.Query{Name: "Cafe Noir", Locality: "Tel Aviv"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Strategy != venue.StrategyWebSearch || got.PageSlug != "cafe-noir-tlv" {
		t.Fatalf("resolution=%+v", got)
	}
	if cat.searchCalls != 0 {
		t.Fatalf("catalog searched %d times, want 0", cat.searchCalls)
	}
}

func TestResolveQuotaFallsBackToCatalog(t *testing.T) {
	cat := cafeNoirCatalog()
	search := &fakeSearch{err: websearch.ErrQuotaExceeded}
	svc := NewVenueIdentityService(testLogger(t), nil, cat, search, 0)

	got, err := svc.Resolve(context.Background(), venue.Query{Name: "Cafe Noir"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Strategy != venue.StrategyCatalog || got.Status != venue.StatusResolved {
		t.Fatalf("resolution=%+v", got)
	}
	if search.calls != 1 || cat.searchCalls != 1 {
		t.Fatalf("search calls=%d catalog calls=%d, want 1 and 1", search.calls, cat.searchCalls)
	}
}

func TestResolveWebSearchRejectsLooseTitleMatch(t *testing.T) {
	cat := cafeNoirCatalog()
	search := &fakeSearch{results: []websearch.Result{
		{Title: "Pizza Hut Delivery Dizengoff", Link: "https://book.example.com/page/pizza-hut-dizengoff"},
	}}
	svc := NewVenueIdentityService(testLogger(t), nil, cat, search, 0)

	got, err := svc.Resolve(context.Background(), venue.Query{Name: "Pizza", Locality: "Tel Aviv"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Strategy != venue.StrategyCatalog {
		t.Fatalf("resolution=%+v, want catalog fallback", got)
	}
	if search.calls != 1 || cat.searchCalls != 1 {
		t.Fatalf("search calls=%d catalog calls=%d, want 1 and 1", search.calls, cat.searchCalls)
	}
}
