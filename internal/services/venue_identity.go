package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/domain/venue"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/modules/venuematch"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/observability"
	errs "github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/errors"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/catalog"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/websearch"
)

// ResolutionCache stores terminal resolution outcomes. cache.VenueResolutionCache satisfies it.
type ResolutionCache interface {
	Get(ctx context.Context, q venue.Query) (venue.Resolution, bool, error)
	Set(ctx context.Context, q venue.Query, res venue.Resolution) error
}

type VenueIdentityService interface {
	Resolve(ctx context.Context, q venue.Query) (venue.Resolution, error)
}

type venueIdentityService struct {
	log     *logger.Logger
	cache   ResolutionCache
	catalog catalog.Client
	search  websearch.Client
	timeout time.Duration
}

// NewVenueIdentityService accepts nil cache, catalog and search clients.
// Without a catalog every resolution is unavailable.
func NewVenueIdentityService(log *logger.Logger, cache ResolutionCache, catalogClient catalog.Client, search websearch.Client, upstreamTimeout time.Duration) VenueIdentityService {
	if upstreamTimeout <= 0 {
		upstreamTimeout = 5 * time.Second
	}
	return &venueIdentityService{
		log:     log.With("service", "VenueIdentityService"),
		cache:   cache,
		catalog: catalogClient,
		search:  search,
		timeout: upstreamTimeout,
	}
}

// Resolve maps a free-text venue reference to one catalog venue. Only invalid
// input is returned as an error; every other outcome is a Resolution status.
func (s *venueIdentityService) Resolve(ctx context.Context, q venue.Query) (venue.Resolution, error) {
	q = q.Trimmed()
	if q.Name == "" {
		return venue.Resolution{}, fmt.Errorf("%w: name is required", errs.ErrInvalidArgument)
	}

	ctx, span := observability.StartSpan(ctx, "venue_identity.resolve")
	defer span.End()

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, q)
		if err != nil {
			s.log.Warn("Venue resolution cache read failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	res := s.resolve(ctx, q)
	span.SetAttributes(attribute.String("venue.status", string(res.Status)), attribute.String("venue.strategy", res.Strategy))
	observability.Current().IncVenueResolution(string(res.Status), res.Strategy)

	if res.Terminal() && s.cache != nil {
		if err := s.cache.Set(ctx, q, res); err != nil {
			s.log.Warn("Venue resolution cache write failed", "error", err)
		}
	}
	return res, nil
}

func (s *venueIdentityService) resolve(ctx context.Context, q venue.Query) venue.Resolution {
	if s.catalog == nil {
		return venue.Resolution{Status: venue.StatusUnavailable, Strategy: venue.StrategyCatalog}
	}
	if res, ok := s.discover(ctx, q); ok {
		return res
	}
	return s.searchCatalog(ctx, q)
}

// discover looks for a direct catalog page link through web search. Any
// failure falls through to catalog search.
func (s *venueIdentityService) discover(ctx context.Context, q venue.Query) (venue.Resolution, bool) {
	if s.search == nil {
		return venue.Resolution{}, false
	}
	base := strings.TrimRight(s.catalog.DeepLinkBase(), "/")
	if base == "" {
		return venue.Resolution{}, false
	}

	query := strings.TrimSpace(strings.Join([]string{q.Name, q.Locality}, " "))
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	start := time.Now()
	results, err := s.search.Search(callCtx, query)
	cancel()
	observability.Current().ObserveUpstream("web_search", err, time.Since(start))
	if err != nil {
		if errors.Is(err, websearch.ErrQuotaExceeded) {
			s.log.Info("Web search quota exhausted; using catalog search")
		} else {
			s.log.Warn("Web search failed; using catalog search", "error", err)
		}
		return venue.Resolution{}, false
	}

	name := venuematch.Normalize(q.Name)
	for _, r := range results {
		slug, ok := websearch.PageSlugFromLink(r.Link, base)
		if !ok {
			continue
		}
		title := venuematch.Normalize(r.Title)
		slugWords := venuematch.Normalize(strings.ReplaceAll(slug, "-", " "))
		if name == "" || (!strings.Contains(title, name) && !strings.Contains(slugWords, name)) {
			continue
		}
		// A bare substring hit on a short name is not enough.
		confidence := max(venuematch.Similarity(name, title), venuematch.Similarity(name, slugWords))
		if confidence < venuematch.MinConfidence {
			continue
		}
		return venue.Resolution{
			Status:     venue.StatusResolved,
			Strategy:   venue.StrategyWebSearch,
			PageSlug:   slug,
			DeepLink:   base + "/page/" + slug,
			Name:       strings.TrimSpace(r.Title),
			Confidence: confidence,
		}, true
	}
	return venue.Resolution{}, false
}

func (s *venueIdentityService) searchCatalog(ctx context.Context, q venue.Query) venue.Resolution {
	unavailable := venue.Resolution{Status: venue.StatusUnavailable, Strategy: venue.StrategyCatalog}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	start := time.Now()
	candidates, err := s.catalog.Search(callCtx, q)
	cancel()
	observability.Current().ObserveUpstream("catalog_search", err, time.Since(start))
	if err != nil {
		s.log.Warn("Catalog search failed", "error", err)
		return unavailable
	}
	if len(candidates) == 0 {
		return venue.Resolution{Status: venue.StatusNoResults, Strategy: venue.StrategyCatalog}
	}

	match, ok := venuematch.SelectCandidate(q, candidates)
	if !ok {
		return venue.Resolution{Status: venue.StatusNoMatch, Strategy: venue.StrategyCatalog}
	}

	callCtx, cancel = context.WithTimeout(ctx, s.timeout)
	start = time.Now()
	profile, err := s.catalog.Profile(callCtx, match.Candidate.ID)
	cancel()
	observability.Current().ObserveUpstream("catalog_profile", err, time.Since(start))
	if err != nil {
		s.log.Warn("Catalog profile lookup failed", "venue_id", match.Candidate.ID, "error", err)
		return unavailable
	}

	venueSlug := profile.Slug
	if venueSlug == "" {
		venueSlug = match.Candidate.Slug
	}
	name := profile.Name
	if name == "" {
		name = match.Candidate.Name
	}
	res := venue.Resolution{
		Status:     venue.StatusResolved,
		Strategy:   venue.StrategyCatalog,
		VenueID:    match.Candidate.ID,
		VenueSlug:  venueSlug,
		Name:       name,
		Confidence: match.Confidence,
	}
	base := strings.TrimRight(s.catalog.DeepLinkBase(), "/")
	if page, ok := venuematch.SelectPage(profile.Pages); ok {
		res.PageSlug = page.Slug
		res.DeepLink = base + "/page/" + page.Slug
	} else if venueSlug != "" {
		res.DeepLink = base + "/venue/" + venueSlug
	}
	return res
}
