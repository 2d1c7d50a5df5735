package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/data/repos"
	types "github.com/daniel-davidyan/pachu-app-sub003/internal/domain"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/modules/scoring"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/observability"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/dbctx"
	errs "github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/errors"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
)

// RestaurantScore is one entry of a score response, in request order.
type RestaurantScore struct {
	ID    string `json:"id"`
	Score int    `json:"score"`
	Basis string `json:"basis"`
}

// FolloweeRatings is the read side of the social graph.
type FolloweeRatings interface {
	FolloweeRatingSums(ctx context.Context, userID uuid.UUID, restaurantIDs []uuid.UUID) (map[uuid.UUID]float64, error)
}

// UserEmbeddings resolves the embedding used to match a user.
type UserEmbeddings interface {
	BestEmbedding(ctx context.Context, userID uuid.UUID) ([]float32, types.EmbeddingSource, error)
}

type MatchScoreService interface {
	Score(ctx context.Context, userID uuid.UUID, ids []string) ([]RestaurantScore, error)
}

type matchScoreService struct {
	log         *logger.Logger
	embeddings  UserEmbeddings
	restaurants repos.RestaurantRepo
	cache       repos.RestaurantCacheRepo
	graph       FolloweeRatings
	weights     scoring.Weights
	timeout     time.Duration
}

func NewMatchScoreService(log *logger.Logger, embeddings UserEmbeddings, restaurants repos.RestaurantRepo, cache repos.RestaurantCacheRepo, graph FolloweeRatings, weights scoring.Weights, upstreamTimeout time.Duration) MatchScoreService {
	if upstreamTimeout <= 0 {
		upstreamTimeout = 5 * time.Second
	}
	return &matchScoreService{
		log:         log.With("service", "MatchScoreService"),
		embeddings:  embeddings,
		restaurants: restaurants,
		cache:       cache,
		graph:       graph,
		weights:     weights,
		timeout:     upstreamTimeout,
	}
}

// scoringData is everything fetched for one batch, keyed for lookup by either id form.
type scoringData struct {
	byID       map[uuid.UUID]*types.Restaurant
	byExternal map[string]*types.Restaurant
	cache      map[string]*types.RestaurantCacheEntry
	friends    map[uuid.UUID]float64
}

func (s *matchScoreService) Score(ctx context.Context, userID uuid.UUID, ids []string) ([]RestaurantScore, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: restaurant_ids must not be empty", errs.ErrInvalidArgument)
	}

	ctx, span := observability.StartSpan(ctx, "match_score.score", attribute.Int("restaurant.count", len(ids)))
	defer span.End()
	observability.Current().ObserveScoreBatch(len(ids))

	out := make([]RestaurantScore, len(ids))
	for i, id := range ids {
		out[i] = RestaurantScore{ID: id, Score: scoring.DefaultScore, Basis: string(scoring.BasisDefault)}
	}
	defer func() {
		for _, r := range out {
			observability.Current().IncScoreBasis(r.Basis)
		}
	}()

	if userID == uuid.Nil || s.embeddings == nil {
		return out, nil
	}
	userVec, _, err := s.embeddings.BestEmbedding(ctx, userID)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			s.log.Warn("User embedding lookup failed; using default scores", "user_id", userID, "error", err)
		}
		return out, nil
	}
	if len(userVec) == 0 {
		return out, nil
	}

	data := s.fetch(ctx, userID, ids)

	for i, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		in := scoring.Input{UserEmbedding: userVec}
		r := data.lookupRestaurant(id)
		entry := data.cache[id]
		if entry == nil && r != nil && r.ExternalID != "" {
			entry = data.cache[r.ExternalID]
		}
		if entry != nil {
			in.Summary = entry.SummaryVector()
			in.Reviews = entry.ReviewsVector()
			in.Rating = entry.Rating
		}
		// The relational rating only backs the rating-only formula; the
		// embedding blend uses the external rating or the default.
		if in.Rating == nil && len(in.Summary) == 0 && r != nil {
			in.Rating = r.Rating
		}
		if r != nil {
			if sum, ok := data.friends[r.ID]; ok {
				in.FriendsSum, in.HasFriends = sum, true
			}
		}
		score, basis := scoring.Compute(s.weights, in)
		out[i].Score, out[i].Basis = score, string(basis)
	}
	return out, nil
}

func (d *scoringData) lookupRestaurant(id string) *types.Restaurant {
	if u, err := uuid.Parse(id); err == nil {
		if r := d.byID[u]; r != nil {
			return r
		}
	}
	return d.byExternal[id]
}

// fetch loads restaurants and cache rows concurrently. Any failed fetch is
// logged and treated as empty so the affected ids fall back to defaults.
func (s *matchScoreService) fetch(ctx context.Context, userID uuid.UUID, ids []string) *scoringData {
	data := &scoringData{
		byID:       map[uuid.UUID]*types.Restaurant{},
		byExternal: map[string]*types.Restaurant{},
		cache:      map[string]*types.RestaurantCacheEntry{},
		friends:    map[uuid.UUID]float64{},
	}

	var internalIDs []uuid.UUID
	var externalIDs []string
	seen := map[string]bool{}
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if u, err := uuid.Parse(id); err == nil {
			internalIDs = append(internalIDs, u)
		}
		externalIDs = append(externalIDs, id)
	}

	var (
		byID    []*types.Restaurant
		byExt   []*types.Restaurant
		entries []*types.RestaurantCacheEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.Context{Ctx: gctx}
	g.Go(func() error {
		rows, err := s.restaurants.GetByIDs(dbc, internalIDs)
		if err != nil {
			s.log.Warn("Restaurant lookup by id failed", "error", err)
			return nil
		}
		byID = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.restaurants.GetByExternalIDs(dbc, externalIDs)
		if err != nil {
			s.log.Warn("Restaurant lookup by external id failed", "error", err)
			return nil
		}
		byExt = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.cache.GetByExternalIDs(dbc, externalIDs)
		if err != nil {
			s.log.Warn("Restaurant cache lookup failed", "error", err)
			return nil
		}
		entries = rows
		return nil
	})
	_ = g.Wait()

	for _, r := range byID {
		if r != nil {
			data.byID[r.ID] = r
		}
	}
	for _, r := range byExt {
		if r != nil {
			data.byID[r.ID] = r
			data.byExternal[r.ExternalID] = r
		}
	}
	for _, e := range entries {
		if e != nil {
			data.cache[e.ExternalID] = e
		}
	}

	// Internal ids only reveal their catalog id after the first round.
	var discovered []string
	for _, r := range byID {
		if r != nil && r.ExternalID != "" && data.cache[r.ExternalID] == nil && !seen[r.ExternalID] {
			discovered = append(discovered, r.ExternalID)
			seen[r.ExternalID] = true
		}
	}
	if len(discovered) > 0 {
		rows, err := s.cache.GetByExternalIDs(dbctx.Context{Ctx: ctx}, discovered)
		if err != nil {
			s.log.Warn("Restaurant cache lookup for discovered ids failed", "error", err)
		}
		for _, e := range rows {
			if e != nil {
				data.cache[e.ExternalID] = e
			}
		}
	}

	if s.graph != nil && len(data.byID) > 0 {
		restaurantIDs := make([]uuid.UUID, 0, len(data.byID))
		for id := range data.byID {
			restaurantIDs = append(restaurantIDs, id)
		}
		gctx, cancel := context.WithTimeout(ctx, s.timeout)
		start := time.Now()
		sums, err := s.graph.FolloweeRatingSums(gctx, userID, restaurantIDs)
		cancel()
		observability.Current().ObserveUpstream("social_graph", err, time.Since(start))
		if err != nil {
			s.log.Warn("Social graph lookup failed; treating as no followee reviews", "error", err)
		} else {
			data.friends = sums
		}
	}
	return data
}
