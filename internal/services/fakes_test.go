package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	types "github.com/daniel-davidyan/pachu-app-sub003/internal/domain"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/domain/venue"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/dbctx"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/websearch"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func vecPtr(v ...float32) *pgvector.Vector {
	out := pgvector.NewVector(v)
	return &out
}

func floatPtr(v float64) *float64 { return &v }

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*types.TasteProfile
	getErr   error
	updates  []map[string]interface{}
	writes   []types.EmbeddingSource
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: map[uuid.UUID]*types.TasteProfile{}}
}

func (f *fakeProfiles) put(p *types.TasteProfile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.UserID] = p
}

func (f *fakeProfiles) GetByUserID(_ dbctx.Context, userID uuid.UUID) (*types.TasteProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) EnsureForUser(_ dbctx.Context, userID uuid.UUID) (*types.TasteProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		p = &types.TasteProfile{ID: uuid.New(), UserID: userID}
		f.profiles[userID] = p
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) UpdateFields(_ dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updates)
	if p, ok := f.profiles[userID]; ok {
		if v, ok := updates["onboarding_completed"].(bool); ok {
			p.OnboardingCompleted = v
		}
	}
	return nil
}

func (f *fakeProfiles) UpdateEmbedding(_ dbctx.Context, userID uuid.UUID, source types.EmbeddingSource, vec []float32, text string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return errors.New("no profile")
	}
	p.SetSlot(source, vec, text, at)
	f.writes = append(f.writes, source)
	return nil
}

type fakeSignals struct {
	mu      sync.Mutex
	signals []*types.TasteSignal
	created int
}

func (f *fakeSignals) Create(_ dbctx.Context, signals []*types.TasteSignal) ([]*types.TasteSignal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range signals {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = time.Now()
		}
		f.signals = append(f.signals, s)
		f.created++
	}
	return signals, nil
}

func (f *fakeSignals) ListByUser(_ dbctx.Context, userID uuid.UUID, _ []types.SignalKind, _ int) ([]*types.TasteSignal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.TasteSignal
	for _, s := range f.signals {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeEmbedder struct {
	mu     sync.Mutex
	calls  []string
	failOn map[string]error
	vec    []float32
}

func (f *fakeEmbedder) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]float32, 0, len(inputs))
	for _, in := range inputs {
		f.calls = append(f.calls, in)
		for needle, err := range f.failOn {
			if needle != "" && strings.Contains(in, needle) {
				return nil, err
			}
		}
		v := f.vec
		if v == nil {
			v = []float32{1, 0, 0}
		}
		out = append(out, append([]float32(nil), v...))
	}
	return out, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeRestaurants struct {
	rows []*types.Restaurant
	err  error
}

func (f *fakeRestaurants) Create(_ dbctx.Context, rows []*types.Restaurant) ([]*types.Restaurant, error) {
	f.rows = append(f.rows, rows...)
	return rows, nil
}

func (f *fakeRestaurants) GetByIDs(_ dbctx.Context, ids []uuid.UUID) ([]*types.Restaurant, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Restaurant
	for _, r := range f.rows {
		for _, id := range ids {
			if r.ID == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (f *fakeRestaurants) GetByExternalIDs(_ dbctx.Context, ids []string) ([]*types.Restaurant, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Restaurant
	for _, r := range f.rows {
		for _, id := range ids {
			if r.ExternalID == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries []*types.RestaurantCacheEntry
	lookups [][]string
	stale   []*types.RestaurantCacheEntry
	limit   int
}

func (f *fakeCache) GetByExternalIDs(_ dbctx.Context, ids []string) ([]*types.RestaurantCacheEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, append([]string(nil), ids...))
	var out []*types.RestaurantCacheEntry
	for _, e := range f.entries {
		for _, id := range ids {
			if e.ExternalID == id {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (f *fakeCache) ListStale(_ dbctx.Context, _ time.Time, limit int) ([]*types.RestaurantCacheEntry, error) {
	f.limit = limit
	return f.stale, nil
}

type fakeGraph struct {
	sums map[uuid.UUID]float64
	err  error
}

func (f *fakeGraph) FolloweeRatingSums(_ context.Context, _ uuid.UUID, _ []uuid.UUID) (map[uuid.UUID]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sums, nil
}

type fakeUserEmbeddings struct {
	vec []float32
	err error
}

func (f *fakeUserEmbeddings) BestEmbedding(_ context.Context, _ uuid.UUID) ([]float32, types.EmbeddingSource, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.vec, types.SourceCombined, nil
}

type fakeResolutionCache struct {
	mu      sync.Mutex
	entries map[string]venue.Resolution
	sets    int
}

func newFakeResolutionCache() *fakeResolutionCache {
	return &fakeResolutionCache{entries: map[string]venue.Resolution{}}
}

func (f *fakeResolutionCache) key(q venue.Query) string {
	return q.Name + "|" + q.Address + "|" + q.Locality
}

func (f *fakeResolutionCache) Get(_ context.Context, q venue.Query) (venue.Resolution, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.entries[f.key(q)]
	return r, ok, nil
}

func (f *fakeResolutionCache) Set(_ context.Context, q venue.Query, res venue.Resolution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[f.key(q)] = res
	f.sets++
	return nil
}

type fakeCatalog struct {
	mu          sync.Mutex
	candidates  []venue.Candidate
	searchErr   error
	profiles    map[string]venue.Profile
	profileErr  error
	searchCalls int
	base        string
}

func (f *fakeCatalog) Search(_ context.Context, _ venue.Query) ([]venue.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.candidates, nil
}

func (f *fakeCatalog) Profile(_ context.Context, id string) (venue.Profile, error) {
	if f.profileErr != nil {
		return venue.Profile{}, f.profileErr
	}
	return f.profiles[id], nil
}

func (f *fakeCatalog) DeepLinkBase() string { return f.base }

type fakeSearch struct {
	results []websearch.Result
	err     error
	calls   int
}

func (f *fakeSearch) Search(_ context.Context, _ string) ([]websearch.Result, error) {
	f.calls++
	return f.results, f.err
}

type fakeRatings struct {
	mu   sync.Mutex
	done chan struct{}
	got  []float64
}

func (f *fakeRatings) UpsertRating(_ context.Context, _, _ uuid.UUID, rating float64) error {
	f.mu.Lock()
	f.got = append(f.got, rating)
	f.mu.Unlock()
	if f.done != nil {
		f.done <- struct{}{}
	}
	return nil
}

type fakeEmbeddingService struct {
	mu      sync.Mutex
	async   [][]types.EmbeddingSource
	trigger []string
}

func (f *fakeEmbeddingService) Rebuild(_ context.Context, userID uuid.UUID, _ ...types.EmbeddingSource) (*RebuildReport, error) {
	return &RebuildReport{UserID: userID}, nil
}

func (f *fakeEmbeddingService) RebuildAsync(_ context.Context, _ uuid.UUID, trigger string, sources ...types.EmbeddingSource) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.async = append(f.async, sources)
	f.trigger = append(f.trigger, trigger)
}

func (f *fakeEmbeddingService) BestEmbedding(_ context.Context, _ uuid.UUID) ([]float32, types.EmbeddingSource, error) {
	return nil, "", nil
}

// gatedEmbedder blocks the first call whose input contains gate until release
// is closed. vecFor picks the vector per input.
type gatedEmbedder struct {
	mu      sync.Mutex
	gate    string
	entered chan struct{}
	release chan struct{}
	vecFor  func(string) []float32
	calls   []string
}

func newGatedEmbedder(gate string, vecFor func(string) []float32) *gatedEmbedder {
	return &gatedEmbedder{
		gate:    gate,
		entered: make(chan struct{}),
		release: make(chan struct{}),
		vecFor:  vecFor,
	}
}

func (f *gatedEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	block := false
	f.mu.Lock()
	for _, in := range inputs {
		f.calls = append(f.calls, in)
		if f.gate != "" && strings.Contains(in, f.gate) {
			f.gate = ""
			block = true
		}
	}
	f.mu.Unlock()

	if block {
		close(f.entered)
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	out := make([][]float32, 0, len(inputs))
	for _, in := range inputs {
		v := []float32{1, 0, 0}
		if f.vecFor != nil {
			v = f.vecFor(in)
		}
		out = append(out, v)
	}
	return out, nil
}
