package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/data/repos"
	types "github.com/daniel-davidyan/pachu-app-sub003/internal/domain"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/domain/taste"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/modules/scoring"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/modules/tastetext"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/observability"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/dbctx"
	errs "github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/errors"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
)

// Embedder is the single-attempt embedding call. openai.Client satisfies it.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

type RebuildOutcome string

const (
	RebuildUpdated   RebuildOutcome = "updated"
	RebuildUnchanged RebuildOutcome = "unchanged"
	RebuildSkipped   RebuildOutcome = "skipped"
	RebuildFailed    RebuildOutcome = "failed"
)

type SourceResult struct {
	Source  types.EmbeddingSource `json:"source"`
	Outcome RebuildOutcome        `json:"outcome"`
	Error   string                `json:"error,omitempty"`
}

type RebuildReport struct {
	UserID   uuid.UUID      `json:"user_id"`
	Results  []SourceResult `json:"results"`
	Combined *SourceResult  `json:"combined,omitempty"`
}

// Updated reports whether any source slot was rewritten.
func (r *RebuildReport) Updated() bool {
	if r == nil {
		return false
	}
	for _, res := range r.Results {
		if res.Outcome == RebuildUpdated {
			return true
		}
	}
	return false
}

type EmbeddingService interface {
	Rebuild(ctx context.Context, userID uuid.UUID, sources ...types.EmbeddingSource) (*RebuildReport, error)
	RebuildAsync(ctx context.Context, userID uuid.UUID, trigger string, sources ...types.EmbeddingSource)
	BestEmbedding(ctx context.Context, userID uuid.UUID) ([]float32, types.EmbeddingSource, error)
}

type EmbeddingConfig struct {
	CallTimeout  time.Duration
	AsyncTimeout time.Duration
	SignalLimit  int
}

type embeddingService struct {
	log      *logger.Logger
	profiles repos.TasteProfileRepo
	signals  repos.TasteSignalRepo
	embedder Embedder
	cfg      EmbeddingConfig
	now      func() time.Time
	locks    *userLocks
}

func NewEmbeddingService(log *logger.Logger, profiles repos.TasteProfileRepo, signals repos.TasteSignalRepo, embedder Embedder, cfg EmbeddingConfig) EmbeddingService {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 5 * time.Second
	}
	if cfg.AsyncTimeout <= 0 {
		cfg.AsyncTimeout = 30 * time.Second
	}
	if cfg.SignalLimit <= 0 {
		cfg.SignalLimit = 500
	}
	return &embeddingService{
		log:      log.With("service", "EmbeddingService"),
		profiles: profiles,
		signals:  signals,
		embedder: embedder,
		cfg:      cfg,
		now:      time.Now,
		locks:    newUserLocks(),
	}
}

// userLocks serializes rebuilds per user so each one reads the signals and
// slots written by the one before it.
type userLocks struct {
	mu   sync.Mutex
	held map[uuid.UUID]*userLock
}

type userLock struct {
	ch   chan struct{}
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{held: map[uuid.UUID]*userLock{}}
}

func (l *userLocks) acquire(ctx context.Context, userID uuid.UUID) (func(), error) {
	l.mu.Lock()
	ul, ok := l.held[userID]
	if !ok {
		ul = &userLock{ch: make(chan struct{}, 1)}
		l.held[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	select {
	case ul.ch <- struct{}{}:
		return func() {
			<-ul.ch
			l.release(userID, ul)
		}, nil
	case <-ctx.Done():
		l.release(userID, ul)
		return nil, ctx.Err()
	}
}

func (l *userLocks) release(userID uuid.UUID, ul *userLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ul.refs--
	if ul.refs == 0 {
		delete(l.held, userID)
	}
}

func normalizeSources(sources []types.EmbeddingSource) ([]types.EmbeddingSource, error) {
	if len(sources) == 0 {
		return append([]types.EmbeddingSource(nil), taste.BuildSources...), nil
	}
	seen := map[types.EmbeddingSource]bool{}
	out := make([]types.EmbeddingSource, 0, len(sources))
	for _, s := range sources {
		if !s.Valid() || s == types.SourceCombined {
			return nil, fmt.Errorf("%w: cannot rebuild embedding source %q", errs.ErrInvalidArgument, s)
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

// Rebuild recomputes the requested source embeddings independently. A failure
// on one source leaves the others and all stored values untouched.
func (s *embeddingService) Rebuild(ctx context.Context, userID uuid.UUID, sources ...types.EmbeddingSource) (*RebuildReport, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id required", errs.ErrInvalidArgument)
	}
	targets, err := normalizeSources(sources)
	if err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "embedding.rebuild")
	defer span.End()

	unlock, err := s.locks.acquire(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("wait for embedding rebuild: %w", err)
	}
	defer unlock()

	dbc := dbctx.Context{Ctx: ctx}
	profile, err := s.profiles.EnsureForUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load taste profile: %w", err)
	}
	signals, err := s.signals.ListByUser(dbc, userID, nil, s.cfg.SignalLimit)
	if err != nil {
		return nil, fmt.Errorf("load taste signals: %w", err)
	}

	report := &RebuildReport{UserID: userID, Results: make([]SourceResult, 0, len(targets))}
	for _, src := range targets {
		res := s.rebuildSource(ctx, profile, signals, src)
		observability.Current().IncEmbeddingRebuild(string(src), string(res.Outcome))
		report.Results = append(report.Results, res)
	}

	if report.Updated() {
		if fresh, err := s.profiles.GetByUserID(dbc, userID); err == nil && fresh != nil {
			profile = fresh
		} else if err != nil {
			s.log.Warn("Reload taste profile failed", "user_id", userID, "error", err)
		}
		combined := s.rebuildCombined(ctx, profile)
		observability.Current().IncEmbeddingRebuild(string(types.SourceCombined), string(combined.Outcome))
		report.Combined = &combined
	}

	s.log.Info("Embedding rebuild finished", "user_id", userID, "results", report.Results)
	return report, nil
}

func (s *embeddingService) rebuildSource(ctx context.Context, profile *types.TasteProfile, signals []*types.TasteSignal, src types.EmbeddingSource) SourceResult {
	res := SourceResult{Source: src}

	text, ok := tastetext.ForSource(src, profile, signals)
	if !ok {
		res.Outcome, res.Error = RebuildFailed, "no text builder"
		return res
	}
	if !tastetext.Embeddable(text) {
		res.Outcome = RebuildSkipped
		return res
	}
	if _, stored, has := profile.Slot(src); has && stored == text {
		res.Outcome = RebuildUnchanged
		return res
	}
	if s.embedder == nil {
		res.Outcome, res.Error = RebuildFailed, errs.ErrUnavailable.Error()
		return res
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	start := time.Now()
	vecs, err := s.embedder.Embed(callCtx, []string{text})
	cancel()
	observability.Current().ObserveUpstream("embedding", err, time.Since(start))
	if err == nil && (len(vecs) != 1 || len(vecs[0]) == 0) {
		err = fmt.Errorf("embedding service returned %d vectors", len(vecs))
	}
	if err != nil {
		s.log.Warn("Embedding call failed", "source", src, "error", err)
		res.Outcome, res.Error = RebuildFailed, err.Error()
		return res
	}

	at := s.now().UTC()
	if err := s.profiles.UpdateEmbedding(dbctx.Context{Ctx: ctx}, profile.UserID, src, vecs[0], text, at); err != nil {
		s.log.Warn("Persist embedding failed", "source", src, "error", err)
		res.Outcome, res.Error = RebuildFailed, err.Error()
		return res
	}
	profile.SetSlot(src, vecs[0], text, at)
	res.Outcome = RebuildUpdated
	return res
}

// rebuildCombined averages every stored source vector that shares the most
// common dimension and L2-normalizes the mean.
func (s *embeddingService) rebuildCombined(ctx context.Context, profile *types.TasteProfile) SourceResult {
	res := SourceResult{Source: types.SourceCombined}

	type slot struct {
		vec  []float32
		text string
	}
	var present []slot
	dims := map[int]int{}
	for _, src := range taste.BuildSources {
		if vec, text, ok := profile.Slot(src); ok {
			present = append(present, slot{vec: vec, text: text})
			dims[len(vec)]++
		}
	}
	if len(present) == 0 {
		res.Outcome = RebuildSkipped
		return res
	}

	dim := len(present[0].vec)
	for _, p := range present {
		if dims[len(p.vec)] > dims[dim] {
			dim = len(p.vec)
		}
	}
	var vecs [][]float32
	var texts []string
	for _, p := range present {
		if len(p.vec) != dim {
			continue
		}
		vecs = append(vecs, p.vec)
		texts = append(texts, p.text)
	}
	combined := scoring.MeanNormalized(dim, vecs...)
	text := strings.Join(texts, "\n\n")

	at := s.now().UTC()
	if err := s.profiles.UpdateEmbedding(dbctx.Context{Ctx: ctx}, profile.UserID, types.SourceCombined, combined, text, at); err != nil {
		s.log.Warn("Persist combined embedding failed", "error", err)
		res.Outcome, res.Error = RebuildFailed, err.Error()
		return res
	}
	profile.SetSlot(types.SourceCombined, combined, text, at)
	res.Outcome = RebuildUpdated
	return res
}

// RebuildAsync runs Rebuild detached from the caller's cancellation, bounded
// by the async timeout. Errors are logged only.
func (s *embeddingService) RebuildAsync(ctx context.Context, userID uuid.UUID, trigger string, sources ...types.EmbeddingSource) {
	if ctx == nil {
		ctx = context.Background()
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		runCtx, cancel := context.WithTimeout(detached, s.cfg.AsyncTimeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("Async embedding rebuild panicked", "trigger", trigger, "panic", r)
			}
		}()
		if _, err := s.Rebuild(runCtx, userID, sources...); err != nil {
			s.log.Warn("Async embedding rebuild failed", "trigger", trigger, "user_id", userID, "error", err)
		}
	}()
}

func (s *embeddingService) BestEmbedding(ctx context.Context, userID uuid.UUID) ([]float32, types.EmbeddingSource, error) {
	if userID == uuid.Nil {
		return nil, "", fmt.Errorf("%w: user id required", errs.ErrInvalidArgument)
	}
	profile, err := s.profiles.GetByUserID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, "", err
	}
	vec, src, ok := taste.BestEmbedding(profile)
	if !ok {
		return nil, "", fmt.Errorf("%w: no taste embedding for user", errs.ErrNotFound)
	}
	return vec, src, nil
}
