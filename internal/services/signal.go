package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/data/repos"
	types "github.com/daniel-davidyan/pachu-app-sub003/internal/domain"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/domain/taste"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/dbctx"
	errs "github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/errors"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
)

// RatingWriter mirrors review ratings into the social graph.
type RatingWriter interface {
	UpsertRating(ctx context.Context, userID, restaurantID uuid.UUID, rating float64) error
}

// SignalInput is the caller-supplied part of a taste signal.
type SignalInput struct {
	Kind           string     `json:"kind" validate:"required"`
	IsPositive     bool       `json:"is_positive"`
	Strength       int        `json:"strength" validate:"min=1,max=5"`
	RestaurantID   *uuid.UUID `json:"restaurant_id,omitempty"`
	RestaurantName string     `json:"restaurant_name,omitempty" validate:"max=256"`
	CuisineTypes   []string   `json:"cuisine_types,omitempty" validate:"max=20,dive,max=64"`
	Content        string     `json:"content,omitempty" validate:"max=4000"`
}

type SignalService interface {
	Record(ctx context.Context, userID uuid.UUID, in SignalInput) (*types.TasteSignal, error)
}

type signalService struct {
	log        *logger.Logger
	signals    repos.TasteSignalRepo
	embeddings EmbeddingService
	ratings    RatingWriter
	validate   *validator.Validate
	timeout    time.Duration
}

func NewSignalService(log *logger.Logger, signals repos.TasteSignalRepo, embeddings EmbeddingService, ratings RatingWriter, upstreamTimeout time.Duration) SignalService {
	if upstreamTimeout <= 0 {
		upstreamTimeout = 5 * time.Second
	}
	return &signalService{
		log:        log.With("service", "SignalService"),
		signals:    signals,
		embeddings: embeddings,
		ratings:    ratings,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		timeout:    upstreamTimeout,
	}
}

// Record appends one signal and schedules the rebuild of the embedding it
// feeds. The caller never waits on the rebuild.
func (s *signalService) Record(ctx context.Context, userID uuid.UUID, in SignalInput) (*types.TasteSignal, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id required", errs.ErrInvalidArgument)
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
	}
	kind, err := taste.ParseSignalKind(in.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
	}

	sig := &types.TasteSignal{
		UserID:         userID,
		Kind:           kind,
		IsPositive:     in.IsPositive,
		Strength:       in.Strength,
		RestaurantID:   in.RestaurantID,
		RestaurantName: strings.TrimSpace(in.RestaurantName),
		CuisineTypes:   cleanCuisines(in.CuisineTypes),
		Content:        strings.TrimSpace(in.Content),
	}
	created, err := s.signals.Create(dbctx.Context{Ctx: ctx}, []*types.TasteSignal{sig})
	if err != nil {
		return nil, fmt.Errorf("create taste signal: %w", err)
	}
	if len(created) == 1 && created[0] != nil {
		sig = created[0]
	}

	if src, ok := kind.EmbeddingSource(); ok && s.embeddings != nil {
		s.embeddings.RebuildAsync(ctx, userID, "signal:"+string(kind), src)
	}
	if kind == types.SignalReview && sig.RestaurantID != nil && *sig.RestaurantID != uuid.Nil {
		s.mirrorRating(ctx, sig)
	}
	return sig, nil
}

// mirrorRating writes the review as a RATED edge. A negative review is stored
// with rating 0 so it still counts as a followee review.
func (s *signalService) mirrorRating(ctx context.Context, sig *types.TasteSignal) {
	if s.ratings == nil {
		return
	}
	rating := float64(sig.Strength)
	if !sig.IsPositive {
		rating = 0
	}
	userID, restaurantID := sig.UserID, *sig.RestaurantID
	detached := context.WithoutCancel(ctx)
	go func() {
		runCtx, cancel := context.WithTimeout(detached, s.timeout)
		defer cancel()
		if err := s.ratings.UpsertRating(runCtx, userID, restaurantID, rating); err != nil {
			s.log.Warn("Mirror review rating failed", "user_id", userID, "restaurant_id", restaurantID, "error", err)
		}
	}()
}

func cleanCuisines(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, c := range in {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
