package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/data/repos"
	types "github.com/daniel-davidyan/pachu-app-sub003/internal/domain"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/dbctx"
	errs "github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/errors"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
)

type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*types.TasteProfile, error)
	Update(ctx context.Context, userID uuid.UUID, fields types.ProfileFields) (*types.TasteProfile, error)
	CompleteOnboarding(ctx context.Context, userID uuid.UUID) (*types.TasteProfile, error)
}

type profileService struct {
	log        *logger.Logger
	profiles   repos.TasteProfileRepo
	embeddings EmbeddingService
	validate   *validator.Validate
}

func NewProfileService(log *logger.Logger, profiles repos.TasteProfileRepo, embeddings EmbeddingService) ProfileService {
	return &profileService{
		log:        log.With("service", "ProfileService"),
		profiles:   profiles,
		embeddings: embeddings,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*types.TasteProfile, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id required", errs.ErrInvalidArgument)
	}
	return s.profiles.EnsureForUser(dbctx.Context{Ctx: ctx}, userID)
}

// Update writes only the supplied fields. The onboarding embedding is rebuilt
// once onboarding has been completed.
func (s *profileService) Update(ctx context.Context, userID uuid.UUID, fields types.ProfileFields) (*types.TasteProfile, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id required", errs.ErrInvalidArgument)
	}
	if err := s.validate.Struct(fields); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
	}

	dbc := dbctx.Context{Ctx: ctx}
	profile, err := s.profiles.EnsureForUser(dbc, userID)
	if err != nil {
		return nil, err
	}
	cols := fields.Columns()
	if len(cols) == 0 {
		return profile, nil
	}
	if err := s.profiles.UpdateFields(dbc, userID, cols); err != nil {
		return nil, fmt.Errorf("update taste profile: %w", err)
	}
	fields.Apply(profile)

	if profile.OnboardingCompleted && s.embeddings != nil {
		s.embeddings.RebuildAsync(ctx, userID, "profile_update", types.SourceOnboarding)
	}
	return profile, nil
}

func (s *profileService) CompleteOnboarding(ctx context.Context, userID uuid.UUID) (*types.TasteProfile, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id required", errs.ErrInvalidArgument)
	}
	dbc := dbctx.Context{Ctx: ctx}
	profile, err := s.profiles.EnsureForUser(dbc, userID)
	if err != nil {
		return nil, err
	}
	if !profile.OnboardingCompleted {
		if err := s.profiles.UpdateFields(dbc, userID, map[string]interface{}{"onboarding_completed": true}); err != nil {
			return nil, fmt.Errorf("complete onboarding: %w", err)
		}
		profile.OnboardingCompleted = true
	}
	if s.embeddings != nil {
		s.embeddings.RebuildAsync(ctx, userID, "onboarding_complete")
	}
	return profile, nil
}
