package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/daniel-davidyan/pachu-app-sub003/internal/domain"
	errs "github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/errors"
)

func TestRecordSignalSchedulesRebuildAndMirrorsRating(t *testing.T) {
	cases := []struct {
		name       string
		positive   bool
		wantRating float64
	}{
		{name: "positive", positive: true, wantRating: 4},
		{name: "negative", positive: false, wantRating: 0},
	}
	for _, tc := range cases {
		signals := &fakeSignals{}
		emb := &fakeEmbeddingService{}
		ratings := &fakeRatings{done: make(chan struct{}, 1)}
		svc := NewSignalService(testLogger(t), signals, emb, ratings, time.Second)

		restaurantID := uuid.New()
		sig, err := svc.Record(context.Background(), uuid.New(), SignalInput{
			Kind:           "Review",
			IsPositive:     tc.positive,
			Strength:       4,
			RestaurantID:   &restaurantID,
			RestaurantName: " Cafe Noir ",
			CuisineTypes:   []string{" french ", ""},
		})
		if err != nil {
			t.Fatalf("%s: Record: %v", tc.name, err)
		}
		if sig.Kind != types.SignalReview || sig.RestaurantName != "Cafe Noir" || len(sig.CuisineTypes) != 1 {
			t.Fatalf("%s: signal=%+v", tc.name, sig)
		}
		if len(emb.async) != 1 || len(emb.async[0]) != 1 || emb.async[0][0] != types.SourceReviews {
			t.Fatalf("%s: async rebuilds=%v, want [reviews]", tc.name, emb.async)
		}
		select {
		case <-ratings.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("%s: rating not mirrored", tc.name)
		}
		ratings.mu.Lock()
		got := ratings.got[0]
		ratings.mu.Unlock()
		if got != tc.wantRating {
			t.Fatalf("%s: rating=%v, want %v", tc.name, got, tc.wantRating)
		}
	}
}

func TestRecordSignalRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name   string
		userID uuid.UUID
		in     SignalInput
	}{
		{name: "no_user", userID: uuid.Nil, in: SignalInput{Kind: "chat", Strength: 3}},
		{name: "unknown_kind", userID: uuid.New(), in: SignalInput{Kind: "like", Strength: 3}},
		{name: "missing_kind", userID: uuid.New(), in: SignalInput{Strength: 3}},
		{name: "strength_low", userID: uuid.New(), in: SignalInput{Kind: "chat", Strength: 0}},
		{name: "strength_high", userID: uuid.New(), in: SignalInput{Kind: "chat", Strength: 6}},
		{name: "content_too_long", userID: uuid.New(), in: SignalInput{Kind: "chat", Strength: 3, Content: strings.Repeat("x", 4001)}},
	}
	for _, tc := range cases {
		signals := &fakeSignals{}
		emb := &fakeEmbeddingService{}
		svc := NewSignalService(testLogger(t), signals, emb, nil, 0)
		if _, err := svc.Record(context.Background(), tc.userID, tc.in); !errors.Is(err, errs.ErrInvalidArgument) {
			t.Fatalf("%s: err=%v, want invalid argument", tc.name, err)
		}
		if signals.created != 0 || len(emb.async) != 0 {
			t.Fatalf("%s: partial work done", tc.name)
		}
	}
}

func TestRecordChatSignalWithoutRatingWriter(t *testing.T) {
	signals := &fakeSignals{}
	emb := &fakeEmbeddingService{}
	svc := NewSignalService(testLogger(t), signals, emb, nil, 0)

	if _, err := svc.Record(context.Background(), uuid.New(), SignalInput{Kind: "chat", IsPositive: true, Strength: 2, Content: "likes spicy food"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(emb.async) != 1 || emb.async[0][0] != types.SourceChat {
		t.Fatalf("async rebuilds=%v, want [chat]", emb.async)
	}
}
