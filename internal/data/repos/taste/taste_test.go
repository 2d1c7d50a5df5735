package taste

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/data/repos/testutil"
	types "github.com/daniel-davidyan/pachu-app-sub003/internal/domain"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/dbctx"
)

func TestTasteSignalRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewTasteSignalRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	userID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	_, err := repo.Create(dbc, []*types.TasteSignal{
		{ID: uuid.New(), UserID: userID, Kind: types.SignalReview, IsPositive: true, Strength: 4, Content: "old", CreatedAt: base},
		{ID: uuid.New(), UserID: userID, Kind: types.SignalChat, IsPositive: true, Strength: 2, Content: "new", CreatedAt: base.Add(time.Minute)},
		{ID: uuid.New(), UserID: uuid.New(), Kind: types.SignalReview, IsPositive: false, Strength: 1, CreatedAt: base},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, err := repo.ListByUser(dbc, userID, nil, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(all) != 2 || all[0].Content != "new" {
		t.Fatalf("expected newest first for the user only, got %+v", all)
	}

	reviews, err := repo.ListByUser(dbc, userID, []types.SignalKind{types.SignalReview}, 10)
	if err != nil {
		t.Fatalf("ListByUser(kinds): %v", err)
	}
	if len(reviews) != 1 || reviews[0].Kind != types.SignalReview {
		t.Fatalf("unexpected filtered result %+v", reviews)
	}

	_, err = repo.Create(dbc, []*types.TasteSignal{{ID: uuid.New(), UserID: userID, Kind: types.SignalReview, Strength: 9}})
	if err == nil {
		t.Fatalf("expected strength check constraint violation")
	}
}

func TestTasteProfileRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewTasteProfileRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	userID := uuid.New()
	missing, err := repo.GetByUserID(dbc, userID)
	if err != nil || missing != nil {
		t.Fatalf("expected no profile, got %+v err=%v", missing, err)
	}

	p, err := repo.EnsureForUser(dbc, userID)
	if err != nil {
		t.Fatalf("EnsureForUser: %v", err)
	}
	again, err := repo.EnsureForUser(dbc, userID)
	if err != nil || again.ID != p.ID {
		t.Fatalf("EnsureForUser must be idempotent: %v %v", again, err)
	}

	vegan := true
	if err := repo.UpdateFields(dbc, userID, types.ProfileFields{Vegan: &vegan}.Columns()); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	at := time.Now().UTC()
	if err := repo.UpdateEmbedding(dbc, userID, types.SourceOnboarding, []float32{0.1, 0.2, 0.3}, "onboarding text", at); err != nil {
		t.Fatalf("UpdateEmbedding: %v", err)
	}

	got, err := repo.GetByUserID(dbc, userID)
	if err != nil || got == nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if !got.Vegan {
		t.Fatalf("field update lost")
	}
	vec, text, ok := got.Slot(types.SourceOnboarding)
	if !ok || len(vec) != 3 || text != "onboarding text" {
		t.Fatalf("unexpected onboarding slot %v %q %v", vec, text, ok)
	}
	if _, _, ok := got.Slot(types.SourceChat); ok {
		t.Fatalf("chat slot must stay empty")
	}

	if err := repo.UpdateEmbedding(dbc, uuid.New(), types.SourceChat, []float32{1}, "x", at); err == nil {
		t.Fatalf("expected error for missing profile")
	}
	if err := repo.UpdateEmbedding(dbc, userID, types.EmbeddingSource("bogus"), []float32{1}, "x", at); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}
