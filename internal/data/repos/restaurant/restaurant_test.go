package restaurant

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/data/repos/testutil"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/dbctx"
)

func TestRestaurantRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewRestaurantRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	rating := 4.2
	ext := "ext-" + uuid.NewString()
	r := testutil.SeedRestaurant(t, ctx, tx, ext, "Taizu", &rating)

	byID, err := repo.GetByIDs(dbc, []uuid.UUID{r.ID, uuid.New()})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(byID) != 1 || byID[0].ExternalID != ext || byID[0].Rating == nil || *byID[0].Rating != rating {
		t.Fatalf("unexpected result %+v", byID)
	}

	byExt, err := repo.GetByExternalIDs(dbc, []string{ext, "missing"})
	if err != nil {
		t.Fatalf("GetByExternalIDs: %v", err)
	}
	if len(byExt) != 1 || byExt[0].ID != r.ID {
		t.Fatalf("unexpected result %+v", byExt)
	}

	empty, err := repo.GetByIDs(dbc, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty ids: got %v err=%v", empty, err)
	}
}

func TestRestaurantCacheRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewRestaurantCacheRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	now := time.Now().UTC()
	fresh := "fresh-" + uuid.NewString()
	stale := "stale-" + uuid.NewString()
	testutil.SeedCacheEntry(t, ctx, tx, fresh, []float32{1, 0}, now.Add(-6*24*time.Hour))
	testutil.SeedCacheEntry(t, ctx, tx, stale, nil, now.Add(-8*24*time.Hour))

	got, err := repo.GetByExternalIDs(dbc, []string{fresh, stale})
	if err != nil {
		t.Fatalf("GetByExternalIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	for _, e := range got {
		if e.ExternalID == fresh && len(e.SummaryVector()) != 2 {
			t.Fatalf("summary embedding not round-tripped: %+v", e)
		}
	}

	staleRows, err := repo.ListStale(dbc, now, 0)
	if err != nil {
		t.Fatalf("ListStale: %v", err)
	}
	seenStale := false
	for _, e := range staleRows {
		if e.ExternalID == fresh {
			t.Fatalf("fresh entry listed as stale")
		}
		if e.ExternalID == stale {
			seenStale = true
		}
	}
	if !seenStale {
		t.Fatalf("stale entry not listed")
	}
}
