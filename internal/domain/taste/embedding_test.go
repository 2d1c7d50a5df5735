package taste

import (
	"testing"
	"time"
)

func TestBestEmbeddingPriority(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name  string
		slots []EmbeddingSource
		want  EmbeddingSource
		ok    bool
	}{
		{name: "empty", ok: false},
		{name: "chat_only_is_not_a_lookup_source", slots: []EmbeddingSource{SourceChat}, ok: false},
		{name: "reviews_only", slots: []EmbeddingSource{SourceReviews}, want: SourceReviews, ok: true},
		{name: "onboarding_beats_reviews", slots: []EmbeddingSource{SourceReviews, SourceOnboarding}, want: SourceOnboarding, ok: true},
		{name: "combined_beats_all", slots: []EmbeddingSource{SourceReviews, SourceOnboarding, SourceCombined}, want: SourceCombined, ok: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &TasteProfile{}
			for i, s := range tc.slots {
				p.SetSlot(s, []float32{float32(i + 1), 1}, string(s), now)
			}
			vec, src, ok := BestEmbedding(p)
			if ok != tc.ok {
				t.Fatalf("ok=%v, want %v", ok, tc.ok)
			}
			if !ok {
				return
			}
			if src != tc.want {
				t.Fatalf("source=%s, want %s", src, tc.want)
			}
			stored, _, _ := p.Slot(tc.want)
			if len(vec) != len(stored) || vec[0] != stored[0] {
				t.Fatalf("vector=%v, want the %s slot %v", vec, tc.want, stored)
			}
		})
	}
}

func TestSignalKindEmbeddingSource(t *testing.T) {
	for _, k := range []SignalKind{SignalReview, SignalWishlist, SignalChat, SignalOnboarding} {
		src, ok := k.EmbeddingSource()
		if !ok || !src.Valid() {
			t.Fatalf("kind %s has no embedding source", k)
		}
	}
	if _, ok := SignalKind("like").EmbeddingSource(); ok {
		t.Fatal("unknown kind should not map to a source")
	}
	if _, err := ParseSignalKind(" Review "); err != nil {
		t.Fatalf("ParseSignalKind: %v", err)
	}
	if _, err := ParseSignalKind("like"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
