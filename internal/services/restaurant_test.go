package services

import (
	"context"
	"testing"
	"time"

	types "github.com/daniel-davidyan/pachu-app-sub003/internal/domain"
)

func TestListStaleClampsLimit(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{in: 0, want: DefaultStaleLimit},
		{in: -5, want: DefaultStaleLimit},
		{in: 20, want: 20},
		{in: 5000, want: MaxStaleLimit},
	}
	for _, tc := range cases {
		cache := &fakeCache{stale: []*types.RestaurantCacheEntry{
			{ExternalID: "ext-old", Name: "Old Place", UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		}}
		svc := NewRestaurantService(testLogger(t), cache)
		got, err := svc.ListStale(context.Background(), tc.in)
		if err != nil {
			t.Fatalf("ListStale(%d): %v", tc.in, err)
		}
		if cache.limit != tc.want {
			t.Fatalf("ListStale(%d) limit=%d, want %d", tc.in, cache.limit, tc.want)
		}
		if len(got) != 1 || got[0].ExternalID != "ext-old" {
			t.Fatalf("ListStale(%d)=%+v", tc.in, got)
		}
	}
}
