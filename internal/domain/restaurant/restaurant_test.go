package restaurant

import (
	"testing"
	"time"
)

func TestCacheEntryIsStale(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{name: "fresh", age: time.Hour, want: false},
		{name: "just_under", age: StaleAfter - time.Second, want: false},
		{name: "exactly_seven_days", age: StaleAfter, want: true},
		{name: "old", age: 30 * 24 * time.Hour, want: true},
	}
	for _, tc := range cases {
		e := &CacheEntry{ExternalID: "x", UpdatedAt: now.Add(-tc.age)}
		if got := e.IsStale(now); got != tc.want {
			t.Fatalf("%s: IsStale=%v, want %v", tc.name, got, tc.want)
		}
	}
}
