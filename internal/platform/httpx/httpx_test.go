package httpx

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: true},
		{name: "429", err: &StatusError{Service: "catalog", StatusCode: 429}, want: true},
		{name: "503", err: &StatusError{Service: "catalog", StatusCode: 503}, want: true},
		{name: "404", err: &StatusError{Service: "catalog", StatusCode: 404}, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryableError(tc.err); got != tc.want {
				t.Fatalf("IsRetryableError(%v)=%v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
