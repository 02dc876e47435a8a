package middleware

import (
	"context"
	"testing"
)

func TestTokenBucketExhausts(t *testing.T) {
	tb := NewTokenBucket(2, 1)
	ctx := context.Background()

	if !tb.Allow(ctx) {
		t.Fatalf("expected first request allowed")
	}
	if !tb.Allow(ctx) {
		t.Fatalf("expected second request allowed")
	}
	if tb.Allow(ctx) {
		t.Fatalf("expected third request rejected")
	}
}
