package rate

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	redrepo "github.com/Dijinx-Lab/Eventify-Server/internal/repo/redis"
)

func newLimiter(t *testing.T, perMinute, per10Sec int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewLimiter(redrepo.NewRateRepo(client), perMinute, per10Sec), mr
}

func TestAllowEngagementWithinLimit(t *testing.T) {
	limiter, _ := newLimiter(t, 5, 5)
	actor := uuid.New()

	for i := 0; i < 5; i++ {
		retryAfter, allowed, err := limiter.AllowEngagement(context.Background(), actor)
		if err != nil {
			t.Fatalf("unexpected error on attempt %d: %v", i, err)
		}
		if !allowed {
			t.Fatalf("attempt %d should be allowed, retry after %d", i, retryAfter)
		}
	}
}

func TestAllowEngagementBlocksOverLimit(t *testing.T) {
	limiter, _ := newLimiter(t, 10, 2)
	actor := uuid.New()

	for i := 0; i < 2; i++ {
		if _, allowed, err := limiter.AllowEngagement(context.Background(), actor); err != nil || !allowed {
			t.Fatalf("warm-up attempt %d failed: allowed=%v err=%v", i, allowed, err)
		}
	}

	retryAfter, allowed, err := limiter.AllowEngagement(context.Background(), actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatal("third attempt within 10s window should be blocked")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected positive retry-after, got %d", retryAfter)
	}
}

func TestAllowEngagementRecoversAfterWindow(t *testing.T) {
	limiter, mr := newLimiter(t, 10, 1)
	actor := uuid.New()

	if _, allowed, err := limiter.AllowEngagement(context.Background(), actor); err != nil || !allowed {
		t.Fatalf("first attempt failed: allowed=%v err=%v", allowed, err)
	}
	if _, allowed, _ := limiter.AllowEngagement(context.Background(), actor); allowed {
		t.Fatal("second attempt should be blocked")
	}

	mr.FastForward(11 * 1e9)

	if _, allowed, err := limiter.AllowEngagement(context.Background(), actor); err != nil || !allowed {
		t.Fatalf("attempt after window expiry failed: allowed=%v err=%v", allowed, err)
	}
}

func TestAllowEngagementRejectsNilActor(t *testing.T) {
	limiter, _ := newLimiter(t, 1, 1)
	if _, _, err := limiter.AllowEngagement(context.Background(), uuid.Nil); err == nil {
		t.Fatal("expected error for nil actor id")
	}
}
