package claims

import (
	"context"
	"errors"
	"pdp-route-service/internal/ports"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
)

func registries(t *testing.T) map[string]ports.ClaimRegistry {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return map[string]ports.ClaimRegistry{
		"memory": NewMemoryRegistry(),
		"redis":  NewRedisRegistry(rdb, "test:", 0),
	}
}

func TestRegistryExclusivity(t *testing.T) {
	ctx := context.Background()

	for name, reg := range registries(t) {
		t.Run(name, func(t *testing.T) {
			if err := reg.Acquire(ctx, "p1", "a"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := reg.Acquire(ctx, "p1", "a"); err != nil {
				t.Fatalf("re-acquire by owner: %v", err)
			}
			if err := reg.Acquire(ctx, "p1", "b"); !errors.Is(err, ports.ErrClaimTaken) {
				t.Fatalf("err = %v, want ErrClaimTaken", err)
			}

			owner, err := reg.Owner(ctx, "p1")
			if err != nil || owner != "a" {
				t.Fatalf("owner = %q, %v; want a", owner, err)
			}

			if err := reg.Release(ctx, "p1", "b"); !errors.Is(err, ports.ErrClaimTaken) {
				t.Fatalf("release by non-owner: err = %v, want ErrClaimTaken", err)
			}
			if err := reg.Release(ctx, "p1", "a"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := reg.Release(ctx, "p1", "a"); err != nil {
				t.Fatalf("releasing a free parcel: %v", err)
			}

			owner, err = reg.Owner(ctx, "p1")
			if err != nil || owner != "" {
				t.Fatalf("owner after release = %q, %v; want none", owner, err)
			}
			if err := reg.Acquire(ctx, "p1", "b"); err != nil {
				t.Fatalf("acquire after release: %v", err)
			}
		})
	}
}

func TestRegistrySingleWinner(t *testing.T) {
	ctx := context.Background()

	for name, reg := range registries(t) {
		t.Run(name, func(t *testing.T) {
			owners := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				wins []string
			)
			for _, o := range owners {
				wg.Add(1)
				go func(owner string) {
					defer wg.Done()
					if err := reg.Acquire(ctx, "contested", owner); err == nil {
						mu.Lock()
						wins = append(wins, owner)
						mu.Unlock()
					}
				}(o)
			}
			wg.Wait()

			if len(wins) != 1 {
				t.Fatalf("winners = %v, want exactly one", wins)
			}
			owner, _ := reg.Owner(ctx, "contested")
			if owner != wins[0] {
				t.Fatalf("owner = %q, want %q", owner, wins[0])
			}
		})
	}
}

func TestRedisRegistryExpiry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	reg := NewRedisRegistry(rdb, "test:", time.Minute)
	if err := reg.Acquire(ctx, "p1", "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if err := reg.Acquire(ctx, "p1", "b"); err != nil {
		t.Fatalf("acquire after expiry: %v", err)
	}
	if !mr.Exists("test:claim:p1") {
		t.Fatalf("expected key test:claim:p1")
	}
	if err := reg.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
