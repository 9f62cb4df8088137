package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"invoizo/internal/store"
)

func TestCachedStore_NilClientPassesThrough(t *testing.T) {
	ctx := context.Background()
	inner := store.NewMemoryStore()
	c := store.NewCachedStore(inner, nil, "ns", time.Minute)

	if err := store.Save(ctx, c, store.KeyBusiness, record{ID: "b1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	var got record
	if err := store.Load(ctx, inner, store.KeyBusiness, &got); err != nil || got.ID != "b1" {
		t.Fatalf("write did not reach inner store: %+v err=%v", got, err)
	}
}

func TestCachedStore_InvalidatesOnUpdate(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping redis test")
	}
	ctx := context.Background()
	client, err := store.NewRedisClient(ctx, addr, os.Getenv("TEST_REDIS_PASSWORD"), 0)
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	defer client.Close()

	ns := "test-" + uuid.NewString()
	inner := store.NewMemoryStore()
	c := store.NewCachedStore(inner, client, ns, time.Minute)

	if err := store.Save(ctx, inner, store.KeyProducts, []record{{ID: "001"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var first []record
	if err := store.Load(ctx, c, store.KeyProducts, &first); err != nil || len(first) != 1 {
		t.Fatalf("first read: %+v err=%v", first, err)
	}

	err = c.Update(ctx, func(tx store.Tx) error {
		return store.Save(ctx, tx, store.KeyProducts, []record{{ID: "001"}, {ID: "002"}})
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	var second []record
	if err := store.Load(ctx, c, store.KeyProducts, &second); err != nil {
		t.Fatalf("second read: %v", err)
	}
	if len(second) != 2 {
		t.Errorf("stale cache after update: %+v", second)
	}
}

// slowReader returns what inner held when the read started, after running
// during on the way out.
type slowReader struct {
	store.Store
	during func()
}

func (r *slowReader) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := r.Store.Get(ctx, key)
	if r.during != nil {
		during := r.during
		r.during = nil
		during()
	}
	return data, ok, err
}

func TestCachedStore_FillDroppedWhenWriteLandsDuringRead(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping redis test")
	}
	ctx := context.Background()
	client, err := store.NewRedisClient(ctx, addr, os.Getenv("TEST_REDIS_PASSWORD"), 0)
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	defer client.Close()

	mem := store.NewMemoryStore()
	if err := store.Save(ctx, mem, store.KeyProducts, []record{{ID: "001"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	inner := &slowReader{Store: mem}
	c := store.NewCachedStore(inner, client, "test-"+uuid.NewString(), time.Minute)

	inner.during = func() {
		err := c.Update(ctx, func(tx store.Tx) error {
			return store.Save(ctx, tx, store.KeyProducts, []record{{ID: "001"}, {ID: "002"}})
		})
		if err != nil {
			t.Errorf("Update: %v", err)
		}
	}

	var stale []record
	if err := store.Load(ctx, c, store.KeyProducts, &stale); err != nil {
		t.Fatalf("first read: %v", err)
	}
	if len(stale) != 1 {
		t.Fatalf("first read should see the value it started with, got %+v", stale)
	}

	var fresh []record
	if err := store.Load(ctx, c, store.KeyProducts, &fresh); err != nil {
		t.Fatalf("second read: %v", err)
	}
	if len(fresh) != 2 {
		t.Errorf("stale value was cached: %+v", fresh)
	}
}

func TestRedisLocker_Exclusive(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping redis test")
	}
	ctx := context.Background()
	client, err := store.NewRedisClient(ctx, addr, os.Getenv("TEST_REDIS_PASSWORD"), 0)
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	defer client.Close()

	locker := store.NewRedisLocker(client, "test-"+uuid.NewString())

	release, ok, err := locker.TryLock(ctx, "poll", 5*time.Second)
	if err != nil || !ok {
		t.Fatalf("first TryLock: ok=%v err=%v", ok, err)
	}
	if _, ok, err := locker.TryLock(ctx, "poll", 5*time.Second); err != nil || ok {
		t.Fatalf("second TryLock should not obtain: ok=%v err=%v", ok, err)
	}
	if err := release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	release2, ok, err := locker.TryLock(ctx, "poll", 5*time.Second)
	if err != nil || !ok {
		t.Fatalf("TryLock after release: ok=%v err=%v", ok, err)
	}
	_ = release2(ctx)
}

func TestNewRedisLocker_NilClient(t *testing.T) {
	if store.NewRedisLocker(nil, "ns") != nil {
		t.Error("expected nil locker for nil client")
	}
}
