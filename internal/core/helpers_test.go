package core_test

import (
	"context"
	"testing"

	"invoizo/internal/core"
	"invoizo/internal/store"
)

func seed[T any](t *testing.T, s store.Store, key string, v T) {
	t.Helper()
	if err := store.Save(context.Background(), s, key, v); err != nil {
		t.Fatalf("seed %s: %v", key, err)
	}
}

func load[T any](t *testing.T, s store.Store, key string) T {
	t.Helper()
	var v T
	if err := store.Load(context.Background(), s, key, &v); err != nil {
		t.Fatalf("load %s: %v", key, err)
	}
	return v
}

func amt(s string) core.Amount { return core.ParseAmount(s) }

func assertAmount(t *testing.T, label string, got core.Amount, want string) {
	t.Helper()
	if !got.Equal(amt(want).Decimal) {
		t.Errorf("%s: want %s, got %s", label, want, got.String())
	}
}
