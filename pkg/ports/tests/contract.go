package tests

import (
	"context"
	"testing"

	"github.com/formworks/bindery/pkg/domain"
	"github.com/formworks/bindery/pkg/ports"
)

// RunKVStoreContract verifies that a KVStore adapter complies with the
// ports.KVStore semantics. Adapters call it from their own tests.
func RunKVStoreContract(t *testing.T, store ports.KVStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get_Missing", func(t *testing.T) {
		_, err := store.Get(ctx, "never-set")
		if err != domain.ErrKeyNotFound {
			t.Fatalf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("Set_Get_Roundtrip", func(t *testing.T) {
		if err := store.Set(ctx, "greeting", []byte(`"hello"`)); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		val, err := store.Get(ctx, "greeting")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if string(val) != `"hello"` {
			t.Errorf("value mismatch: got %q", val)
		}
	})

	t.Run("Set_Overwrites", func(t *testing.T) {
		if err := store.Set(ctx, "counter", []byte("1")); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		if err := store.Set(ctx, "counter", []byte("2")); err != nil {
			t.Fatalf("second set failed: %v", err)
		}
		val, err := store.Get(ctx, "counter")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if string(val) != "2" {
			t.Errorf("expected overwritten value, got %q", val)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Set(ctx, "doomed", []byte("x")); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		if err := store.Delete(ctx, "doomed"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := store.Get(ctx, "doomed"); err != domain.ErrKeyNotFound {
			t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
		}
	})

	t.Run("Delete_Missing_IsNoop", func(t *testing.T) {
		if err := store.Delete(ctx, "ghost"); err != nil {
			t.Errorf("deleting a missing key should not error, got %v", err)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		if err := store.Set(ctx, "a", []byte("1")); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		if err := store.Set(ctx, "b", []byte("2")); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("clear failed: %v", err)
		}
		if _, err := store.Get(ctx, "a"); err != domain.ErrKeyNotFound {
			t.Errorf("expected ErrKeyNotFound after clear, got %v", err)
		}
		if _, err := store.Get(ctx, "b"); err != domain.ErrKeyNotFound {
			t.Errorf("expected ErrKeyNotFound after clear, got %v", err)
		}
	})
}
