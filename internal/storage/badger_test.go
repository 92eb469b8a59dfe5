package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(DefaultConfig(t.TempDir()), slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_BasicOperations(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ns, err := store.CreateNamespace("emb")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("Set and Get", func(t *testing.T) {
		if err := store.Set(ctx, ns, []byte("k1"), []byte("v1")); err != nil {
			t.Fatal(err)
		}

		got, err := store.Get(ctx, ns, []byte("k1"))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "v1" {
			t.Errorf("expected v1, got %s", got)
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		_, err := store.Get(ctx, ns, []byte("missing"))
		if !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Set(ctx, ns, []byte("k2"), []byte("v2")); err != nil {
			t.Fatal(err)
		}
		if err := store.Delete(ctx, ns, []byte("k2")); err != nil {
			t.Fatal(err)
		}
		if _, err := store.Get(ctx, ns, []byte("k2")); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
		}
	})

	t.Run("MultiGet mixes hits and misses", func(t *testing.T) {
		if err := store.Set(ctx, ns, []byte("a"), []byte("va")); err != nil {
			t.Fatal(err)
		}
		vals, err := store.MultiGet(ctx, ns, [][]byte{[]byte("a"), []byte("nope")})
		if err != nil {
			t.Fatal(err)
		}
		if string(vals[0]) != "va" {
			t.Errorf("expected va, got %s", vals[0])
		}
		if vals[1] != nil {
			t.Errorf("expected nil for missing key, got %s", vals[1])
		}
	})
}

func TestStore_EmptyValueIsNotAMiss(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ns, err := store.CreateNamespace("emb")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, ns, []byte("k1"), nil); err != nil {
		t.Fatal(err)
	}

	t.Run("Get", func(t *testing.T) {
		got, err := store.Get(ctx, ns, []byte("k1"))
		if err != nil {
			t.Fatal(err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("Get = %#v, want non-nil empty slice", got)
		}
	})

	t.Run("MultiGet", func(t *testing.T) {
		got, err := store.MultiGet(ctx, ns, [][]byte{[]byte("k1"), []byte("absent")})
		if err != nil {
			t.Fatal(err)
		}
		if got[0] == nil || len(got[0]) != 0 {
			t.Errorf("MultiGet[0] = %#v, want non-nil empty slice", got[0])
		}
		if got[1] != nil {
			t.Errorf("MultiGet[1] = %#v, want nil for an absent key", got[1])
		}
	})
}

func TestStore_Namespaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	t.Run("lookup before create", func(t *testing.T) {
		_, ok, err := store.Namespace("absent")
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("namespace should not exist yet")
		}
	})

	nsA, err := store.CreateNamespace("table-a")
	if err != nil {
		t.Fatal(err)
	}
	nsB, err := store.CreateNamespace("table-b")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("create is idempotent", func(t *testing.T) {
		again, err := store.CreateNamespace("table-a")
		if err != nil {
			t.Fatal(err)
		}
		if again.id != nsA.id {
			t.Errorf("expected id %d, got %d", nsA.id, again.id)
		}
	})

	t.Run("list", func(t *testing.T) {
		names, err := store.ListNamespaces()
		if err != nil {
			t.Fatal(err)
		}
		if len(names) != 2 {
			t.Fatalf("expected 2 namespaces, got %v", names)
		}
	})

	t.Run("isolation", func(t *testing.T) {
		if err := store.Set(ctx, nsA, []byte("k"), []byte("from-a")); err != nil {
			t.Fatal(err)
		}
		if err := store.Set(ctx, nsB, []byte("k"), []byte("from-b")); err != nil {
			t.Fatal(err)
		}

		got, err := store.Get(ctx, nsA, []byte("k"))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "from-a" {
			t.Errorf("namespace a sees %s", got)
		}

		n, err := store.Count(ctx, nsB)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Errorf("namespace b has %d records, want 1", n)
		}
	})

	t.Run("drop", func(t *testing.T) {
		if err := store.DropNamespace(nsA); err != nil {
			t.Fatal(err)
		}
		if _, ok, _ := store.Namespace("table-a"); ok {
			t.Error("dropped namespace should not be listed")
		}
		// Data in the other namespace is untouched.
		if _, err := store.Get(ctx, nsB, []byte("k")); err != nil {
			t.Errorf("sibling namespace lost data: %v", err)
		}
		// Recreating gets a fresh, empty key space.
		nsA2, err := store.CreateNamespace("table-a")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := store.Get(ctx, nsA2, []byte("k")); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("recreated namespace should be empty, got %v", err)
		}
	})
}

func TestStore_ScanOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ns, err := store.CreateNamespace("ordered")
	if err != nil {
		t.Fatal(err)
	}

	// Insert out of order; Scan must ascend by raw key bytes.
	for _, k := range []string{"delta", "alpha", "charlie", "bravo"} {
		if err := store.Set(ctx, ns, []byte(k), []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	var keys []string
	err = store.Scan(ctx, ns, func(key, value []byte) bool {
		keys = append(keys, string(key))
		return true
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"alpha", "bravo", "charlie", "delta"}
	if len(keys) != len(want) {
		t.Fatalf("scanned %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("scanned %v, want %v", keys, want)
		}
	}
}

func TestStore_Batch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ns, err := store.CreateNamespace("batched")
	if err != nil {
		t.Fatal(err)
	}

	batch := store.Batch()
	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("key-%02d", i)
		if err := batch.Put(ns, []byte(key), []byte("v")); err != nil {
			t.Fatal(err)
		}
	}
	if batch.Count() != 10 {
		t.Fatalf("count = %d, want 10", batch.Count())
	}
	if err := batch.Flush(); err != nil {
		t.Fatal(err)
	}

	n, err := store.Count(ctx, ns)
	if err != nil {
		t.Fatal(err)
	}
	if n != 10 {
		t.Errorf("count = %d, want 10", n)
	}

	del := store.Batch()
	if err := del.Delete(ns, []byte("key-03")); err != nil {
		t.Fatal(err)
	}
	if err := del.Flush(); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, ns, []byte("key-03")); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after batched delete, got %v", err)
	}
}

func TestStore_ReadOnly(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	// Seed a store with one namespace and one record.
	store, err := Open(DefaultConfig(dir), slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	ns, err := store.CreateNamespace("frozen")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, ns, []byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig(dir)
	cfg.ReadOnly = true
	ro, err := Open(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer ro.Close()

	roNS, ok, err := ro.Namespace("frozen")
	if err != nil || !ok {
		t.Fatalf("namespace lookup failed: ok=%v err=%v", ok, err)
	}

	if got, err := ro.Get(ctx, roNS, []byte("k")); err != nil || string(got) != "v" {
		t.Fatalf("read-only get = %s, %v", got, err)
	}

	if _, err := ro.CreateNamespace("new"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("create namespace: expected ErrReadOnly, got %v", err)
	}
	if err := ro.Set(ctx, roNS, []byte("k"), []byte("w")); !errors.Is(err, ErrReadOnly) {
		t.Errorf("set: expected ErrReadOnly, got %v", err)
	}
	if err := ro.Delete(ctx, roNS, []byte("k")); !errors.Is(err, ErrReadOnly) {
		t.Errorf("delete: expected ErrReadOnly, got %v", err)
	}
	if err := ro.DropNamespace(roNS); !errors.Is(err, ErrReadOnly) {
		t.Errorf("drop: expected ErrReadOnly, got %v", err)
	}
}
