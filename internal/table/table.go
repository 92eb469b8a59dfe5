package table

import (
	"context"
	"errors"
	"fmt"

	"github.com/yndnr/diskemb-go/internal/codec"
	"github.com/yndnr/diskemb-go/internal/core/domain"
	"github.com/yndnr/diskemb-go/internal/storage"
)

// Table is a typed embedding table mapping keys of type K to value
// vectors of element type V with a fixed dimension.
type Table[K codec.Key, V codec.Element] struct {
	*Admin

	keyCodec codec.KeyCodec[K]
	valCodec codec.ValueCodec[V]
}

// New creates a typed table over store. The codecs for K and V are
// selected once here.
func New[K codec.Key, V codec.Element](store storage.KV, cfg Config) (*Table[K, V], error) {
	admin, err := NewAdmin(store, cfg)
	if err != nil {
		return nil, err
	}
	return &Table[K, V]{
		Admin:    admin,
		keyCodec: codec.ForKey[K](),
		valCodec: codec.For[V](),
	}, nil
}

// KeyType returns the table's key element type.
func (t *Table[K, V]) KeyType() codec.ElementType { return t.keyCodec.Type() }

// ValueType returns the table's value element type.
func (t *Table[K, V]) ValueType() codec.ElementType { return t.valCodec.Type() }

// Find looks up the value vectors for keys. Absent keys are filled from
// defaultValue, tiled by slot index, so the result always holds
// len(keys)*Dim() elements. defaultValue must be a non-empty multiple of
// the table dimension.
func (t *Table[K, V]) Find(ctx context.Context, keys []K, defaultValue []V) ([]V, error) {
	dim := t.dim
	if len(defaultValue) == 0 || len(defaultValue)%dim != 0 {
		return nil, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf(
			"default value length %d is not a positive multiple of dimension %d",
			len(defaultValue), dim))
	}
	if len(keys) == 0 {
		return []V{}, nil
	}

	ns, err := t.resolve(false)
	if err != nil {
		return nil, err
	}

	rawKeys := make([][]byte, len(keys))
	for i, k := range keys {
		rawKeys[i] = t.keyCodec.Encode(k)
	}

	// Fetch the encoded records; nil marks a miss.
	encoded := make([][]byte, len(keys))
	if ns != nil {
		if err := t.fetch(ctx, ns, rawKeys, encoded); err != nil {
			return nil, err
		}
	}

	out := make([]V, 0, len(keys)*dim)
	var found, missed int
	for i, enc := range encoded {
		if enc == nil {
			// Tile the default by slot index. len(defaultValue) is a
			// multiple of dim, so the window never wraps.
			off := (i * dim) % len(defaultValue)
			out = append(out, defaultValue[off:off+dim]...)
			missed++
			continue
		}
		vals, err := t.valCodec.Decode(enc, dim)
		if err != nil {
			return nil, err
		}
		out = append(out, vals...)
		found++
	}

	t.metrics.ObserveFind(t.name, found, missed)
	return out, nil
}

// fetch fills encoded with the stored record bytes for rawKeys, using the
// point path below the batch threshold and one multi-get above it.
func (t *Table[K, V]) fetch(ctx context.Context, ns *storage.Namespace, rawKeys, encoded [][]byte) error {
	// Serve what the cache has; remember what still needs the store.
	pending := make([]int, 0, len(rawKeys))
	for i, rk := range rawKeys {
		if enc, ok := t.cacheGet(rk); ok {
			encoded[i] = enc
		} else {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	if len(pending) < batchThreshold {
		for _, i := range pending {
			enc, err := t.store.Get(ctx, ns, rawKeys[i])
			if err != nil {
				if errors.Is(err, storage.ErrKeyNotFound) {
					continue
				}
				return domain.ErrStore.WithCause(err)
			}
			encoded[i] = enc
			t.cachePut(rawKeys[i], enc)
		}
		return nil
	}

	lookup := make([][]byte, len(pending))
	for j, i := range pending {
		lookup[j] = rawKeys[i]
	}
	results, err := t.store.MultiGet(ctx, ns, lookup)
	if err != nil {
		return domain.ErrStore.WithCause(err)
	}
	for j, i := range pending {
		if results[j] == nil {
			continue
		}
		encoded[i] = results[j]
		t.cachePut(rawKeys[i], results[j])
	}
	return nil
}

// Insert stores the value vectors for keys, creating the backing
// namespace if needed. values must hold exactly len(keys)*Dim() elements.
func (t *Table[K, V]) Insert(ctx context.Context, keys []K, values []V) error {
	if t.ro {
		return domain.ErrPermissionDenied.WithDetails(t.name)
	}
	dim := t.dim
	if len(values) != len(keys)*dim {
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf(
			"%d values for %d keys of dimension %d", len(values), len(keys), dim))
	}
	if len(keys) == 0 {
		return nil
	}

	ns, err := t.resolve(true)
	if err != nil {
		return err
	}

	rawKeys := make([][]byte, len(keys))
	encoded := make([][]byte, len(keys))
	for i, k := range keys {
		rawKeys[i] = t.keyCodec.Encode(k)
		enc, err := t.valCodec.Append(nil, values[i*dim:(i+1)*dim])
		if err != nil {
			return err
		}
		encoded[i] = enc
	}

	if len(keys) < batchThreshold {
		for i := range keys {
			if err := t.store.Set(ctx, ns, rawKeys[i], encoded[i]); err != nil {
				return domain.ErrStore.WithCause(err)
			}
		}
	} else {
		batch := t.store.Batch()
		for i := range keys {
			if err := batch.Put(ns, rawKeys[i], encoded[i]); err != nil {
				batch.Cancel()
				return domain.ErrStore.WithCause(err)
			}
		}
		if err := batch.Flush(); err != nil {
			return domain.ErrStore.WithCause(err)
		}
		t.metrics.ObserveBatchCommit(t.name)
	}

	for i := range keys {
		t.cachePut(rawKeys[i], encoded[i])
	}
	t.metrics.ObserveInsert(t.name)
	return nil
}

// Remove deletes the records for keys. Absent keys, and an absent table,
// are not errors.
func (t *Table[K, V]) Remove(ctx context.Context, keys []K) error {
	if t.ro {
		return domain.ErrPermissionDenied.WithDetails(t.name)
	}
	if len(keys) == 0 {
		return nil
	}

	ns, err := t.resolve(false)
	if err != nil {
		return err
	}

	rawKeys := make([][]byte, len(keys))
	for i, k := range keys {
		rawKeys[i] = t.keyCodec.Encode(k)
		t.cacheDrop(rawKeys[i])
	}

	if ns == nil {
		return nil
	}

	if len(keys) < batchThreshold {
		for _, rk := range rawKeys {
			if err := t.store.Delete(ctx, ns, rk); err != nil {
				return domain.ErrStore.WithCause(err)
			}
		}
	} else {
		batch := t.store.Batch()
		for _, rk := range rawKeys {
			if err := batch.Delete(ns, rk); err != nil {
				batch.Cancel()
				return domain.ErrStore.WithCause(err)
			}
		}
		if err := batch.Flush(); err != nil {
			return domain.ErrStore.WithCause(err)
		}
		t.metrics.ObserveBatchCommit(t.name)
	}

	t.metrics.ObserveRemove(t.name)
	return nil
}

// Keys returns every key of the table in stored-byte order.
func (t *Table[K, V]) Keys(ctx context.Context) ([]K, error) {
	ns, err := t.resolve(false)
	if err != nil {
		return nil, err
	}
	if ns == nil {
		return []K{}, nil
	}

	var out []K
	var decErr error
	err = t.store.Scan(ctx, ns, func(key, _ []byte) bool {
		k, err := t.keyCodec.Decode(key)
		if err != nil {
			decErr = err
			return false
		}
		out = append(out, k)
		return true
	})
	if err != nil {
		return nil, domain.ErrStore.WithCause(err)
	}
	if decErr != nil {
		return nil, decErr
	}
	return out, nil
}
