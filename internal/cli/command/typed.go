package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/yndnr/diskemb-go/internal/codec"
	"github.com/yndnr/diskemb-go/internal/core/domain"
	"github.com/yndnr/diskemb-go/internal/storage"
	"github.com/yndnr/diskemb-go/internal/table"
)

// typedTable is the string-in, string-out view of a table that the CLI
// commands work against. The concrete key and value types live behind it.
type typedTable interface {
	Admin() *table.Admin

	// Find returns one row of formatted elements per key.
	Find(ctx context.Context, keys []string, def []string) ([][]string, error)
	Insert(ctx context.Context, key string, values []string) error
	Remove(ctx context.Context, keys []string) error
	Keys(ctx context.Context) ([]string, error)

	// ZeroDefault returns a zero-valued default vector of the table's
	// dimension.
	ZeroDefault() []string
}

// newTyped builds a typedTable for the named key/value types.
// Keys: int32, int64, string. Values: int64, float32, float64, string.
func newTyped(store storage.KV, cfg table.Config, keyType, valueType string) (typedTable, error) {
	switch keyType {
	case "int32":
		return newTypedFor(store, cfg, keyFuncs[int32]{parseInt32, formatInt32}, valueType)
	case "int64", "":
		return newTypedFor(store, cfg, keyFuncs[int64]{parseInt64, formatInt64}, valueType)
	case "string":
		return newTypedFor(store, cfg, keyFuncs[string]{parseString, formatString}, valueType)
	default:
		return nil, domain.ErrInvalidArgument.WithDetails(
			fmt.Sprintf("unsupported key type %q", keyType))
	}
}

func newTypedFor[K codec.Key](store storage.KV, cfg table.Config, keys keyFuncs[K], valueType string) (typedTable, error) {
	switch valueType {
	case "int64":
		return build(store, cfg, keys, parseInt64, formatInt64)
	case "float32", "":
		return build(store, cfg, keys, parseFloat32, formatFloat32)
	case "float64":
		return build(store, cfg, keys, parseFloat64, formatFloat64)
	case "string":
		return build(store, cfg, keys, parseString, formatString)
	default:
		return nil, domain.ErrInvalidArgument.WithDetails(
			fmt.Sprintf("unsupported value type %q", valueType))
	}
}

// keyFuncs bundles parsing and display of one key type.
type keyFuncs[K codec.Key] struct {
	parse  func(string) (K, error)
	format func(K) string
}

func build[K codec.Key, V codec.Element](store storage.KV, cfg table.Config, keys keyFuncs[K], parseVal func(string) (V, error), formatVal func(V) string) (typedTable, error) {
	tbl, err := table.New[K, V](store, cfg)
	if err != nil {
		return nil, err
	}
	return &typed[K, V]{
		tbl:       tbl,
		keys:      keys,
		parseVal:  parseVal,
		formatVal: formatVal,
	}, nil
}

type typed[K codec.Key, V codec.Element] struct {
	tbl       *table.Table[K, V]
	keys      keyFuncs[K]
	parseVal  func(string) (V, error)
	formatVal func(V) string
}

func (t *typed[K, V]) Admin() *table.Admin { return t.tbl.Admin }

func (t *typed[K, V]) Find(ctx context.Context, keys []string, def []string) ([][]string, error) {
	ks, err := t.parseKeys(keys)
	if err != nil {
		return nil, err
	}
	dv := make([]V, len(def))
	for i, s := range def {
		v, err := t.parseVal(s)
		if err != nil {
			return nil, domain.ErrInvalidArgument.WithDetails(
				fmt.Sprintf("default element %q", s)).WithCause(err)
		}
		dv[i] = v
	}

	vals, err := t.tbl.Find(ctx, ks, dv)
	if err != nil {
		return nil, err
	}

	dim := t.tbl.Dim()
	rows := make([][]string, len(ks))
	for i := range ks {
		row := make([]string, dim)
		for j, v := range vals[i*dim : (i+1)*dim] {
			row[j] = t.formatVal(v)
		}
		rows[i] = row
	}
	return rows, nil
}

func (t *typed[K, V]) Keys(ctx context.Context) ([]string, error) {
	ks, err := t.tbl.Keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = t.keys.format(k)
	}
	return out, nil
}

func (t *typed[K, V]) Insert(ctx context.Context, key string, values []string) error {
	k, err := t.keys.parse(key)
	if err != nil {
		return domain.ErrInvalidArgument.WithDetails(
			fmt.Sprintf("key %q", key)).WithCause(err)
	}
	vs := make([]V, len(values))
	for i, s := range values {
		v, err := t.parseVal(s)
		if err != nil {
			return domain.ErrInvalidArgument.WithDetails(
				fmt.Sprintf("value element %q", s)).WithCause(err)
		}
		vs[i] = v
	}
	return t.tbl.Insert(ctx, []K{k}, vs)
}

func (t *typed[K, V]) Remove(ctx context.Context, keys []string) error {
	ks, err := t.parseKeys(keys)
	if err != nil {
		return err
	}
	return t.tbl.Remove(ctx, ks)
}

func (t *typed[K, V]) ZeroDefault() []string {
	var zero V
	def := make([]string, t.tbl.Dim())
	for i := range def {
		def[i] = t.formatVal(zero)
	}
	return def
}

func (t *typed[K, V]) parseKeys(keys []string) ([]K, error) {
	ks := make([]K, len(keys))
	for i, s := range keys {
		k, err := t.keys.parse(s)
		if err != nil {
			return nil, domain.ErrInvalidArgument.WithDetails(
				fmt.Sprintf("key %q", s)).WithCause(err)
		}
		ks[i] = k
	}
	return ks, nil
}

func parseInt32(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	return int32(n), err
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func parseFloat32(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	return float32(f), err
}

func parseFloat64(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func parseString(s string) (string, error) { return s, nil }

func formatInt32(v int32) string { return strconv.FormatInt(int64(v), 10) }

func formatInt64(v int64) string { return strconv.FormatInt(v, 10) }

func formatFloat32(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func formatFloat64(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatString(v string) string { return v }
