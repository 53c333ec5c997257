package timeline

import "github.com/AnatoleLucet/timeline/internal"

// MemoTable is a typed memoization table (spec §4.G / §6
// memo(size?, hash?, eq?) -> (f, k) -> value): inside a reader, a call with
// a previously-seen key re-splices the cached timestamp range instead of
// recomputing; outside a reader it is a plain call-through.
type MemoTable[K, V any] struct {
	table *internal.MemoTable
}

// MemoOption configures a MemoTable.
type MemoOption[K any] func(*memoConfig[K])

type memoConfig[K any] struct {
	size int
	hash func(K) uint64
	eq   func(a, b K) bool
}

// WithSize pre-sizes the table's bucket map.
func WithSize[K any](size int) MemoOption[K] {
	return func(c *memoConfig[K]) { c.size = size }
}

// WithHash installs a custom key hash, overriding the default xxhash-over-
// %#v hasher.
func WithHash[K any](hash func(K) uint64) MemoOption[K] {
	return func(c *memoConfig[K]) { c.hash = hash }
}

// WithKeyEqual installs a custom key equality, overriding structural
// equality.
func WithKeyEqual[K any](eq func(a, b K) bool) MemoOption[K] {
	return func(c *memoConfig[K]) { c.eq = eq }
}

// NewMemo builds a memo table for functions keyed by K and returning V.
func NewMemo[K, V any](opts ...MemoOption[K]) *MemoTable[K, V] {
	cfg := &memoConfig[K]{}
	for _, o := range opts {
		o(cfg)
	}

	var hash func(any) uint64
	if cfg.hash != nil {
		hash = func(k any) uint64 { return cfg.hash(as[K](k)) }
	}
	var eq internal.EqualFunc
	if cfg.eq != nil {
		eq = func(a, b any) bool { return cfg.eq(as[K](a), as[K](b)) }
	}

	return &MemoTable[K, V]{table: internal.NewMemoTable(engine, cfg.size, hash, eq)}
}

// Call memoizes f(k) (spec §4.G memo_call): a panic from f is recorded as
// this call's failure and re-raised here, the same way it would be had f
// panicked with no memoization involved.
func (m *MemoTable[K, V]) Call(f func(K) V, k K) V {
	v := m.table.Call(func(k any) any { return f(as[K](k)) }, k)
	return as[V](v)
}
