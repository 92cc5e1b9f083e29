// Package memory keeps entries in a map, for tests and for running the CLI
// without a history directory.
package memory

import (
	"cmp"
	"context"
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/picatz/chatgpt/internal/storage"
)

var _ storage.Backend[string, string] = (*Backend[string, string])(nil)

// Backend is a storage.Backend held in memory. It is safe for concurrent use.
type Backend[K cmp.Ordered, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// NewBackend returns an empty in-memory backend.
func NewBackend[K cmp.Ordered, V any]() *Backend[K, V] {
	return &Backend[K, V]{entries: make(map[K]V)}
}

// Get returns the value stored under key, and false if there is none.
func (b *Backend[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	value, ok := b.entries[key]
	return value, ok, nil
}

// Set stores value under key.
func (b *Backend[K, V]) Set(ctx context.Context, key K, value V) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[key] = value
	return nil
}

// Delete removes key.
func (b *Backend[K, V]) Delete(ctx context.Context, key K) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.entries, key)
	return nil
}

// List returns the page of entries starting at pageToken, in key order.
func (b *Backend[K, V]) List(ctx context.Context, pageSize *int, pageToken *K) (iter.Seq2[K, V], *K, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := slices.Sorted(maps.Keys(b.entries))

	if pageToken != nil {
		start, _ := slices.BinarySearch(keys, *pageToken)
		keys = keys[start:]
	}

	var next *K
	if limit := storage.Limit(pageSize); len(keys) > limit {
		next = &keys[limit]
		keys = keys[:limit]
	}

	entries := make([]storage.Entry[K, V], 0, len(keys))
	for _, key := range keys {
		entries = append(entries, storage.Entry[K, V]{Key: key, Value: b.entries[key]})
	}

	return storage.Seq(entries), next, nil
}

// Flush is a no-op.
func (b *Backend[K, V]) Flush(context.Context) error {
	return nil
}

// Close is a no-op.
func (b *Backend[K, V]) Close(context.Context) error {
	return nil
}
