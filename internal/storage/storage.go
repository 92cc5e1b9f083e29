// Package storage defines the ordered key/value layer the CLI persists its
// request history in. Backends keep entries sorted by their encoded key and
// hand them out a page at a time.
package storage

import (
	"context"
	"iter"
)

// DefaultPageSize is used by List when no page size is given.
const DefaultPageSize = 25

// Entry is a single key/value pair held by a Backend.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Backend is an ordered key/value store.
//
// List returns up to pageSize entries (DefaultPageSize when nil) in ascending
// key order, starting at pageToken when it is set. The returned token is the
// key the following page starts at, or nil once the last page was read.
type Backend[K, V any] interface {
	Get(ctx context.Context, key K) (value V, found bool, err error)
	Set(ctx context.Context, key K, value V) error
	Delete(ctx context.Context, key K) error
	List(ctx context.Context, pageSize *int, pageToken *K) (entries iter.Seq2[K, V], nextPageToken *K, err error)
	Flush(ctx context.Context) error
	Close(ctx context.Context) error
}

// PageSize returns a page size argument for List.
func PageSize(n int) *int {
	return &n
}

// PageToken returns a page token argument for List.
func PageToken[K any](key K) *K {
	return &key
}

// Limit resolves the page size argument of List.
func Limit(pageSize *int) int {
	if pageSize == nil || *pageSize <= 0 {
		return DefaultPageSize
	}
	return *pageSize
}

// Seq yields the given entries in order.
func Seq[K, V any](entries []Entry[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, entry := range entries {
			if !yield(entry.Key, entry.Value) {
				return
			}
		}
	}
}
