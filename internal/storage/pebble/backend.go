// Package pebble stores entries in a Pebble database, on disk or in memory.
package pebble

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/cockroachdb/pebble"
	"github.com/picatz/chatgpt/internal/storage"
)

var _ storage.Backend[string, any] = (*Backend[string, any])(nil)

// Backend is a storage.Backend on top of a Pebble database.
//
// The database lives in a directory on disk unless opts sets an in-memory
// filesystem such as vfs.NewMem().
type Backend[K, V any] struct {
	db    *pebble.DB
	codec storage.Codec[K, V]
}

// Open opens (creating if needed) the database in dirname.
func Open[K, V any](dirname string, opts *pebble.Options, codec storage.Codec[K, V]) (*Backend[K, V], error) {
	db, err := pebble.Open(dirname, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble database: %w", err)
	}

	return &Backend[K, V]{db: db, codec: codec}, nil
}

// Get returns the value stored under key, and false if there is none.
func (b *Backend[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V

	k, err := b.codec.EncodeKey(key)
	if err != nil {
		return zero, false, fmt.Errorf("failed to encode key: %w", err)
	}

	data, closer, err := b.db.Get(k)
	if errors.Is(err, pebble.ErrNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("failed to get value: %w", err)
	}
	defer closer.Close()

	value, err := b.codec.DecodeValue(data)
	if err != nil {
		return zero, false, fmt.Errorf("failed to decode value: %w", err)
	}

	return value, true, nil
}

// Set stores value under key, syncing the write to disk.
func (b *Backend[K, V]) Set(ctx context.Context, key K, value V) error {
	k, err := b.codec.EncodeKey(key)
	if err != nil {
		return fmt.Errorf("failed to encode key: %w", err)
	}

	data, err := b.codec.EncodeValue(value)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}

	if err := b.db.Set(k, data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}

	return nil
}

// Delete removes key. Deleting a key that does not exist is not an error.
func (b *Backend[K, V]) Delete(ctx context.Context, key K) error {
	k, err := b.codec.EncodeKey(key)
	if err != nil {
		return fmt.Errorf("failed to encode key: %w", err)
	}

	if err := b.db.Delete(k, pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}

	return nil
}

// List reads one page of entries into memory and releases the iterator before
// returning, so the sequence stays valid after further writes.
func (b *Backend[K, V]) List(ctx context.Context, pageSize *int, pageToken *K) (iter.Seq2[K, V], *K, error) {
	opts := &pebble.IterOptions{}

	if pageToken != nil {
		lower, err := b.codec.EncodeKey(*pageToken)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode page token: %w", err)
		}
		opts.LowerBound = lower
	}

	it, err := b.db.NewIter(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer it.Close()

	limit := storage.Limit(pageSize)

	var (
		entries []storage.Entry[K, V]
		next    *K
	)

	for valid := it.First(); valid; valid = it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("stopped listing entries: %w", err)
		}

		key, err := b.codec.DecodeKey(it.Key())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode key: %w", err)
		}

		if len(entries) == limit {
			next = &key
			break
		}

		value, err := b.codec.DecodeValue(it.Value())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode value for key %v: %w", key, err)
		}

		entries = append(entries, storage.Entry[K, V]{Key: key, Value: value})
	}

	if err := it.Error(); err != nil {
		return nil, nil, fmt.Errorf("failed to list entries: %w", err)
	}

	return storage.Seq(entries), next, nil
}

// Flush writes the memtable out to disk.
func (b *Backend[K, V]) Flush(ctx context.Context) error {
	if err := b.db.Flush(); err != nil {
		return fmt.Errorf("failed to flush pebble database: %w", err)
	}
	return nil
}

// Close closes the database.
func (b *Backend[K, V]) Close(ctx context.Context) error {
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("failed to close pebble database: %w", err)
	}
	return nil
}
