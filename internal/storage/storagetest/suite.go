// Package storagetest checks that a storage.Backend behaves like the others.
package storagetest

import (
	"context"
	"maps"
	"slices"
	"testing"

	"github.com/picatz/chatgpt/internal/storage"
	"github.com/shoenig/test/must"
)

// Record is the structured value type the suite stores.
type Record struct {
	Name  string            `json:"name"`
	Count int               `json:"count"`
	Tags  map[string]string `json:"tags,omitempty"`
}

// Suite runs the conformance tests against backends produced by newBackend,
// which is called once per subtest and must return an empty backend.
func Suite(t *testing.T, newBackend func(t *testing.T) storage.Backend[string, Record]) {
	t.Helper()

	t.Run("get missing key", func(t *testing.T) {
		b := newBackend(t)

		value, found, err := b.Get(t.Context(), "missing")
		must.NoError(t, err)
		must.False(t, found)
		must.Eq(t, Record{}, value)
	})

	t.Run("set and get", func(t *testing.T) {
		b := newBackend(t)

		want := Record{Name: "hello", Count: 1, Tags: map[string]string{"a": "b"}}
		must.NoError(t, b.Set(t.Context(), "hello", want))

		value, found, err := b.Get(t.Context(), "hello")
		must.NoError(t, err)
		must.True(t, found)
		must.Eq(t, want, value)
	})

	t.Run("overwrite", func(t *testing.T) {
		b := newBackend(t)

		must.NoError(t, b.Set(t.Context(), "hello", Record{Name: "world"}))
		must.NoError(t, b.Set(t.Context(), "hello", Record{Name: "world2"}))

		value, found, err := b.Get(t.Context(), "hello")
		must.NoError(t, err)
		must.True(t, found)
		must.Eq(t, "world2", value.Name)
	})

	t.Run("delete", func(t *testing.T) {
		b := newBackend(t)

		must.NoError(t, b.Set(t.Context(), "hello", Record{Name: "world"}))
		must.NoError(t, b.Delete(t.Context(), "hello"))
		must.NoError(t, b.Delete(t.Context(), "never set"))

		_, found, err := b.Get(t.Context(), "hello")
		must.NoError(t, err)
		must.False(t, found)
	})

	t.Run("list in key order", func(t *testing.T) {
		b := newBackend(t)

		for _, key := range []string{"c", "a", "e", "b", "d"} {
			must.NoError(t, b.Set(t.Context(), key, Record{Name: key}))
		}

		entries, next, err := b.List(t.Context(), nil, nil)
		must.NoError(t, err)
		must.Nil(t, next)

		got := maps.Collect(entries)
		must.Eq(t, []string{"a", "b", "c", "d", "e"}, keys(t, b, nil, nil))
		must.Eq(t, "d", got["d"].Name)
	})

	t.Run("paginate", func(t *testing.T) {
		b := newBackend(t)

		for _, key := range []string{"a", "b", "c", "d", "e"} {
			must.NoError(t, b.Set(t.Context(), key, Record{Name: key}))
		}

		var (
			pages [][]string
			token *string
		)
		for {
			entries, next, err := b.List(t.Context(), storage.PageSize(2), token)
			must.NoError(t, err)

			var page []string
			for key := range entries {
				page = append(page, key)
			}
			pages = append(pages, page)

			if next == nil {
				break
			}
			token = next
		}

		must.Eq(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, pages)
	})

	t.Run("exact page", func(t *testing.T) {
		b := newBackend(t)

		must.NoError(t, b.Set(t.Context(), "a", Record{}))
		must.NoError(t, b.Set(t.Context(), "b", Record{}))

		_, next, err := b.List(t.Context(), storage.PageSize(2), nil)
		must.NoError(t, err)
		must.Nil(t, next)
	})

	t.Run("start at token", func(t *testing.T) {
		b := newBackend(t)

		for _, key := range []string{"a", "b", "c"} {
			must.NoError(t, b.Set(t.Context(), key, Record{}))
		}

		must.Eq(t, []string{"b", "c"}, keys(t, b, nil, storage.PageToken("b")))
		must.Eq(t, []string{"c"}, keys(t, b, nil, storage.PageToken("bb")))
	})

	t.Run("empty", func(t *testing.T) {
		b := newBackend(t)

		entries, next, err := b.List(t.Context(), nil, nil)
		must.NoError(t, err)
		must.Nil(t, next)
		must.MapEmpty(t, maps.Collect(entries))
	})

	t.Run("canceled context", func(t *testing.T) {
		b := newBackend(t)

		must.NoError(t, b.Set(t.Context(), "a", Record{}))

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, _, err := b.List(ctx, nil, nil)
		must.ErrorIs(t, err, context.Canceled)
	})

	t.Run("flush", func(t *testing.T) {
		b := newBackend(t)

		must.NoError(t, b.Set(t.Context(), "a", Record{}))
		must.NoError(t, b.Flush(t.Context()))
	})
}

func keys(t *testing.T, b storage.Backend[string, Record], pageSize *int, pageToken *string) []string {
	t.Helper()

	entries, _, err := b.List(t.Context(), pageSize, pageToken)
	must.NoError(t, err)

	var result []string
	for key := range entries {
		result = append(result, key)
	}

	must.True(t, slices.IsSorted(result))
	return result
}
