package history_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/picatz/chatgpt"
	"github.com/picatz/chatgpt/internal/history"
	"github.com/picatz/chatgpt/internal/storage"
	"github.com/picatz/chatgpt/internal/storage/memory"
	backendPebble "github.com/picatz/chatgpt/internal/storage/pebble"
	"github.com/shoenig/test/must"
)

func backends(t *testing.T) map[string]storage.Backend[string, history.Exchange] {
	t.Helper()

	pb, err := backendPebble.Open("", &pebble.Options{FS: vfs.NewMem()}, storage.JSONCodec[string, history.Exchange]{})
	must.NoError(t, err)
	t.Cleanup(func() { pb.Close(context.Background()) })

	return map[string]storage.Backend[string, history.Exchange]{
		"memory": memory.NewBackend[string, history.Exchange](),
		"pebble": pb,
	}
}

func TestLog_recordAndList(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			log := history.New(backend)

			var ids []string
			for _, endpoint := range []string{"/v1/models", "/v1/chat/completions", "/v1/embeddings"} {
				id, err := log.Record(t.Context(), history.Exchange{Endpoint: endpoint, Status: http.StatusOK})
				must.NoError(t, err)
				ids = append(ids, id)
			}

			entries, cursor, err := log.List(t.Context(), 10, "")
			must.NoError(t, err)
			must.Eq(t, "", cursor)
			must.SliceLen(t, 3, entries)

			// Recorded within the same second, still listed in recording order.
			for i, entry := range entries {
				must.Eq(t, ids[i], entry.ID)
				must.False(t, entry.CreatedAt.IsZero())
			}
			must.Eq(t, "/v1/embeddings", entries[2].Endpoint)

			first, cursor, err := log.List(t.Context(), 2, "")
			must.NoError(t, err)
			must.SliceLen(t, 2, first)
			must.Eq(t, ids[2], cursor)

			rest, cursor, err := log.List(t.Context(), 2, cursor)
			must.NoError(t, err)
			must.Eq(t, "", cursor)
			must.SliceLen(t, 1, rest)
			must.Eq(t, ids[2], rest[0].ID)
		})
	}
}

func TestLog_get(t *testing.T) {
	log := history.New(memory.NewBackend[string, history.Exchange]())

	created := time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := log.Record(t.Context(), history.Exchange{
		Endpoint:  "/v1/completions",
		Model:     chatgpt.ModelGPT35TurboInstruct,
		Response:  []byte(`{"choices":[]}`),
		CreatedAt: created,
	})
	must.NoError(t, err)

	entry, found, err := log.Get(t.Context(), id)
	must.NoError(t, err)
	must.True(t, found)
	must.Eq(t, id, entry.ID)
	must.Eq(t, created, entry.CreatedAt)
	must.Eq(t, `{"choices":[]}`, string(entry.Response))

	_, found, err = log.Get(t.Context(), "missing")
	must.NoError(t, err)
	must.False(t, found)
}

func TestLog_clear(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			log := history.New(backend)

			for range 150 {
				_, err := log.Record(t.Context(), history.Exchange{Endpoint: "/v1/models"})
				must.NoError(t, err)
			}

			removed, err := log.Clear(t.Context())
			must.NoError(t, err)
			must.Eq(t, 150, removed)

			entries, _, err := log.List(t.Context(), 10, "")
			must.NoError(t, err)
			must.SliceEmpty(t, entries)
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	log, err := history.Open(dir, nil)
	must.NoError(t, err)

	id, err := log.Record(t.Context(), history.Exchange{Endpoint: "/v1/models"})
	must.NoError(t, err)
	must.NoError(t, log.Close(t.Context()))

	log, err = history.Open(dir, nil)
	must.NoError(t, err)
	defer log.Close(t.Context())

	_, found, err := log.Get(t.Context(), id)
	must.NoError(t, err)
	must.True(t, found)
}

func TestNewExchange(t *testing.T) {
	req := chatgpt.NewChatCompletionRequest("llama3.2:latest", []chatgpt.ChatMessage{
		chatgpt.NewUserMessage("Hello!"),
	})

	t.Run("status error", func(t *testing.T) {
		ex := history.NewExchange("/v1/chat/completions", req, nil, &chatgpt.StatusError{
			StatusCode: http.StatusTooManyRequests,
			Body:       "slow down",
		})

		must.Eq(t, "/v1/chat/completions", ex.Endpoint)
		must.Eq(t, "llama3.2:latest", ex.Model)
		must.MapContainsKey(t, ex.Request, "messages")
		must.MapNotContainsKey(t, ex.Request, "temperature")
		must.Eq(t, http.StatusTooManyRequests, ex.Status)
		must.StrContains(t, ex.Error, "slow down")
		must.Eq(t, 0, len(ex.Response))
	})

	t.Run("connection error", func(t *testing.T) {
		ex := history.NewExchange("/v1/models", nil, nil, &chatgpt.ConnectionError{
			Op:  http.MethodGet,
			URL: "http://localhost:1/v1/models",
			Err: errors.New("connection refused"),
		})

		must.Eq(t, 0, ex.Status)
		must.Eq(t, 0, len(ex.Request))
		must.StrContains(t, ex.Error, "connection refused")
	})
}

func TestNewExchange_success(t *testing.T) {
	req := chatgpt.NewTranscriptionRequest(chatgpt.ModelWhisper1, "/tmp/speech.mp3")

	ex := history.NewExchange("/v1/audio/transcriptions", req, []byte("plain text"), nil)
	must.Eq(t, http.StatusOK, ex.Status)
	must.Eq(t, "whisper-1", ex.Model)
	must.Eq(t, "/tmp/speech.mp3", ex.Request["file"])
	must.Eq(t, `"plain text"`, string(ex.Response))

	ex = history.NewExchange("/v1/models", nil, []byte(`{"data":[]}`), nil)
	must.Eq(t, `{"data":[]}`, string(ex.Response))
	must.Eq(t, "", ex.Error)
}
