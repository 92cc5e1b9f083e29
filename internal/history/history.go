// Package history keeps a log of the API exchanges made by the CLI, so past
// requests and their responses can be listed and inspected later.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/hashicorp/go-multierror"
	"github.com/picatz/chatgpt"
	"github.com/picatz/chatgpt/internal/storage"
	"github.com/picatz/chatgpt/internal/storage/memory"
	backendPebble "github.com/picatz/chatgpt/internal/storage/pebble"
	"github.com/segmentio/ksuid"
)

// Exchange is a single request made to the API and its outcome.
type Exchange struct {
	Endpoint  string          `json:"endpoint"`
	Model     string          `json:"model,omitempty"`
	Request   map[string]any  `json:"request,omitempty"`
	Response  json.RawMessage `json:"response,omitempty"`
	Status    int             `json:"status,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewExchange describes a call to endpoint that returned the body raw, or
// failed with err.
//
// The request's JSON value is stored, so file fields hold paths rather than
// file contents. The status is taken from a [chatgpt.StatusError], is 200 for
// a successful call, and 0 when the server was never reached.
func NewExchange(endpoint string, req chatgpt.Request, raw []byte, err error) Exchange {
	ex := Exchange{Endpoint: endpoint}

	if req != nil {
		if value, verr := req.ToValue(); verr == nil {
			ex.Request = value
			if model, ok := value["model"].(string); ok {
				ex.Model = model
			}
		}
	}

	if err != nil {
		ex.Error = err.Error()

		var statusErr *chatgpt.StatusError
		if errors.As(err, &statusErr) {
			ex.Status = statusErr.StatusCode
		}

		return ex
	}

	ex.Status = http.StatusOK

	switch {
	case len(raw) == 0:
	case json.Valid(raw):
		ex.Response = raw
	default:
		// Plain text audio responses are kept as a JSON string.
		ex.Response, _ = json.Marshal(string(raw))
	}

	return ex
}

// Entry is an exchange together with the ID it was recorded under.
type Entry struct {
	ID string `json:"id"`
	Exchange
}

// Log records exchanges in a storage backend, keyed by KSUID so that key
// order is recording order.
type Log struct {
	backend storage.Backend[string, Exchange]

	mu   sync.Mutex
	last ksuid.KSUID
	now  func() time.Time
}

// New returns a log on top of backend.
func New(backend storage.Backend[string, Exchange]) *Log {
	return &Log{backend: backend, now: time.Now}
}

// Open returns a log persisted in a Pebble database in dir. An empty dir
// gives a log that only lives as long as the process. Pebble's own logging
// goes to logger, which may be nil.
func Open(dir string, logger *slog.Logger) (*Log, error) {
	if dir == "" {
		return New(memory.NewBackend[string, Exchange]()), nil
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	opts := &pebble.Options{
		LoggerAndTracer: &pebbleLogger{logger: logger},
	}

	backend, err := backendPebble.Open(dir, opts, storage.JSONCodec[string, Exchange]{})
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	return New(backend), nil
}

// nextID returns a KSUID greater than any this log handed out before, even
// when called several times within the same second.
func (l *Log) nextID() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := ksuid.New()
	if ksuid.Compare(id, l.last) <= 0 {
		id = l.last.Next()
	}
	l.last = id

	return id.String()
}

// Record stores ex and returns the ID it was stored under. A zero CreatedAt
// is set to the current time.
func (l *Log) Record(ctx context.Context, ex Exchange) (string, error) {
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = l.now().UTC()
	}

	id := l.nextID()

	if err := l.backend.Set(ctx, id, ex); err != nil {
		return "", fmt.Errorf("failed to record exchange: %w", err)
	}

	return id, nil
}

// Get returns the exchange recorded under id.
func (l *Log) Get(ctx context.Context, id string) (Entry, bool, error) {
	ex, found, err := l.backend.Get(ctx, id)
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to get exchange %q: %w", id, err)
	}
	if !found {
		return Entry{}, false, nil
	}
	return Entry{ID: id, Exchange: ex}, true, nil
}

// List returns up to limit exchanges, oldest first, starting at the cursor
// returned by a previous call (empty for the beginning). The returned cursor
// is empty once there is nothing left.
func (l *Log) List(ctx context.Context, limit int, after string) ([]Entry, string, error) {
	var token *string
	if after != "" {
		token = storage.PageToken(after)
	}

	seq, next, err := l.backend.List(ctx, storage.PageSize(limit), token)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list exchanges: %w", err)
	}

	var entries []Entry
	for id, ex := range seq {
		entries = append(entries, Entry{ID: id, Exchange: ex})
	}

	var cursor string
	if next != nil {
		cursor = *next
	}

	return entries, cursor, nil
}

// Clear deletes every recorded exchange and returns how many were removed.
// Failed deletions do not stop the rest; their errors are returned together.
func (l *Log) Clear(ctx context.Context) (int, error) {
	var (
		result  *multierror.Error
		removed int
		token   *string
	)

	for {
		seq, next, err := l.backend.List(ctx, storage.PageSize(100), token)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to list exchanges: %w", err))
			break
		}

		for id := range seq {
			if err := l.backend.Delete(ctx, id); err != nil {
				result = multierror.Append(result, fmt.Errorf("failed to delete exchange %q: %w", id, err))
				continue
			}
			removed++
		}

		if next == nil {
			break
		}
		token = next
	}

	if err := l.backend.Flush(ctx); err != nil {
		result = multierror.Append(result, fmt.Errorf("failed to flush history: %w", err))
	}

	return removed, result.ErrorOrNil()
}

// Close releases the underlying backend.
func (l *Log) Close(ctx context.Context) error {
	return l.backend.Close(ctx)
}

// pebbleLogger sends Pebble's log output to slog.
type pebbleLogger struct {
	logger *slog.Logger
}

func (l *pebbleLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "pebble")
}

func (l *pebbleLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...), "component", "pebble")
}

func (l *pebbleLogger) Fatalf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...), "component", "pebble")
	os.Exit(1)
}

func (l *pebbleLogger) Eventf(ctx context.Context, format string, args ...any) {}

func (l *pebbleLogger) IsTracingEnabled(ctx context.Context) bool {
	return false
}
