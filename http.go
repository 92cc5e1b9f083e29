package chatgpt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// get performs a GET request against the given endpoint path.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	return c.do(r)
}

// post serializes req to its null-trimmed JSON value and POSTs it to the
// given endpoint path.
func (c *Client) post(ctx context.Context, path string, req Request) ([]byte, error) {
	value, err := req.ToValue()
	if err != nil {
		return nil, fmt.Errorf("failed to convert request to JSON value: %w", err)
	}

	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	r.Header.Set("Content-Type", "application/json")

	return c.do(r)
}

// postForm converts req into a multipart form, streaming its file fields from
// disk, and POSTs it to the given endpoint path.
func (c *Client) postForm(ctx context.Context, path string, req FormRequest) ([]byte, error) {
	value, err := req.ToValue()
	if err != nil {
		return nil, fmt.Errorf("failed to convert request to JSON value: %w", err)
	}

	form, err := NewMultipartForm(value, req.FileFields()...)
	if err != nil {
		return nil, err
	}
	defer form.Close()

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), form)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	r.Header.Set("Content-Type", form.ContentType())

	return c.do(r)
}

// do authenticates and sends r, returning the response body of a successful
// (2xx) response.
func (c *Client) do(r *http.Request) ([]byte, error) {
	r.Header.Set("Authorization", "Bearer "+c.APIKey)

	if c.Organization != "" {
		r.Header.Set("OpenAI-Organization", c.Organization)
	}

	start := time.Now()

	resp, err := c.HTTPClient.Do(r)
	if err != nil {
		c.Logger.DebugContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
			"error", err,
		)
		return nil, &ConnectionError{Op: r.Method, URL: r.URL.String(), Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Op: r.Method, URL: r.URL.String(), Err: err}
	}

	c.Logger.DebugContext(r.Context(), "request complete",
		"method", r.Method,
		"path", r.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"bytes", len(body),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// unwrapURLError strips the *url.Error the HTTP client adds, since
// ConnectionError already records the method and URL.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
