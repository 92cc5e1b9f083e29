package chatgpt

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultBaseURL is the base URL used when no other is configured.
//
// Any OpenAI-compatible server (for example a local Ollama instance at
// http://localhost:11434) can be targeted with [WithBaseURL].
const DefaultBaseURL = "https://api.openai.com"

// Client is a client for the OpenAI REST API.
//
// A Client only holds immutable configuration, so it is safe to share between
// goroutines once it has been constructed.
//
// https://platform.openai.com/docs/api-reference
type Client struct {
	// APIKey is the API key sent as a bearer token with every request.
	APIKey string

	// Organization is sent as the OpenAI-Organization header, if set.
	//
	// https://platform.openai.com/docs/api-reference/authentication
	Organization string

	// BaseURL is the scheme and host of the API, without the /v1 suffix.
	BaseURL string

	// HTTPClient is the HTTP client to use for requests.
	HTTPClient *http.Client

	// Logger receives a debug record for every request made.
	Logger *slog.Logger

	registerer prometheus.Registerer
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithHTTPClient is a ClientOption that sets the HTTP client to use for requests.
//
// If the client is nil, then http.DefaultClient is used.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		if c == nil {
			c = http.DefaultClient
		}
		client.HTTPClient = c
	}
}

// WithOrganization is a ClientOption that sets the organization to use for requests.
func WithOrganization(org string) ClientOption {
	return func(client *Client) {
		client.Organization = org
	}
}

// WithBaseURL is a ClientOption that points the client at another
// OpenAI-compatible server.
func WithBaseURL(baseURL string) ClientOption {
	return func(client *Client) {
		if baseURL == "" {
			baseURL = DefaultBaseURL
		}
		client.BaseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger is a ClientOption that sets the structured logger used for
// per-request debug output. A nil logger discards everything.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		client.Logger = logger
	}
}

// NewClient returns a new Client with the given API key.
//
// # Example
//
//	c := chatgpt.NewClient(os.Getenv("OPENAI_API_KEY"),
//		chatgpt.WithOrganization(os.Getenv("OPENAI_ORGANIZATION")),
//	)
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		APIKey:     apiKey,
		BaseURL:    DefaultBaseURL,
		HTTPClient: http.DefaultClient,
		Logger:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.registerer != nil {
		c.HTTPClient = instrumentHTTPClient(c.HTTPClient, c.registerer)
	}

	return c
}

// url joins the configured base URL with an endpoint path such as "/v1/models".
func (c *Client) url(path string) string {
	return c.BaseURL + path
}
