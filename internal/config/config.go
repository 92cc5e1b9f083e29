// Package config loads the settings of the chatgpt command.
//
// Values come from, in increasing order of precedence: built-in defaults, a
// YAML file, and environment variables. A .env file in the working directory
// is loaded into the environment first, without replacing variables that are
// already set.
package config

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/picatz/chatgpt"
	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable holding the YAML file path, used
// when no path is passed to Load.
const PathEnv = "CHATGPT_CONFIG"

// Config holds the settings of the chatgpt command.
type Config struct {
	APIKey       string `yaml:"api_key" env:"OPENAI_API_KEY"`
	Organization string `yaml:"organization" env:"OPENAI_ORGANIZATION"`
	BaseURL      string `yaml:"base_url" env:"OPENAI_BASE_URL"`

	// Default models per command.
	Model          string `yaml:"model" env:"CHATGPT_MODEL"`
	ChatModel      string `yaml:"chat_model" env:"CHATGPT_CHAT_MODEL"`
	EditModel      string `yaml:"edit_model" env:"CHATGPT_EDIT_MODEL"`
	EmbeddingModel string `yaml:"embedding_model" env:"CHATGPT_EMBEDDING_MODEL"`
	AudioModel     string `yaml:"audio_model" env:"CHATGPT_AUDIO_MODEL"`

	// Directory of the request history database. Empty keeps history in
	// memory for the lifetime of the process.
	HistoryPath string `yaml:"history_path" env:"CHATGPT_HISTORY_PATH"`

	// One of debug, info, warn or error.
	LogLevel string `yaml:"log_level" env:"CHATGPT_LOG_LEVEL"`

	// Timeout of a single API request.
	Timeout time.Duration `yaml:"timeout" env:"CHATGPT_TIMEOUT"`

	// Address to serve Prometheus metrics on while the command runs, if set.
	MetricsAddr string `yaml:"metrics_addr" env:"CHATGPT_METRICS_ADDR"`
}

// DefaultHistoryPath is where history is kept unless configured otherwise.
var DefaultHistoryPath = filepath.Join(cmp.Or(os.Getenv("HOME"), os.Getenv("USERPROFILE"), "."), ".chatgpt-history")

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		BaseURL:        chatgpt.DefaultBaseURL,
		Model:          chatgpt.ModelGPT35TurboInstruct,
		ChatModel:      chatgpt.ModelGPT4oMini,
		EditModel:      chatgpt.ModelTextDavinciEdit001,
		EmbeddingModel: chatgpt.ModelTextEmbedding3Small,
		AudioModel:     chatgpt.ModelWhisper1,
		HistoryPath:    DefaultHistoryPath,
		LogLevel:       "warn",
		Timeout:        2 * time.Minute,
	}
}

// Load builds the configuration from the defaults, the YAML file at path (or
// at $CHATGPT_CONFIG when path is empty) and the environment, then validates
// it. A missing .env file is fine; a missing YAML file that was asked for is
// not.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv(PathEnv)
	}

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// readFile overlays the settings present in the YAML file at path.
func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	return nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.APIKey == "" {
		result = multierror.Append(result, errors.New("api key is required (set OPENAI_API_KEY)"))
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, err)
	}

	if c.Timeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}

	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		result = multierror.Append(result, fmt.Errorf("invalid base url %q", c.BaseURL))
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// Level returns the slog level named by LogLevel, or warn if it is unknown.
func (c *Config) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

func parseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

// ClientOptions returns the options for a chatgpt.Client using these
// settings.
func (c *Config) ClientOptions() []chatgpt.ClientOption {
	opts := []chatgpt.ClientOption{
		chatgpt.WithBaseURL(c.BaseURL),
	}
	if c.Organization != "" {
		opts = append(opts, chatgpt.WithOrganization(c.Organization))
	}
	return opts
}
