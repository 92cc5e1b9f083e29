package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/picatz/chatgpt"
	"github.com/picatz/chatgpt/internal/config"
	"github.com/picatz/chatgpt/internal/history"
	"github.com/picatz/chatgpt/internal/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// app holds what every command needs once the configuration is loaded.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  *chatgpt.Client
	history *history.Log
	out     *render.Printer

	metrics *http.Server
}

var (
	flagConfig    string
	flagModel     string
	flagRaw       bool
	flagNoHistory bool

	cli *app
)

var rootCmd = &cobra.Command{
	Use:   "chatgpt",
	Short: "Talk to OpenAI-compatible APIs from the terminal",
	Long: `chatgpt sends requests to the OpenAI API, or any server that speaks the same
protocol, and prints the results. Every exchange is kept in a local history
unless --no-history is given.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	// Finalizers also run when a command fails, unlike post-run hooks.
	cobra.OnFinalize(func() {
		if err := cli.close(context.Background()); err != nil {
			cli.logger.Error("failed to shut down", "error", err)
		}
		cli = nil
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagConfig, "config", "", "path to a YAML configuration file (default $"+config.PathEnv+")")
	flags.StringVarP(&flagModel, "model", "m", "", "model to use instead of the configured default")
	flags.BoolVar(&flagRaw, "raw", false, "print the raw JSON response")
	flags.BoolVar(&flagNoHistory, "no-history", false, "do not record this exchange in the history")
}

// setup loads the configuration and builds the client, history and printer
// for the command about to run.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Level()}))

	a := &app{
		cfg:    cfg,
		logger: logger,
		out:    render.NewPrinter(cmd.OutOrStdout()),
	}
	cli = a

	opts := append(cfg.ClientOptions(),
		chatgpt.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		chatgpt.WithLogger(logger),
	)

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, chatgpt.WithMetrics(reg))

		if err := a.serveMetrics(cfg.MetricsAddr, reg); err != nil {
			return err
		}
	}

	a.client = chatgpt.NewClient(cfg.APIKey, opts...)

	// History is kept in memory only when it is disabled, so the commands
	// do not need to care.
	historyPath := cfg.HistoryPath
	if flagNoHistory {
		historyPath = ""
	}

	a.history, err = history.Open(historyPath, logger)
	if err != nil {
		return err
	}

	return nil
}

func (a *app) serveMetrics(addr string, reg *prometheus.Registry) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen for metrics on %q: %w", addr, err)
	}

	a.metrics = &http.Server{
		Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{
			ErrorHandling: promhttp.ContinueOnError,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := a.metrics.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", "error", err)
		}
	}()

	a.logger.Info("serving metrics", "addr", ln.Addr().String())

	return nil
}

func (a *app) close(ctx context.Context) error {
	if a == nil {
		return nil
	}

	if a.metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		a.metrics.Shutdown(shutdownCtx)
	}

	if a.history == nil {
		return nil
	}

	if err := a.history.Close(ctx); err != nil {
		return fmt.Errorf("failed to close history: %w", err)
	}

	return nil
}

// model returns the --model flag, or fallback when it was not given.
func (a *app) model(fallback string) string {
	if flagModel != "" {
		return flagModel
	}
	return fallback
}

// rawResponse is implemented by every endpoint response.
type rawResponse interface {
	Raw() json.RawMessage
}

// record adds an exchange to the history. Failing to record is logged rather
// than returned, since the request itself already happened.
func (a *app) record(ctx context.Context, endpoint string, req chatgpt.Request, resp rawResponse, err error) {
	var raw []byte
	if err == nil {
		raw = resp.Raw()
	}

	id, rerr := a.history.Record(ctx, history.NewExchange(endpoint, req, raw, err))
	if rerr != nil {
		a.logger.Warn("failed to record exchange", "endpoint", endpoint, "error", rerr)
		return
	}

	a.logger.Debug("recorded exchange", "id", id, "endpoint", endpoint)
}

// print writes resp as raw JSON when --raw is set, and otherwise calls
// pretty to print it for humans.
func (a *app) print(resp rawResponse, pretty func() error) error {
	if flagRaw {
		return a.out.JSON(resp.Raw())
	}
	return pretty()
}
