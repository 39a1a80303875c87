package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/nao1215/tcmlookup/internal/config"
	"github.com/nao1215/tcmlookup/internal/lookup"
	"github.com/nao1215/tcmlookup/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the lookup HTTP API",
		Long: `Serve runs the HTTP API.

Endpoints:
  POST /api/buscar-registro-selenium   body {"cpf": "<search key>"}
  POST /api/v1/lookup                  same as above
  GET  /healthz                        liveness probe
  GET  /metrics                        Prometheus metrics

A found admission record is returned as a flat JSON object. Empty results
are 404 with a "message"; failures carry an "error" (503 when the browser
cannot start, 500 otherwise).

Examples:
  # Listen on the default port 5001
  tcmlookup serve

  # Listen on 8080 and allow one origin
  tcmlookup serve -l :8080 --origin https://portal.example.org

  # Use Playwright with a specific browser
  tcmlookup serve -E playwright --browser /usr/bin/chromium`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", "",
		"Listen address (default :5001, or :$PORT)")
	cmd.Flags().StringSlice("origin", nil,
		"CORS allowed origin, repeatable (default *)")
	cmd.Flags().Int("max-sessions", config.DefaultMaxSessions,
		"Maximum concurrent browser sessions")
	cmd.Flags().Int("rate", config.DefaultLookupsPerMinute,
		"Maximum lookup starts per minute (0 disables)")
	addBrowserFlags(cmd)
	addJournalFlags(cmd)

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg, slog.LevelInfo)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runServe(ctx, cfg, logger)
}

// runServe wires the lookup service to the HTTP server and serves until
// ctx is done.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) (err error) {
	opts, err := browserOptions(cfg, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svcOpts := []lookup.Option{
		lookup.WithLogger(logger),
		lookup.WithMetrics(lookup.NewMetrics(reg)),
		lookup.WithMaxSessions(cfg.MaxSessions),
		lookup.WithLookupsPerMinute(cfg.LookupsPerMinute),
	}

	journal, err := openJournal(cfg)
	if err != nil {
		return err
	}
	if journal != nil {
		defer closeWith(&err, journal.Close)
		svcOpts = append(svcOpts, lookup.WithJournal(journal))
		logger.Info("journal enabled", "path", journal.Path())
	}

	srv := server.New(server.Config{
		Address:        cfg.ListenAddress,
		AllowedOrigins: cfg.AllowedOrigins,
		Lookups:        lookup.New(lookup.BrowserAcquirer(opts), svcOpts...),
		Gatherer:       reg,
		Logger:         logger,
	})

	logger.Info("starting server",
		"engine", cfg.Engine,
		"max_sessions", cfg.MaxSessions,
		"lookups_per_minute", cfg.LookupsPerMinute,
	)
	return srv.ListenAndServe(ctx, config.DefaultShutdownTimeout)
}
