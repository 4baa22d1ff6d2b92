package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odvcencio/webdriverd/pkg/browser/adapters/gojadom"
	"github.com/odvcencio/webdriverd/pkg/commands"
	"github.com/odvcencio/webdriverd/pkg/config"
	"github.com/odvcencio/webdriverd/pkg/driver"
	"github.com/odvcencio/webdriverd/pkg/ipc"
	"github.com/odvcencio/webdriverd/pkg/logging"
	"github.com/odvcencio/webdriverd/pkg/observability"
	"github.com/odvcencio/webdriverd/pkg/session"
	"github.com/odvcencio/webdriverd/pkg/telemetry"
)

type serveFlags struct {
	bind        string
	allowRemote bool
	maxSessions int
	initialURL  string
	tracing     bool
	logLevel    string
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve sessions over the JSON wire protocol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return withExitCode(err, exitConfig)
			}
			flags.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return withExitCode(err, exitConfig)
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runServe(ctx, cfg, cmd.ErrOrStderr())
		},
	}
	flags.register(cmd)
	return cmd
}

func (f *serveFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.bind, "bind", config.DefaultBind, "address to listen on")
	fs.BoolVar(&f.allowRemote, "allow-remote", false, "allow binding to a non-loopback address")
	fs.IntVar(&f.maxSessions, "max-sessions", config.DefaultMaxSessions, "maximum concurrent sessions (0 = unlimited)")
	fs.StringVar(&f.initialURL, "initial-url", "", "page new sessions open on")
	fs.BoolVar(&f.tracing, "tracing", false, "export command spans")
	fs.StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "log level (debug|info|warn|error)")
}

// apply overrides cfg with the flags the user set explicitly.
func (f *serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("bind") {
		cfg.Server.Bind = f.bind
	}
	if changed("allow-remote") {
		cfg.Server.AllowRemote = f.allowRemote
	}
	if changed("max-sessions") {
		cfg.Session.MaxSessions = f.maxSessions
	}
	if changed("initial-url") {
		cfg.Session.InitialURL = f.initialURL
	}
	if changed("tracing") {
		cfg.Telemetry.Tracing = f.tracing
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
}

func runServe(ctx context.Context, cfg *config.Config, stderr io.Writer) error {
	logger, err := logging.NewZap(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return withExitCode(err, exitConfig)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Telemetry.Tracing {
		shutdown, err := startTracing(cfg.Telemetry.TraceFile, stderr)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	hub := telemetry.NewHubWithConfig(&telemetry.Config{RateLimit: cfg.Telemetry.HubRateLimit})
	defer hub.Close()

	rt, err := gojadom.NewRuntime(gojadom.Config{
		UserAgent:     cfg.Browser.UserAgent,
		ScriptTimeout: cfg.Browser.ScriptTimeout,
		HTTPTimeout:   cfg.Browser.HTTPTimeout,
		MaxFrameDepth: cfg.Browser.MaxFrameDepth,
	}, logger.Named("gojadom"))
	if err != nil {
		return withExitCode(err, exitConfig)
	}
	defer func() { _ = rt.Close() }()

	manager := session.NewManager(session.Config{
		Launcher:      rt,
		Table:         commands.DefaultTable(),
		Hub:           hub,
		MaxSessions:   cfg.Session.MaxSessions,
		IdleTimeout:   cfg.Session.IdleTimeout,
		ReapInterval:  cfg.Session.ReapInterval,
		PollInterval:  cfg.Session.PollInterval,
		ResponsePoll:  cfg.Session.ResponsePoll,
		MaxFrameDepth: cfg.Session.MaxFrameDepth,
		InitialURL:    cfg.Session.InitialURL,
		Timeouts: driver.Timeouts{
			ImplicitWait: cfg.Session.ImplicitWait,
			Script:       cfg.Session.ScriptTimeout,
			PageLoad:     cfg.Session.PageLoadTimeout,
		},
		Capabilities: map[string]any{
			"browserName":       "gojadom",
			"version":           version,
			"javascriptEnabled": true,
		},
		JournalDir:   cfg.Logging.JournalDir,
		JournalLevel: logging.Level(cfg.Logging.JournalLevel),
		Logger:       logger,
	})
	manager.Start(ctx)
	defer func() {
		if err := manager.Close(); err != nil {
			logger.Warn("session shutdown", zap.Error(err))
		}
	}()

	server := ipc.NewServer(ipc.Config{
		BindAddress:     cfg.Server.Bind,
		AllowRemote:     cfg.Server.AllowRemote,
		RateLimit:       cfg.Server.RateLimit,
		RateBurst:       cfg.Server.RateBurst,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Version:         version,
	}, manager, hub, logger)

	logger.Info("webdriverd starting",
		zap.String("version", version),
		zap.String("bind", cfg.Server.Bind),
		zap.Int("max_sessions", cfg.Session.MaxSessions),
	)
	return server.Start(ctx)
}

// startTracing installs the span exporter, writing to path or, when empty, to stderr.
func startTracing(path string, stderr io.Writer) (func(), error) {
	w := stderr
	var file *os.File
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open trace file: %w", err)
		}
		file, w = f, f
	}
	tp, err := observability.NewTracerProvider("webdriverd", version, w)
	if err != nil {
		if file != nil {
			_ = file.Close()
		}
		return nil, err
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
		if file != nil {
			_ = file.Close()
		}
	}, nil
}
