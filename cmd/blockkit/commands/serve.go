package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/livetemplate/blockkit/internal/config"
	"github.com/livetemplate/blockkit/internal/logging"
	"github.com/livetemplate/blockkit/internal/server"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	configPath string
	port       int
	host       string
	watch      bool
	debug      bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve [directory]",
		Short: "Start the development server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := siteDir(args)
			if err != nil {
				return err
			}
			cfg, err := loadServeConfig(cmd, dir, opts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, dir, cfg, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "config file (default: blockkit.yaml in the directory)")
	f.IntVarP(&opts.port, "port", "p", 0, "port to listen on")
	f.StringVar(&opts.host, "host", "", "host to bind")
	f.BoolVarP(&opts.watch, "watch", "w", false, "reload pages when files change")
	f.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	return cmd
}

// loadServeConfig loads the configuration and applies the flags the user set.
func loadServeConfig(cmd *cobra.Command, dir string, opts serveOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, err = config.LoadFromDir(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	f := cmd.Flags()
	if f.Changed("port") {
		cfg.Server.Port = opts.port
	}
	if f.Changed("host") {
		cfg.Server.Host = opts.host
	}
	if f.Changed("watch") {
		cfg.Features.HotReload = opts.watch
	}
	if f.Changed("debug") {
		cfg.Server.Debug = opts.debug
	}
	return cfg, nil
}

// serve runs the server until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, dir string, cfg *config.Config, out io.Writer) error {
	logger, err := logging.New(cfg.Logging, cfg.Server.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	srv := server.NewWithConfig(dir, cfg, logger)
	defer srv.Close()

	if err := srv.Discover(); err != nil {
		return fmt.Errorf("failed to discover pages: %w", err)
	}

	fmt.Fprintf(out, "📚 blockkit development server\n\n")
	fmt.Fprintf(out, "Serving: %s\n", dir)
	fmt.Fprintf(out, "\nPages discovered:\n")
	for _, route := range srv.Routes() {
		fmt.Fprintf(out, "  %-30s %s\n", route.Pattern, route.FilePath)
	}

	if cfg.Features.HotReload {
		if err := srv.EnableWatch(); err != nil {
			return fmt.Errorf("failed to enable watch mode: %w", err)
		}
		fmt.Fprintf(out, "\n👀 Watch mode enabled - pages reload on changes\n")
	}

	handlerCtx, cancel := context.WithCancel(context.Background())
	handler, limiterDone := srv.Handler(handlerCtx)
	defer func() {
		cancel()
		<-limiterDone
	}()

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	fmt.Fprintf(out, "\n🌐 Server running at http://%s\n", cfg.Server.Addr())
	fmt.Fprintf(out, "Press Ctrl+C to stop\n\n")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	// WebSocket connections are hijacked, so Shutdown does not wait for them;
	// srv.Close (deferred) closes them.
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	<-errCh
	return nil
}
