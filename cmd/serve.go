package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mirrorkit/internal/application/features"
	"github.com/zjrosen/mirrorkit/internal/config"
	"github.com/zjrosen/mirrorkit/internal/flags"
	"github.com/zjrosen/mirrorkit/internal/log"
	"github.com/zjrosen/mirrorkit/internal/server"
	"github.com/zjrosen/mirrorkit/internal/watcher"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve pages with features injected",
	Long: `Serve HTML pages prepared for the configured editor.

Routes:
  GET /                  a page with the editor features and every ?feature= injected
  GET /features          the catalog as JSON (?category= filters)
  GET /features/{name}   one feature and its load order
  GET /events            catalog reloads as server-sent events
  GET /health            status and feature count

With --watch the catalog and payloads are reloaded when files under the
assets dir or the user catalog change. A failed reload keeps the previous
catalog.

Examples:
  mirrorkit serve
  mirrorkit serve --addr :8080 --watch
  curl 'localhost:8088/?feature=vim&feature=monokai'`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (overrides serve.addr)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload on file changes (overrides serve.watch)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Without --debug the server still reports to stderr and /logs.
	if logCleanup == nil {
		log.InitWriter(cmd.ErrOrStderr())
		log.SetMinLevel(log.LevelInfo)
	}

	svc, provider, cleanup, err := openService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := cfg.Serve.Addr
	if cmd.Flags().Changed("addr") {
		addr = serveAddr
	}
	watch := cfg.Serve.Watch
	if cmd.Flags().Changed("watch") {
		watch = serveWatch
	}

	srv, err := server.NewServer(server.ServerConfig{
		HandlerConfig: server.HandlerConfig{
			Service: svc,
			Editor:  cfg.Editor,
			Tracer:  provider.Tracer(),
		},
		Addr: addr,
	})
	if err != nil {
		return err
	}

	if watch {
		stop, err := startReloader(ctx, svc, watchRoots(cfg))
		if err != nil {
			return err
		}
		defer stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "mirrorkit serving %d features on http://%s\n", svc.Registry().Len(), srv.Addr())

	select {
	case sig := <-sigCh:
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.ErrorErr(log.CatHTTP, "Error stopping server", err)
	}
	return nil
}

// watchRoots lists the directories whose changes should trigger a reload.
func watchRoots(c config.Config) []string {
	var roots []string
	if c.Assets.Source == "" || c.Assets.Source == config.SourceFS {
		roots = append(roots, c.Assets.Dir)
	}
	if flags.New(c.Flags).Enabled(flags.FlagUserCatalog) && c.Catalog.UserDir != "" {
		roots = append(roots, filepath.Join(c.Catalog.UserDir, "catalog"))
	}
	return roots
}

// startReloader reloads svc after every burst of file changes under roots.
func startReloader(ctx context.Context, svc *features.Service, roots []string) (func(), error) {
	w, err := watcher.New(watcher.DefaultConfig(roots...))
	if err != nil {
		return nil, err
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return nil, fmt.Errorf("starting watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				log.Info(log.CatWatcher, "Files changed, reloading catalog")
				// Reload logs and publishes its own failures.
				_ = svc.Reload(ctx)
			}
		}
	}()

	return func() {
		cancel()
		<-done
		_ = w.Stop()
	}, nil
}
