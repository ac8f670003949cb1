package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"metadata-enricher/internal/enrich"
	"metadata-enricher/internal/mapping"
)

func newWatchCmd(g *globalFlags) *cobra.Command {
	var (
		opts        enrich.Options
		settle      time.Duration
		metricsAddr string
		existing    bool
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Enrich files as they are created or written in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			opts.Debug = g.Debug

			w := &watcher{app: a, dir: args[0], opts: opts, settle: settle, out: cmd.OutOrStdout()}

			if metricsAddr != "" {
				stop := a.serveMetrics(metricsAddr)
				defer stop()
			}

			if existing {
				w.enrichExisting(ctx)
			}

			return w.run(ctx)
		},
	}

	cmd.Flags().BoolVarP(&opts.Overwrite, "overwrite", "o", false, "Replace existing attributes with fetched values")
	cmd.Flags().DurationVar(&settle, "settle", getEnvDuration("ENRICHER_WATCH_SETTLE", 500*time.Millisecond),
		"Quiet period after the last write before a file is enriched (env: ENRICHER_WATCH_SETTLE)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", getEnv("ENRICHER_METRICS_ADDR", ":9464"),
		"Address of the Prometheus metrics endpoint, empty to disable (env: ENRICHER_METRICS_ADDR)")
	cmd.Flags().BoolVar(&existing, "existing", false, "Enrich the files already in the directory first")

	return cmd
}

// serveMetrics exposes /metrics and /health until the returned func is called.
func (a *app) serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info("metrics server listening", "addr", addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(ctx)
	}
}

// watcher enriches the files of one directory, one at a time.
type watcher struct {
	app    *app
	dir    string
	opts   enrich.Options
	settle time.Duration
	out    io.Writer
}

// wanted reports whether the profile knows the file's type.
func (w *watcher) wanted(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}

	return w.app.profile.MimeType(path) != mapping.DefaultMimeType
}

func (w *watcher) enrichExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.app.logger.Error("read directory", "dir", w.dir, "error", err)
		return
	}

	for _, e := range entries {
		path := filepath.Join(w.dir, e.Name())
		if e.Type().IsRegular() && w.wanted(path) {
			w.enrich(ctx, path)
		}
	}
}

func (w *watcher) run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.app.logger.Info("watching directory", "dir", w.dir, "settle", w.settle)

	deb := newDebouncer(w.settle)
	defer deb.stop()

	for {
		select {
		case <-ctx.Done():
			w.app.logger.Info("watch stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if !w.wanted(event.Name) {
				continue
			}

			// restart the quiet period on every write
			deb.touch(ctx, event.Name)

		case s := <-deb.ready:
			if deb.settle(s) {
				w.enrich(ctx, s.path)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}

			w.app.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *watcher) enrich(ctx context.Context, path string) {
	ref, err := w.app.register(ctx, path)
	if err != nil {
		printOutcome(w.out, enrich.Outcome{Ref: path, Err: err})
		return
	}

	res, err := w.app.orchestrator.Enrich(ctx, ref, w.opts)
	printOutcome(w.out, enrich.Outcome{Ref: ref, Result: res, Err: err})
}
