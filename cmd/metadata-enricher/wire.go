package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"metadata-enricher/internal/enrich"
	"metadata-enricher/internal/fetch"
	"metadata-enricher/internal/mapping"
	"metadata-enricher/internal/metrics"
	"metadata-enricher/internal/store"
	"metadata-enricher/internal/store/sqlitestore"
)

// app is the wired engine one command works with.
type app struct {
	profile      *mapping.Profile
	logger       *slog.Logger
	store        *sqlitestore.Store
	registry     *prometheus.Registry
	metrics      *metrics.Metrics
	orchestrator *enrich.Orchestrator
}

// loadProfile reads the configured profile, or the built-in one.
func loadProfile(path string) (*mapping.Profile, error) {
	if path == "" {
		return mapping.DefaultProfile()
	}

	return mapping.LoadFile(path)
}

// newApp loads and validates the profile, opens the store and builds the
// orchestrator.
func newApp(ctx context.Context, g *globalFlags, stderr io.Writer) (*app, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	logger := setupLogger(stderr, g.LogLevel, g.LogFormat)

	profile, err := loadProfile(g.ConfigPath)
	if err != nil {
		return nil, err
	}

	diags := mapping.Validate(profile)
	diags.Log(ctx, logger)

	if err := diags.Error(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	st, err := sqlitestore.Open(g.DBPath, sqlitestore.WithFilter(profile.Filter()), sqlitestore.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	a := &app{profile: profile, logger: logger, store: st, registry: prometheus.NewRegistry()}

	if err := a.wire(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	for mime, reg := range a.profile.Types {
		if err := a.store.SetTypes(ctx, mime, reg); err != nil {
			return err
		}
	}

	m, err := metrics.New(a.registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	a.metrics = m

	mp, err := a.profile.Mapper(a.logger)
	if err != nil {
		return err
	}

	fetchOpts := append(a.profile.FetchOptions(), fetch.WithLogger(a.logger), fetch.WithMetrics(m))

	a.orchestrator, err = enrich.New(a.profile.EnrichConfig(), mp, a.store, fetch.NewClient(fetchOpts...),
		enrich.WithSelector(a.profile.Selector()),
		enrich.WithLogger(a.logger),
		enrich.WithMetrics(m))

	return err
}

func (a *app) Close() error {
	return a.store.Close()
}

// register records a file as an entity; its absolute path is the ref.
func (a *app) register(ctx context.Context, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}

	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}

	e := store.Entity{Ref: abs, Name: filepath.Base(abs), MimeType: a.profile.MimeType(abs)}

	if existing, err := a.store.Entity(ctx, abs); err == nil {
		// keep a name an earlier run assigned
		e.Name = existing.Name
	}

	if err := a.store.Register(ctx, e); err != nil {
		return "", err
	}

	return abs, nil
}
