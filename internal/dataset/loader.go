// Package dataset orchestrates the one-shot fetch-parse-join load that
// produces the immutable snapshot every query reads from.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mapfolk/language-atlas/internal/domain"
	"github.com/mapfolk/language-atlas/internal/observability"
)

// Fetcher retrieves the three external data sources.
type Fetcher interface {
	FetchAtlas(ctx context.Context) (*domain.Atlas, error)
	FetchLanguageTable(ctx context.Context) ([][]string, error)
	FetchPopulationTable(ctx context.Context) ([][]string, error)
}

// Loader runs the load and holds the resulting snapshot for readers.
type Loader struct {
	fetcher  Fetcher
	logger   *slog.Logger
	metrics  *observability.Metrics
	snapshot atomic.Pointer[domain.Snapshot]
}

// New creates a Loader with the given source fetcher and observability.
func New(fetcher Fetcher, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		fetcher: fetcher,
		logger:  logger,
		metrics: metrics,
	}
}

// Load fetches the three sources in parallel, ingests and joins them, and
// publishes the snapshot. Any fetch failure aborts the whole load: no
// partial snapshot is ever published. Safe to call again to replace the
// snapshot with freshly fetched data.
func (l *Loader) Load(ctx context.Context) (*domain.Snapshot, error) {
	start := time.Now()

	var (
		atlas   *domain.Atlas
		langTab [][]string
		popTab  [][]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		atlas, err = l.fetcher.FetchAtlas(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		langTab, err = l.fetcher.FetchLanguageTable(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		popTab, err = l.fetcher.FetchPopulationTable(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	records, err := domain.RecordsFromTable(langTab)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	population, err := domain.PopulationFromTable(popTab)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	snapshot := domain.NewSnapshot(records, population, atlas)
	l.observe(snapshot, time.Since(start))
	l.snapshot.Store(snapshot)

	return snapshot, nil
}

// Snapshot returns the current snapshot, or nil before the first successful Load.
func (l *Loader) Snapshot() *domain.Snapshot {
	return l.snapshot.Load()
}

// CheckReadiness returns nil once a snapshot has been loaded, or an error
// describing why the service is not yet ready.
func (l *Loader) CheckReadiness(_ context.Context) error {
	if l.snapshot.Load() == nil {
		return errors.New("dataset has not been loaded yet")
	}
	return nil
}

func (l *Loader) observe(s *domain.Snapshot, elapsed time.Duration) {
	var speakerNulls, unknownStates int
	for _, rec := range s.Records {
		if rec.Speakers == nil {
			speakerNulls++
		}
		if !domain.IsKnownState(rec.State) {
			unknownStates++
		}
	}

	l.metrics.RecordsIngested.Add(float64(len(s.Records)))
	l.metrics.SpeakerNulls.Add(float64(speakerNulls))
	l.metrics.UnknownStates.Add(float64(unknownStates))
	l.metrics.PopulationStates.Set(float64(len(s.PopulationByState)))
	l.metrics.LoadDuration.Observe(elapsed.Seconds())
	l.metrics.SnapshotLoaded.Set(1)

	features := 0
	if s.Atlas != nil {
		features = len(s.Atlas.Features)
	}
	l.logger.Info("dataset loaded",
		"records", len(s.Records),
		"states", len(s.LanguageByState),
		"population_states", len(s.PopulationByState),
		"geometry_features", features,
		"speaker_nulls", speakerNulls,
		"unknown_states", unknownStates,
		"fingerprint", s.Fingerprint(),
		"elapsed", elapsed,
	)
}
