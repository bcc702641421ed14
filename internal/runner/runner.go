// Package runner sequences one logger run: acquire every sensor once, then
// write the same run to each configured store in order.
// It does not loop; repetition is left to an external scheduler.
package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/w1logger/internal/collector"
	"github.com/Guliveer/w1logger/internal/models"
	"github.com/Guliveer/w1logger/internal/store"
)

// Sink is an opened store target.
type Sink interface {
	Persist(ctx context.Context, run models.Run) store.Result
	Close() error
}

// OpenFunc opens the store at path.
type OpenFunc func(ctx context.Context, path string) (Sink, error)

// RunObserver receives the completed acquisition.
type RunObserver interface {
	ObserveRun(sensors []models.Sensor, run models.Run)
}

// StoreOpenError reports a store path that could not be opened.
// It aborts the whole run.
type StoreOpenError struct {
	Path string
	Err  error
}

func (e *StoreOpenError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Path, e.Err)
}

func (e *StoreOpenError) Unwrap() error { return e.Err }

// Runner wires the registry, the acquisition loop and the store targets.
type Runner struct {
	registry *collector.Registry
	acquirer *collector.Acquirer
	paths    []string
	open     OpenFunc
	observer RunObserver
	logger   *zap.Logger

	now func() time.Time
}

// New creates a Runner. paths are tried in the given order.
func New(registry *collector.Registry, acquirer *collector.Acquirer, paths []string, open OpenFunc, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := make([]string, len(paths))
	copy(p, paths)
	return &Runner{
		registry: registry,
		acquirer: acquirer,
		paths:    p,
		open:     open,
		logger:   logger,
		now:      time.Now,
	}
}

// OnRun sets the observer notified once acquisition has completed.
func (r *Runner) OnRun(o RunObserver) {
	r.observer = o
}

// Run performs one acquisition and persists it to every store path.
//
// The timestamp is taken once, before the first read. If acquisition is
// cancelled nothing is persisted. A store that fails to open ends the run with
// a *StoreOpenError; stores already written keep their rows. Failed row
// inserts are logged by the store and do not make Run fail.
func (r *Runner) Run(ctx context.Context) (models.Run, error) {
	timestamp := r.now().UTC().Truncate(time.Second)

	r.logger.Info("Acquiring sensors",
		zap.Int("sensors", r.registry.Len()),
		zap.Int64("timestamp", timestamp.Unix()))

	run, err := r.acquirer.AcquireAll(ctx, r.registry, timestamp)
	if err != nil {
		return run, fmt.Errorf("acquisition aborted: %w", err)
	}

	if r.observer != nil {
		r.observer.ObserveRun(r.registry.Sensors(), run)
	}

	r.logger.Info("Acquisition complete",
		zap.Int("samples", len(run.Samples)),
		zap.Ints("skipped", run.Skipped))

	// A finished acquisition is written out even if ctx is cancelled meanwhile;
	// the store busy timeout bounds each insert.
	persistCtx := context.WithoutCancel(ctx)

	for _, path := range r.paths {
		sink, err := r.open(persistCtx, path)
		if err != nil {
			return run, &StoreOpenError{Path: path, Err: err}
		}

		res := sink.Persist(persistCtx, run)
		if err := sink.Close(); err != nil {
			r.logger.Warn("Closing store failed", zap.String("path", path), zap.Error(err))
		}

		r.logger.Info("Store updated",
			zap.String("path", path),
			zap.Int("inserted", res.Inserted),
			zap.Int("failed", res.Failed))
	}

	return run, nil
}

// StoreOpener returns an OpenFunc backed by store.Open.
func StoreOpener(opts store.Options, logger *zap.Logger) OpenFunc {
	return func(ctx context.Context, path string) (Sink, error) {
		s, err := store.Open(ctx, path, opts, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
