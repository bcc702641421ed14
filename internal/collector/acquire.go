package collector

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/w1logger/internal/models"
)

// Acquirer drives a Reader over every sensor of a registry.
type Acquirer struct {
	reader   Reader
	observer Observer
	logger   *zap.Logger
}

// NewAcquirer creates an acquisition loop around reader.
// observer and logger may be nil.
func NewAcquirer(reader Reader, observer Observer, logger *zap.Logger) *Acquirer {
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Acquirer{
		reader:   reader,
		observer: observer,
		logger:   logger,
	}
}

// AcquireAll reads every sensor in registry order and returns the run.
//
// Transient read errors are retried immediately with no limit. A sensor whose
// device is absent is recorded in Run.Skipped and the loop moves on. Every
// sample carries timestamp.
//
// The only way out of an endlessly failing sensor is ctx: when it is done,
// AcquireAll returns the samples gathered so far together with ctx.Err().
func (a *Acquirer) AcquireAll(ctx context.Context, registry *Registry, timestamp time.Time) (models.Run, error) {
	run := models.Run{
		Timestamp: timestamp,
		Samples:   make([]models.Sample, 0, registry.Len()),
	}

	for _, sensor := range registry.Sensors() {
		value, attempts, err := a.acquire(ctx, sensor)
		if err != nil {
			if !errors.Is(err, ErrDeviceAbsent) {
				return run, err
			}
			a.logger.Error("Sensor device error, skipping",
				zap.Int("sensor", sensor.ID),
				zap.String("name", sensor.Name),
				zap.Error(err))
			run.Skipped = append(run.Skipped, sensor.ID)
			continue
		}

		a.logger.Info("Sensor read",
			zap.Int("sensor", sensor.ID),
			zap.String("name", sensor.Name),
			zap.Int("value", value),
			zap.Int("attempts", attempts))

		run.Samples = append(run.Samples, models.Sample{
			SensorID:  sensor.ID,
			Timestamp: timestamp,
			Value:     value,
		})
	}

	return run, nil
}

// acquire reads one sensor until it yields a value or a non-transient error.
func (a *Acquirer) acquire(ctx context.Context, sensor models.Sensor) (int, int, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, attempt - 1, err
		}

		value, err := a.reader.Read(ctx, sensor)
		a.observer.ObserveRead(sensor, err)
		if err == nil {
			return value, attempt, nil
		}
		if !IsTransient(err) {
			return 0, attempt, err
		}

		a.logger.Warn("Sensor read error, retrying",
			zap.Int("sensor", sensor.ID),
			zap.Int("attempt", attempt),
			zap.String("reason", Reason(err)),
			zap.Error(err))
	}
}
