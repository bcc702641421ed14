// Package collector reads one-wire temperature sensors and assembles the
// per-run sample set.
package collector

import (
	"context"
	"errors"

	"github.com/Guliveer/w1logger/internal/models"
)

// Reader reads the current value of a single sensor.
type Reader interface {
	// Read returns the sensor temperature in millidegrees Celsius.
	// Errors wrapping ErrDeviceAbsent are permanent for the current run;
	// any other error (except a context error) is transient.
	Read(ctx context.Context, sensor models.Sensor) (int, error)
}

// Observer is notified of every read attempt. Implementations must not block.
type Observer interface {
	ObserveRead(sensor models.Sensor, err error)
}

var (
	// ErrDeviceAbsent means the device status file could not be opened.
	ErrDeviceAbsent = errors.New("device not present")

	// ErrBadChecksum means the kernel did not report a valid CRC for the read.
	ErrBadChecksum = errors.New("invalid checksum")

	// ErrNoValue means the data line carries no parsable t= field.
	ErrNoValue = errors.New("temperature value missing")

	// ErrShortRead means the status file ended before both lines were read.
	ErrShortRead = errors.New("short read")
)

// IsTransient reports whether err should be answered with another read attempt.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDeviceAbsent) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// Reason returns a short label for err, used in log fields and metric labels.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDeviceAbsent):
		return "device_absent"
	case errors.Is(err, ErrBadChecksum):
		return "checksum"
	case errors.Is(err, ErrNoValue):
		return "no_value"
	case errors.Is(err, ErrShortRead):
		return "short_read"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}

type nopObserver struct{}

func (nopObserver) ObserveRead(models.Sensor, error) {}
