// Package collector provides the sensor registry: the ordered, immutable list
// of sensors polled by every run.
package collector

import (
	"fmt"
	"strings"

	"github.com/Guliveer/w1logger/internal/models"
)

// Registry holds the configured sensors in polling order.
type Registry struct {
	sensors []models.Sensor
}

// NewRegistry validates sensors and returns a registry holding a private copy.
// IDs must be unique and positive; device identifiers must be non-empty
// directory names.
func NewRegistry(sensors []models.Sensor) (*Registry, error) {
	if len(sensors) == 0 {
		return nil, fmt.Errorf("no sensors configured")
	}

	seen := make(map[int]string, len(sensors))
	for i, s := range sensors {
		if s.ID <= 0 {
			return nil, fmt.Errorf("sensor #%d (%s): id must be positive, got %d", i, s.Name, s.ID)
		}
		if prev, ok := seen[s.ID]; ok {
			return nil, fmt.Errorf("sensor #%d (%s): id %d already used by %s", i, s.Name, s.ID, prev)
		}
		if s.Device == "" {
			return nil, fmt.Errorf("sensor %d (%s): device is required", s.ID, s.Name)
		}
		if strings.ContainsAny(s.Device, `/\`) || s.Device == "." || s.Device == ".." {
			return nil, fmt.Errorf("sensor %d (%s): invalid device %q", s.ID, s.Name, s.Device)
		}
		seen[s.ID] = s.Name
	}

	r := &Registry{sensors: make([]models.Sensor, len(sensors))}
	copy(r.sensors, sensors)
	return r, nil
}

// Len returns the number of registered sensors.
func (r *Registry) Len() int { return len(r.sensors) }

// Sensors returns a copy of all registered sensors in polling order.
func (r *Registry) Sensors() []models.Sensor {
	result := make([]models.Sensor, len(r.sensors))
	copy(result, r.sensors)
	return result
}
