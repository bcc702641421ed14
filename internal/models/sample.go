// Package models defines the data structures shared by the acquisition,
// persistence and orchestration packages.
package models

import "time"

// Sensor describes one one-wire temperature probe.
// Sensors are loaded from configuration at startup and never modified.
type Sensor struct {
	ID     int    `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Device string `yaml:"device" json:"device"` // e.g. "10-000802775cc7"
}

// Sample is one checksum-valid reading of a sensor.
type Sample struct {
	SensorID  int       `json:"sensor_id"`
	Timestamp time.Time `json:"timestamp"`
	Value     int       `json:"value"` // millidegrees Celsius
}

// Unix returns the sample timestamp in Unix seconds, as stored in w1temp.time.
func (s Sample) Unix() int64 {
	return s.Timestamp.Unix()
}

// Run is the result of one acquisition pass over all sensors.
// All samples share Timestamp. Sensors whose device was absent are listed in
// Skipped and have no sample.
type Run struct {
	Timestamp time.Time `json:"timestamp"`
	Samples   []Sample  `json:"samples"`
	Skipped   []int     `json:"skipped,omitempty"`
}
