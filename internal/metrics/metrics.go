// Package metrics exports run statistics in the Prometheus text format.
// The logger is a one-shot process, so instead of serving /metrics it writes
// a file for the node_exporter textfile collector at the end of each run.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Guliveer/w1logger/internal/collector"
	"github.com/Guliveer/w1logger/internal/models"
)

const namespace = "w1logger"

// Metrics holds the collectors of a single process run.
type Metrics struct {
	registry *prometheus.Registry

	reads       *prometheus.CounterVec
	readErrors  *prometheus.CounterVec
	inserts     *prometheus.CounterVec
	insertFails *prometheus.CounterVec
	temperature *prometheus.GaugeVec
	skipped     prometheus.Gauge
	lastRun     prometheus.Gauge
	hostInfo    *prometheus.GaugeVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_reads_total",
			Help:      "Read attempts per sensor, including failed ones.",
		}, []string{"sensor"}),
		readErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_read_errors_total",
			Help:      "Failed read attempts per sensor and reason.",
		}, []string{"sensor", "reason"}),
		inserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_inserts_total",
			Help:      "Rows written per store path.",
		}, []string{"path"}),
		insertFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_insert_errors_total",
			Help:      "Rows that failed to insert per store path.",
		}, []string{"path"}),
		temperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "temperature_celsius",
			Help:      "Last acquired temperature per sensor.",
		}, []string{"sensor", "name"}),
		skipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sensors_skipped",
			Help:      "Sensors skipped in the last run because their device was absent.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Shared timestamp of the last completed acquisition.",
		}),
		hostInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "host_info",
			Help:      "Host the sensors are attached to. Always 1.",
		}, []string{"hostname", "platform", "kernel"}),
	}

	m.registry.MustRegister(
		m.reads, m.readErrors,
		m.inserts, m.insertFails,
		m.temperature, m.skipped, m.lastRun,
		m.hostInfo,
	)
	return m
}

// ObserveRead implements collector.Observer.
func (m *Metrics) ObserveRead(sensor models.Sensor, err error) {
	id := strconv.Itoa(sensor.ID)
	m.reads.WithLabelValues(id).Inc()
	if err != nil {
		m.readErrors.WithLabelValues(id, collector.Reason(err)).Inc()
	}
}

// ObserveInsert implements store.Observer.
func (m *Metrics) ObserveInsert(path string, err error) {
	if err != nil {
		m.insertFails.WithLabelValues(path).Inc()
		return
	}
	m.inserts.WithLabelValues(path).Inc()
}

// ObserveRun records the outcome of a completed acquisition.
func (m *Metrics) ObserveRun(sensors []models.Sensor, run models.Run) {
	names := make(map[int]string, len(sensors))
	for _, s := range sensors {
		names[s.ID] = s.Name
	}
	for _, sample := range run.Samples {
		m.temperature.WithLabelValues(strconv.Itoa(sample.SensorID), names[sample.SensorID]).
			Set(float64(sample.Value) / 1000)
	}
	m.skipped.Set(float64(len(run.Skipped)))
	m.lastRun.Set(float64(run.Timestamp.Unix()))
}

// SetHostInfo publishes the host identity.
func (m *Metrics) SetHostInfo(info collector.HostInfo) {
	m.hostInfo.WithLabelValues(info.Hostname, info.Platform, info.KernelVersion).Set(1)
}

// WriteTextfile atomically writes all metrics to path.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
