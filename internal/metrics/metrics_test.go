package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Guliveer/w1logger/internal/collector"
	"github.com/Guliveer/w1logger/internal/models"
)

var sensors = []models.Sensor{
	{ID: 1, Name: "ambiant", Device: "10-000802775cc7"},
	{ID: 2, Name: "rack", Device: "10-000802776315"},
}

func TestObserveRead(t *testing.T) {
	m := New()

	m.ObserveRead(sensors[0], collector.ErrBadChecksum)
	m.ObserveRead(sensors[0], collector.ErrBadChecksum)
	m.ObserveRead(sensors[0], nil)
	m.ObserveRead(sensors[1], collector.ErrDeviceAbsent)

	if got := testutil.ToFloat64(m.reads.WithLabelValues("1")); got != 3 {
		t.Errorf("reads{sensor=1} = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.readErrors.WithLabelValues("1", "checksum")); got != 2 {
		t.Errorf("read_errors{sensor=1,reason=checksum} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.readErrors.WithLabelValues("2", "device_absent")); got != 1 {
		t.Errorf("read_errors{sensor=2,reason=device_absent} = %v, want 1", got)
	}
}

func TestObserveInsert(t *testing.T) {
	m := New()

	m.ObserveInsert("temp.sqlite3", nil)
	m.ObserveInsert("temp.sqlite3", nil)
	m.ObserveInsert("/tmp/fallback.sqlite3", errors.New("no such table: w1temp"))

	if got := testutil.ToFloat64(m.inserts.WithLabelValues("temp.sqlite3")); got != 2 {
		t.Errorf("inserts{temp.sqlite3} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.insertFails.WithLabelValues("/tmp/fallback.sqlite3")); got != 1 {
		t.Errorf("insert_errors{fallback} = %v, want 1", got)
	}
}

func TestObserveRun(t *testing.T) {
	m := New()
	ts := time.Unix(1700000000, 0)

	m.ObserveRun(sensors, models.Run{
		Timestamp: ts,
		Samples:   []models.Sample{{SensorID: 1, Timestamp: ts, Value: 20875}},
		Skipped:   []int{2},
	})

	if got := testutil.ToFloat64(m.temperature.WithLabelValues("1", "ambiant")); got != 20.875 {
		t.Errorf("temperature{1} = %v, want 20.875", got)
	}
	if got := testutil.ToFloat64(m.skipped); got != 1 {
		t.Errorf("skipped = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.lastRun); got != 1700000000 {
		t.Errorf("last_run = %v, want 1700000000", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveRead(sensors[0], nil)
	m.SetHostInfo(collector.HostInfo{Hostname: "pi", Platform: "raspbian", KernelVersion: "6.1.21"})

	path := filepath.Join(t.TempDir(), "w1logger.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`w1logger_sensor_reads_total{sensor="1"} 1`,
		`w1logger_host_info{hostname="pi",kernel="6.1.21",platform="raspbian"} 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q:\n%s", want, data)
		}
	}
}
