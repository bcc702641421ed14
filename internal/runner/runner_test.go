package runner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Guliveer/w1logger/internal/collector"
	"github.com/Guliveer/w1logger/internal/models"
	"github.com/Guliveer/w1logger/internal/store"
)

var sensors = []models.Sensor{
	{ID: 1, Name: "ambiant", Device: "10-000802775cc7"},
	{ID: 2, Name: "rack", Device: "10-000802776315"},
	{ID: 3, Name: "cellar", Device: "10-0008027763aa"},
}

// mapReader returns fixed values; devices missing from the map are absent.
type mapReader map[string]int

func (m mapReader) Read(_ context.Context, s models.Sensor) (int, error) {
	v, ok := m[s.Device]
	if !ok {
		return 0, collector.ErrDeviceAbsent
	}
	return v, nil
}

type fakeSink struct {
	path   string
	runs   []models.Run
	closed bool
}

func (s *fakeSink) Persist(_ context.Context, run models.Run) store.Result {
	s.runs = append(s.runs, run)
	return store.Result{Inserted: len(run.Samples)}
}

func (s *fakeSink) Close() error {
	s.closed = true
	return nil
}

type fakeOpener struct {
	sinks  map[string]*fakeSink
	fail   map[string]error
	opened []string
}

func (o *fakeOpener) open(_ context.Context, path string) (Sink, error) {
	o.opened = append(o.opened, path)
	if err := o.fail[path]; err != nil {
		return nil, err
	}
	if o.sinks == nil {
		o.sinks = make(map[string]*fakeSink)
	}
	s := &fakeSink{path: path}
	o.sinks[path] = s
	return s, nil
}

type runRecorder struct {
	runs []models.Run
}

func (r *runRecorder) ObserveRun(_ []models.Sensor, run models.Run) {
	r.runs = append(r.runs, run)
}

func newRunner(t *testing.T, reader collector.Reader, paths []string, opener *fakeOpener) *Runner {
	t.Helper()
	reg, err := collector.NewRegistry(sensors)
	if err != nil {
		t.Fatal(err)
	}
	r := New(reg, collector.NewAcquirer(reader, nil, nil), paths, opener.open, nil)
	r.now = func() time.Time { return time.Unix(1700000000, 500_000_000) }
	return r
}

func TestRun_PersistsSameRunToEveryStore(t *testing.T) {
	opener := &fakeOpener{}
	reader := mapReader{sensors[0].Device: 20875, sensors[2].Device: 12000}
	paths := []string{"temp.sqlite3", "/tmp/fallback.sqlite3"}

	r := newRunner(t, reader, paths, opener)
	rec := &runRecorder{}
	r.OnRun(rec)

	run, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(run.Samples) != 2 {
		t.Fatalf("got %d samples, want 2 (one sensor absent)", len(run.Samples))
	}
	if run.Timestamp.Unix() != 1700000000 || run.Timestamp.Nanosecond() != 0 {
		t.Errorf("timestamp = %v, want whole second 1700000000", run.Timestamp)
	}
	if len(opener.opened) != 2 || opener.opened[0] != paths[0] || opener.opened[1] != paths[1] {
		t.Errorf("opened = %v, want %v", opener.opened, paths)
	}
	for _, p := range paths {
		sink := opener.sinks[p]
		if len(sink.runs) != 1 {
			t.Fatalf("store %s persisted %d runs, want 1", p, len(sink.runs))
		}
		if len(sink.runs[0].Samples) != 2 {
			t.Errorf("store %s got %d rows, want 2", p, len(sink.runs[0].Samples))
		}
		if !sink.closed {
			t.Errorf("store %s not closed", p)
		}
	}
	if len(rec.runs) != 1 {
		t.Errorf("observer notified %d times, want 1", len(rec.runs))
	}
}

func TestRun_SecondStoreOpenFailureIsFatal(t *testing.T) {
	openErr := errors.New("unable to open database file")
	opener := &fakeOpener{fail: map[string]error{"/tmp/fallback.sqlite3": openErr}}
	reader := mapReader{sensors[0].Device: 20875, sensors[1].Device: 19000, sensors[2].Device: 12000}
	paths := []string{"temp.sqlite3", "/tmp/fallback.sqlite3", "/var/lib/w1logger/third.sqlite3"}

	_, err := newRunner(t, reader, paths, opener).Run(context.Background())

	var openFailure *StoreOpenError
	if !errors.As(err, &openFailure) {
		t.Fatalf("Run() error = %v, want *StoreOpenError", err)
	}
	if openFailure.Path != "/tmp/fallback.sqlite3" || !errors.Is(err, openErr) {
		t.Errorf("StoreOpenError = %+v", openFailure)
	}
	if len(opener.sinks["temp.sqlite3"].runs) != 1 {
		t.Error("first store should keep its rows")
	}
	if len(opener.opened) != 2 {
		t.Errorf("opened = %v, remaining stores must not be attempted", opener.opened)
	}
}

func TestRun_CancelledAcquisitionPersistsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opener := &fakeOpener{}
	_, err := newRunner(t, mapReader{}, []string{"temp.sqlite3"}, opener).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(opener.opened) != 0 {
		t.Errorf("opened = %v, want none", opener.opened)
	}
}

func TestRun_WithSQLiteStores(t *testing.T) {
	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "temp.sqlite3"), filepath.Join(dir, "fallback.sqlite3")}
	reader := mapReader{sensors[0].Device: 20875, sensors[1].Device: 19000}

	reg, err := collector.NewRegistry(sensors)
	if err != nil {
		t.Fatal(err)
	}
	r := New(reg, collector.NewAcquirer(reader, nil, nil), paths,
		StoreOpener(store.Options{CreateSchema: true}, nil), nil)

	run, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(run.Samples) != 2 || len(run.Skipped) != 1 {
		t.Errorf("run = %+v, want 2 samples and 1 skipped", run)
	}
}

func TestRun_UnreachableStorePath(t *testing.T) {
	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "temp.sqlite3"), filepath.Join(dir, "missing", "fallback.sqlite3")}

	reg, err := collector.NewRegistry(sensors)
	if err != nil {
		t.Fatal(err)
	}
	r := New(reg, collector.NewAcquirer(mapReader{sensors[0].Device: 20875}, nil, nil), paths,
		StoreOpener(store.Options{CreateSchema: true}, nil), nil)

	_, err = r.Run(context.Background())
	var openFailure *StoreOpenError
	if !errors.As(err, &openFailure) || openFailure.Path != paths[1] {
		t.Fatalf("Run() error = %v, want StoreOpenError for %s", err, paths[1])
	}
}
