// Package store persists runs into local SQLite databases.
// Every sample becomes one row of w1temp(time, id, value). Rows are inserted
// one by one without a transaction; a failing row is logged and skipped.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Guliveer/w1logger/internal/models"
)

const (
	driverName = "sqlite"

	// DefaultBusyTimeout is how long a write waits for another process's lock.
	DefaultBusyTimeout = 10 * time.Second

	insertQuery = "INSERT INTO w1temp (time, id, value) VALUES (?, ?, ?)"

	schemaQuery = `CREATE TABLE IF NOT EXISTS w1temp (
	time  INTEGER NOT NULL,
	id    INTEGER NOT NULL,
	value INTEGER NOT NULL
)`
)

// Observer is notified of every row insert.
type Observer interface {
	ObserveInsert(path string, err error)
}

// Options configures a Store.
type Options struct {
	BusyTimeout  time.Duration
	CreateSchema bool
	Observer     Observer
}

// Result summarises one Persist call.
type Result struct {
	Inserted int
	Failed   int
}

// Store is one SQLite target.
type Store struct {
	db       *sql.DB
	path     string
	observer Observer
	logger   *zap.Logger
}

// Open opens (creating if absent) the SQLite database at path and verifies
// the connection. The w1temp table is expected to exist unless
// opts.CreateSchema is set.
func Open(ctx context.Context, path string, opts Options, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = DefaultBusyTimeout
	}

	logger.Info("Opening store", zap.String("path", path))

	db, err := sql.Open(driverName, dsn(path, opts.BusyTimeout))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}

	s := New(db, path, opts, logger)
	if opts.CreateSchema {
		if err := s.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// New wraps an already opened database handle.
func New(db *sql.DB, path string, opts Options, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:       db,
		path:     path,
		observer: opts.Observer,
		logger:   logger,
	}
}

// EnsureSchema creates the w1temp table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaQuery); err != nil {
		return fmt.Errorf("creating w1temp table in %s: %w", s.path, err)
	}
	return nil
}

// Insert writes a single sample.
func (s *Store) Insert(ctx context.Context, sample models.Sample) error {
	_, err := s.db.ExecContext(ctx, insertQuery, sample.Unix(), sample.SensorID, sample.Value)
	return err
}

// Persist inserts every sample of run in order. Failed rows are logged with
// the query text and do not stop the remaining inserts.
func (s *Store) Persist(ctx context.Context, run models.Run) Result {
	var res Result
	for _, sample := range run.Samples {
		err := s.Insert(ctx, sample)
		if s.observer != nil {
			s.observer.ObserveInsert(s.path, err)
		}
		if err != nil {
			res.Failed++
			s.logger.Error("Insert failed",
				zap.String("path", s.path),
				zap.String("query", renderInsert(sample)),
				zap.Error(err))
			continue
		}
		res.Inserted++
		s.logger.Debug("Inserted sample",
			zap.String("path", s.path),
			zap.String("query", renderInsert(sample)))
	}
	return res
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// dsn builds a modernc.org/sqlite data source name with busy_timeout applied
// to every connection. The path is percent-escaped so that '#', '?' and '%'
// in a file name are not read as URI syntax.
func dsn(path string, busyTimeout time.Duration) string {
	escaped := (&url.URL{Path: path}).EscapedPath()
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", escaped, busyTimeout.Milliseconds())
}

// renderInsert formats the insert with its arguments inlined, for diagnostics only.
func renderInsert(sample models.Sample) string {
	return fmt.Sprintf("INSERT INTO w1temp (time, id, value) VALUES (%d, %d, %d)",
		sample.Unix(), sample.SensorID, sample.Value)
}
