package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	// DefaultMaxOpenConns bounds the connection pool.
	DefaultMaxOpenConns = 5

	// DefaultBusyTimeout is how long a connection waits on a locked database.
	DefaultBusyTimeout = 5 * time.Second

	memoryPath = ":memory:"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ Storage = (*SQLiteStorage)(nil)

type options struct {
	maxOpenConns int
	busyTimeout  time.Duration
	now          func() time.Time
}

// Option configures a SQLiteStorage.
type Option func(*options)

// WithMaxOpenConns sets the pool size. Values below one are ignored.
func WithMaxOpenConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxOpenConns = n
		}
	}
}

// WithBusyTimeout sets SQLite's busy timeout.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}

// WithClock replaces time.Now for timestamps written by the store.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// NewSQLiteStorage opens (creating if needed) the database at dbPath and
// brings its schema up to date.
func NewSQLiteStorage(dbPath string, opts ...Option) (*SQLiteStorage, error) {
	o := options{
		maxOpenConns: DefaultMaxOpenConns,
		busyTimeout:  DefaultBusyTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if dbPath != memoryPath {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dataSourceName(dbPath, o.busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if dbPath == memoryPath {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(o.maxOpenConns)
	}
	db.SetMaxIdleConns(o.maxOpenConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStorage{db: db, now: o.now}, nil
}

func dataSourceName(dbPath string, busyTimeout time.Duration) string {
	pragmas := []string{
		"_pragma=foreign_keys(ON)",
		"_pragma=synchronous(NORMAL)",
		fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeout.Milliseconds()),
	}
	if dbPath == memoryPath {
		pragmas = append(pragmas, "_pragma=journal_mode(DELETE)")
	} else {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)")
	}
	return dbPath + "?" + strings.Join(pragmas, "&")
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) timestamp() int64 {
	return s.now().Unix()
}

// isUniqueViolation reports whether err is SQLite rejecting a duplicate key.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
}
