package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver
	"github.com/moolen/troubleshooter/internal/logging"
	_ "modernc.org/sqlite" // sqlite driver
)

// ErrNotConnected is returned when the pool cannot hand out a live connection
var ErrNotConnected = errors.New("warehouse not connected")

// Querier is the query surface shared by *sql.DB, *sql.Conn and *sql.Tx
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Options configures Open
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Tables          Tables
}

// Warehouse is a pooled warehouse handle
type Warehouse struct {
	db      *sql.DB
	dialect Dialect
	tables  Tables
	logger  *logging.Logger
}

// Open creates the pool and verifies it with a ping
func Open(ctx context.Context, opts Options) (*Warehouse, error) {
	dialect, err := DialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}
	tables := opts.Tables
	if tables == nil {
		tables = DefaultTables()
	}
	if err := tables.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.Driver(), opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrNotConnected, err)
	}

	w := &Warehouse{db: db, dialect: dialect, tables: tables, logger: logging.GetLogger("warehouse")}
	w.logger.Info("Connected to %s warehouse", dialect.Driver())
	return w, nil
}

// New wraps an existing pool
func New(db *sql.DB, dialect Dialect, tables Tables) *Warehouse {
	if tables == nil {
		tables = DefaultTables()
	}
	return &Warehouse{db: db, dialect: dialect, tables: tables, logger: logging.GetLogger("warehouse")}
}

// Conn acquires one connection from the pool. The caller must Close it.
func (w *Warehouse) Conn(ctx context.Context) (*sql.Conn, error) {
	if w == nil || w.db == nil {
		return nil, ErrNotConnected
	}
	conn, err := w.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	return conn, nil
}

// Ping checks the pool
func (w *Warehouse) Ping(ctx context.Context) error {
	if w == nil || w.db == nil {
		return ErrNotConnected
	}
	if err := w.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	return nil
}

// DB returns the underlying pool
func (w *Warehouse) DB() *sql.DB {
	return w.db
}

// Dialect returns the SQL dialect of the pool
func (w *Warehouse) Dialect() Dialect {
	return w.dialect
}

// Tables returns the configured table names
func (w *Warehouse) Tables() Tables {
	return w.tables
}

// Fleet returns the fleet metadata accessor bound to the pool
func (w *Warehouse) Fleet() *Fleet {
	return NewFleet(w.db, w.dialect, w.tables)
}

// Close closes the pool
func (w *Warehouse) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}
