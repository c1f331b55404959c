package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	apperrors "studytrack/internal/platform/errors"
	"studytrack/internal/platform/tx"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
)

// TimeLayout is fixed width so TEXT columns order chronologically on every dialect.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

const migrateTimeout = 10 * time.Second

// Querier is the subset shared by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is the durable record store connection. A nil *DB behaves as a store
// that is permanently unavailable.
type DB struct {
	sql     *sql.DB
	dialect Dialect

	mu       sync.Mutex
	migrated bool
}

// Open connects to driver (sqlite, mysql or postgres). Schema migration is
// attempted immediately and retried on first use when the server is down, so
// an unreachable remote store does not prevent startup.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		dialect = SQLite
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("configure sqlite: %w", err)
		}
	case "mysql":
		dialect = MySQL
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql database: %w", err)
		}
	case "postgres", "pgx":
		dialect = Postgres
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	d := &DB{sql: db, dialect: dialect}
	migrateCtx, cancel := context.WithTimeout(ctx, migrateTimeout)
	defer cancel()
	if err := d.ensureSchema(migrateCtx); err != nil {
		if IsUnavailable(err) {
			return d, err
		}
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Dialect() Dialect {
	if d == nil {
		return ""
	}
	return d.dialect
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// Shutdown lets the injector close the pool.
func (d *DB) Shutdown() error { return d.Close() }

func (d *DB) Ping(ctx context.Context) error {
	if d == nil || d.sql == nil {
		return apperrors.ErrStoreUnavailable
	}
	return Classify(d.sql.PingContext(ctx))
}

// Within runs fn inside one transaction; nested calls join the outer one.
func (d *DB) Within(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := tx.FromContext(ctx); ok {
		return fn(ctx)
	}
	if d == nil || d.sql == nil {
		return apperrors.ErrStoreUnavailable
	}
	if err := d.ensureSchema(ctx); err != nil {
		return err
	}
	sqlTx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return Classify(fmt.Errorf("begin tx: %w", err))
	}
	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return Classify(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// Querier returns the transaction bound to ctx, or the pool.
func (d *DB) Querier(ctx context.Context) (Querier, error) {
	if sqlTx, ok := tx.FromContext(ctx); ok {
		return sqlTx, nil
	}
	if d == nil || d.sql == nil {
		return nil, apperrors.ErrStoreUnavailable
	}
	if err := d.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return d.sql, nil
}

// Rebind rewrites ? placeholders into the dialect's form.
func (d *DB) Rebind(query string) string {
	if d.Dialect() != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d *DB) ensureSchema(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.migrated {
		return nil
	}
	if err := Migrate(ctx, d.sql, d.dialect); err != nil {
		return Classify(err)
	}
	d.migrated = true
	return nil
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func ParseTime(raw string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", raw, err)
	}
	return t, nil
}

func Bool(v bool) int {
	if v {
		return 1
	}
	return 0
}
