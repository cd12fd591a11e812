package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Dialect identifies the SQL flavour behind a connection.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// PoolConfig sizes the connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DB is a sqlx handle that remembers its dialect.
type DB struct {
	*sqlx.DB
	Dialect Dialect
}

// ParseURL maps a DATABASE_URL onto a driver name and DSN.
//
//	postgres://…, postgresql://…   → pgx
//	sqlite://path, file:…, :memory: → modernc sqlite
func ParseURL(databaseURL string) (driver, dsn string, dialect Dialect, err error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return "pgx", databaseURL, DialectPostgres, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return "sqlite", sqliteDSN(strings.TrimPrefix(databaseURL, "sqlite://")), DialectSQLite, nil
	case strings.HasPrefix(databaseURL, "file:"), databaseURL == ":memory:":
		return "sqlite", sqliteDSN(databaseURL), DialectSQLite, nil
	default:
		return "", "", "", fmt.Errorf("unsupported DATABASE_URL scheme: %q", redact(databaseURL))
	}
}

// Open connects, applies pool settings and creates the schema.
func Open(ctx context.Context, databaseURL string, pool PoolConfig) (*DB, error) {
	driver, dsn, dialect, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	conn, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if dialect == DialectSQLite {
		// A single long-lived connection keeps :memory: databases coherent
		// and avoids SQLITE_BUSY on concurrent writers.
		conn.SetMaxOpenConns(1)
	} else {
		if pool.MaxOpenConns > 0 {
			conn.SetMaxOpenConns(pool.MaxOpenConns)
		}
		if pool.MaxIdleConns > 0 {
			conn.SetMaxIdleConns(pool.MaxIdleConns)
		}
		if pool.ConnMaxLifetime > 0 {
			conn.SetConnMaxLifetime(pool.ConnMaxLifetime)
		}
	}

	db := &DB{DB: conn, Dialect: dialect}
	if err := db.Migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the users and login_events tables if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	stmts := postgresSchema
	if db.Dialect == DialectSQLite {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// sqliteDSN stores timestamps in a sortable RFC 3339-like layout.
func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_time_format=sqlite"
}

func redact(databaseURL string) string {
	if i := strings.Index(databaseURL, "@"); i >= 0 {
		if j := strings.Index(databaseURL, "://"); j >= 0 && j < i {
			return databaseURL[:j+3] + "***" + databaseURL[i:]
		}
	}
	return databaseURL
}
