package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	upbun "github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	dbConfig "github.com/gopublicist/publicist/config/database"
	"github.com/gopublicist/publicist/internal/infra/database/bun"
	"github.com/gopublicist/publicist/pkg/logger"
)

// dsnFor builds the driver-specific connection string. sqlite's DSN is
// used as-is (already a "file:..." URI, only the pragma params are
// appended); postgres/mysql are assembled from the discrete fields.
func dsnFor(cfg *dbConfig.DatabaseConfig) (driverName, dsn string, err error) {
	switch cfg.Driver {
	case "sqlite", "":
		return "sqlite", sqliteDSN(cfg), nil
	case "postgres", "postgresql":
		return "pgx", fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name), nil
	case "mysql":
		return "mysql", fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true",
			cfg.User, cfg.Password, cfg.Host, strconv.Itoa(cfg.Port), cfg.Name), nil
	default:
		return "", "", fmt.Errorf("database: unsupported driver %q", cfg.Driver)
	}
}

// sqliteDSN appends the WAL/synchronous/busy_timeout pragmas the
// concurrency model's single-file-engine discipline calls for, since
// modernc.org/sqlite reads pragmas from DSN query parameters.
func sqliteDSN(cfg *dbConfig.DatabaseConfig) string {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = "file:publicist.db"
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	busyMs := cfg.BusyTimeoutSeconds * 1000
	if busyMs <= 0 {
		busyMs = 30000
	}
	sync := cfg.Synchronous
	if sync == "" {
		sync = "NORMAL"
	}
	return fmt.Sprintf("%s%s_pragma=journal_mode(WAL)&_pragma=synchronous(%s)&_pragma=busy_timeout(%d)",
		dsn, sep, sync, busyMs)
}

func dialectFor(driverName string) upbun.Dialect {
	switch driverName {
	case "sqlite":
		return sqlitedialect.New()
	case "pgx":
		return pgdialect.New()
	default:
		return mysqldialect.New()
	}
}

// OpenRaw opens the durable store's *sql.DB using the driver cfg selects,
// without wrapping it as bun.DB. The migration CLI uses this directly
// since goose drives plain database/sql.
func OpenRaw(cfg *dbConfig.DatabaseConfig) (driverName string, db *sql.DB, err error) {
	driverName, dsn, err := dsnFor(cfg)
	if err != nil {
		return "", nil, err
	}
	db, err = sql.Open(driverName, dsn)
	if err != nil {
		return "", nil, fmt.Errorf("database: opening connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return "", nil, fmt.Errorf("database: pinging: %w", err)
	}
	return driverName, db, nil
}

// GooseDialect maps the driver name OpenRaw/NewBunClient resolved to the
// dialect name goose.SetDialect expects.
func GooseDialect(driverName string) string {
	switch driverName {
	case "sqlite":
		return "sqlite3"
	case "pgx":
		return "postgres"
	default:
		return "mysql"
	}
}

// NewBunClient opens the durable store and wraps it as a bun.DB using the
// dialect matching cfg.Driver. sqlite is the default single-file engine;
// postgres and mysql serve multi-process deployments that share one
// durable store across worker processes.
func NewBunClient(cfg *dbConfig.DatabaseConfig) (*upbun.DB, error) {
	driverName, dsn, err := dsnFor(cfg)
	if err != nil {
		return nil, err
	}

	sqldb, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: opening connection: %w", err)
	}

	if err := sqldb.Ping(); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("database: pinging: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if driverName == "sqlite" && maxOpen == 0 {
		// A single writer connection avoids SQLITE_BUSY churn between
		// concurrent worker goroutines in-process; cross-process
		// concurrency still relies on the busy_timeout pragma above.
		maxOpen = 1
	}
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetMaxOpenConns(maxOpen)
	sqldb.SetConnMaxLifetime(time.Duration(cfg.MaxConnLifeTime) * time.Second)

	db := upbun.NewDB(sqldb, dialectFor(driverName))

	if cfg.Debug {
		db.AddQueryHook(&bun.DebugHook{})
	}

	logger.Infof("database: connection established driver=%s maxIdle=%d maxOpen=%d",
		cfg.Driver, cfg.MaxIdleConns, maxOpen)

	return db, nil
}

// IsLockedErr reports whether err is sqlite's "database is locked", the
// one transient error the admin write path retries with linear backoff.
func IsLockedErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "database is locked")
}

// lockedRetryBaseDelay is the first backoff step; each retry adds another
// multiple of it, up to the configured attempt count.
const lockedRetryBaseDelay = 50 * time.Millisecond

// WithLockedRetry runs fn, retrying with linear backoff while fn fails
// with sqlite's "database is locked", up to attempts tries.
func WithLockedRetry(attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !IsLockedErr(err) {
			return err
		}
		time.Sleep(lockedRetryBaseDelay * time.Duration(i+1))
	}
	return err
}
