package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"doclib/logging"

	_ "modernc.org/sqlite"
)

// Config holds database configuration
type Config struct {
	Path              string        `env:"DB_PATH" default:"./doclib.db"`
	MaxOpenConns      int           `env:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns      int           `env:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime   time.Duration `env:"DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime   time.Duration `env:"DB_CONN_MAX_IDLE_TIME" default:"15m"`
	BusyTimeoutMs     int           `env:"DB_BUSY_TIMEOUT_MS" default:"5000"`
	EnableForeignKeys bool          `env:"DB_ENABLE_FOREIGN_KEYS" default:"true"`
	EnableWAL         bool          `env:"DB_ENABLE_WAL" default:"true"`
}

// Database wraps the SQL database connections and provides managed access
type Database struct {
	readDB  *sql.DB // Connection pool for reads
	writeDB *sql.DB // Serialized connection for writes
	config  Config
	logger  *logging.Logger
}

// New opens the read pool and the single-connection write pool, then applies migrations.
func New(config Config, logger *logging.Logger) (*Database, error) {
	dsn := buildDSN(config)
	dbExists := checkDatabaseExists(config.Path)

	logger.Database("Opening database connections",
		"path", config.Path,
		"exists", dbExists,
		"read_max_open_conns", config.MaxOpenConns)

	readDB, err := openPool(dsn, config.MaxOpenConns, config.MaxIdleConns, config)
	if err != nil {
		return nil, fmt.Errorf("open read pool: %w", err)
	}
	// One write connection serializes writers; SQLite allows a single writer anyway.
	writeDB, err := openPool(dsn, 1, 1, config)
	if err != nil {
		readDB.Close()
		return nil, fmt.Errorf("open write pool: %w", err)
	}

	database := &Database{readDB: readDB, writeDB: writeDB, config: config, logger: logger}

	if err := database.initialize(); err != nil {
		database.closePools()
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	if err := database.runMigrations(); err != nil {
		database.closePools()
		return nil, fmt.Errorf("run database migrations: %w", err)
	}

	logger.Database("Database ready", "path", config.Path, "existed", dbExists, "wal_mode", config.EnableWAL)
	return database, nil
}

func openPool(dsn string, maxOpen, maxIdle int, config Config) (*sql.DB, error) {
	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(maxOpen)
	pool.SetMaxIdleConns(maxIdle)
	pool.SetConnMaxLifetime(config.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(config.ConnMaxIdleTime)
	return pool, nil
}

// buildDSN constructs the modernc SQLite DSN. Pragmas in the DSN apply to every pooled connection.
func buildDSN(config Config) string {
	pragmas := []string{fmt.Sprintf("busy_timeout(%d)", config.BusyTimeoutMs)}
	if config.EnableWAL {
		pragmas = append(pragmas, "journal_mode(WAL)")
	}
	if config.EnableForeignKeys {
		pragmas = append(pragmas, "foreign_keys(1)")
	}
	pragmas = append(pragmas, "synchronous(NORMAL)", "temp_store(MEMORY)", "cache_size(-16000)")

	return "file:" + config.Path + "?_pragma=" + strings.Join(pragmas, "&_pragma=")
}

// initialize pings both pools and reports the effective journal mode.
func (d *Database) initialize() error {
	if err := d.readDB.Ping(); err != nil {
		return fmt.Errorf("ping read pool: %w", err)
	}
	if err := d.writeDB.Ping(); err != nil {
		return fmt.Errorf("ping write pool: %w", err)
	}

	if d.config.EnableWAL {
		var journalMode string
		if err := d.writeDB.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
			return fmt.Errorf("read journal mode: %w", err)
		}
		if journalMode != "wal" {
			d.logger.Warn("WAL mode not enabled", "journal_mode", journalMode)
		}
	}

	d.logPoolStats()
	return nil
}

func (d *Database) closePools() {
	d.readDB.Close()
	d.writeDB.Close()
}

// ReadDB returns the read database connection
func (d *Database) ReadDB() *sql.DB {
	return d.readDB
}

// WriteDB returns the write database connection
func (d *Database) WriteDB() *sql.DB {
	return d.writeDB
}

// Close truncates the WAL and closes both pools.
func (d *Database) Close() error {
	if d.config.EnableWAL {
		if _, err := d.writeDB.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			d.logger.Warn("WAL checkpoint failed", "error", err)
		}
	}
	readErr := d.readDB.Close()
	writeErr := d.writeDB.Close()
	if err := errors.Join(readErr, writeErr); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	d.logger.Database("Database closed", "path", d.config.Path)
	return nil
}

// Health pings both pools and reports their statistics.
func (d *Database) Health(ctx context.Context) (map[string]interface{}, error) {
	if err := d.readDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping read pool: %w", err)
	}
	if err := d.writeDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping write pool: %w", err)
	}
	return map[string]interface{}{
		"read_pool":  poolStats(d.readDB.Stats()),
		"write_pool": poolStats(d.writeDB.Stats()),
	}, nil
}

func poolStats(s sql.DBStats) map[string]interface{} {
	return map[string]interface{}{
		"max_open_conns":   s.MaxOpenConnections,
		"open_connections": s.OpenConnections,
		"in_use":           s.InUse,
		"idle":             s.Idle,
		"wait_count":       s.WaitCount,
		"wait_duration":    s.WaitDuration.String(),
	}
}

func (d *Database) logPoolStats() {
	for name, pool := range map[string]*sql.DB{"read": d.readDB, "write": d.writeDB} {
		s := pool.Stats()
		d.logger.Database("Connection pool stats",
			"pool", name,
			"max_open_conns", s.MaxOpenConnections,
			"open_connections", s.OpenConnections,
			"idle", s.Idle)
	}
}

// WithTx runs fn in a write-pool transaction, rolling back when fn fails.
func (d *Database) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := d.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			d.logger.Error("Failed to rollback transaction", "error", rollbackErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
