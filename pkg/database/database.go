package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lepinkainen/feed-relay/pkg/filesystem"

	_ "github.com/lib/pq"  // Postgres driver
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	// dbCache stores active database connections, keyed by driver and path
	dbCache = make(map[string]*Database)
	// cacheMutex protects the dbCache
	cacheMutex = &sync.Mutex{}
)

// Database represents a thread-safe database connection
type Database struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
	driver string
	// refs counts NewDatabase callers still holding the connection
	refs int
}

// Config holds database configuration
type Config struct {
	// Path is a file path for SQLite or a connection string for Postgres
	Path    string
	Driver  string
	Timeout time.Duration
}

// DefaultConfig returns the default database configuration
func DefaultConfig() Config {
	return Config{
		Driver:  DriverSQLite,
		Timeout: 30 * time.Second,
	}
}

// NewDatabase creates a new database connection
func NewDatabase(config Config) (*Database, error) {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	if config.Driver == "" {
		config.Driver = DriverSQLite
	}

	key := cacheKey(config.Driver, config.Path)
	if db, ok := dbCache[key]; ok {
		db.refs++
		return db, nil
	}
	if config.Driver != DriverSQLite && config.Driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}
	if config.Path == "" {
		return nil, fmt.Errorf("database path is empty")
	}

	if config.Driver == DriverSQLite {
		if err := filesystem.EnsureDirectoryExists(config.Path); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, err
	}

	if config.Driver == DriverSQLite {
		if err := configureSQLite(db); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("Failed to close database", "error", closeErr)
			}
			return nil, err
		}
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
		return nil, err
	}

	database := &Database{
		db:     db,
		dbPath: config.Path,
		driver: config.Driver,
		refs:   1,
	}

	dbCache[key] = database

	return database, nil
}

func cacheKey(driver, path string) string {
	return driver + "\x00" + path
}

func configureSQLite(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil { // 5 second timeout for lock contention
		return err
	}

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return err
	}

	if !strings.EqualFold(journalMode, "wal") {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return err
		}
	}

	pragmas := []string{
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=memory",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	return nil
}

// Close releases this holder's reference. The connection is closed once the
// last holder releases it.
func (db *Database) Close() error {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	if db.refs == 0 {
		return nil
	}
	db.refs--
	if db.refs > 0 {
		return nil
	}

	key := cacheKey(db.driver, db.dbPath)
	if dbCache[key] == db {
		delete(dbCache, key)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// DB returns the underlying sql.DB instance (thread-safe)
func (db *Database) DB() *sql.DB {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.db
}

// Path returns the database file path
func (db *Database) Path() string {
	return db.dbPath
}

// Driver returns the database driver name
func (db *Database) Driver() string {
	return db.driver
}

// Rebind rewrites "?" placeholders into the numbered form Postgres expects
func (db *Database) Rebind(query string) string {
	if db.driver != DriverPostgres {
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

// ExecuteSchema executes a schema statement
func (db *Database) ExecuteSchema(ctx context.Context, schema string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.db.ExecContext(ctx, schema)
	return err
}

// Transaction executes a function within a database transaction
func (db *Database) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				slog.Error("Failed to rollback transaction", "error", rollbackErr)
			}
			panic(r)
		}
	}()

	err = fn(tx)
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			slog.Error("Failed to rollback transaction", "error", rollbackErr)
		}
		return err
	}

	return tx.Commit()
}
