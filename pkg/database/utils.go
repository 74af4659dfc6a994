package database

import (
	"context"
	"fmt"
	"os"
)

// DatabaseExists checks if a database file exists
func DatabaseExists(dbPath string) bool {
	_, err := os.Stat(dbPath)
	return !os.IsNotExist(err)
}

// GetDatabaseSize returns the size of the database file in bytes
func GetDatabaseSize(dbPath string) (int64, error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		return 0, fmt.Errorf("failed to get database file info: %w", err)
	}

	return info.Size(), nil
}

// GetDatabaseInfo returns information about the database
func GetDatabaseInfo(ctx context.Context, db *Database) (map[string]any, error) {
	info := map[string]any{
		"driver": db.Driver(),
	}

	if db.Driver() == DriverPostgres {
		var version string
		if err := db.DB().QueryRowContext(ctx, "SHOW server_version").Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to get Postgres version: %w", err)
		}
		info["server_version"] = version
		return info, nil
	}

	var version string
	if err := db.DB().QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return nil, fmt.Errorf("failed to get SQLite version: %w", err)
	}
	info["sqlite_version"] = version

	if size, err := GetDatabaseSize(db.Path()); err == nil {
		info["file_size_bytes"] = size
	}

	var tableCount int
	err := db.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&tableCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get table count: %w", err)
	}
	info["table_count"] = tableCount

	return info, nil
}
