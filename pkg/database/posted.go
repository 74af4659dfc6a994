package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// PostedStore records which article URLs have already been published.
//
// The articles table layout matches databases written by earlier releases, so URL
// uniqueness is a contract of the callers rather than a storage constraint.
type PostedStore struct {
	db *Database
}

// OpenPostedStore opens the database and creates the articles table if it is missing
func OpenPostedStore(ctx context.Context, config Config) (*PostedStore, error) {
	name := displayName(config.Driver, config.Path)

	db, err := NewDatabase(config)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", name, err)
	}

	store := &PostedStore{db: db}
	if err := store.initializeSchema(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database %s: %w", name, err)
	}

	return store, nil
}

// displayName hides Postgres connection strings, which may carry credentials
func displayName(driver, path string) string {
	if driver == DriverPostgres {
		return "postgres"
	}
	return path
}

func (s *PostedStore) initializeSchema(ctx context.Context) error {
	exists, err := s.tableExists(ctx)
	if err != nil {
		return err
	}

	if !exists {
		createArticles := `CREATE TABLE articles (id INTEGER PRIMARY KEY, url TEXT)`
		if s.db.Driver() == DriverPostgres {
			createArticles = `CREATE TABLE articles (id SERIAL PRIMARY KEY, url TEXT)`
		}
		if err := s.db.ExecuteSchema(ctx, createArticles); err != nil {
			return fmt.Errorf("failed to create articles table: %w", err)
		}
		slog.Info("Persistence table was not found, so it was created", "database", displayName(s.db.Driver(), s.db.Path()))
	}

	if err := s.db.ExecuteSchema(ctx, `CREATE INDEX IF NOT EXISTS idx_articles_url ON articles(url)`); err != nil {
		return fmt.Errorf("failed to create articles index: %w", err)
	}

	return nil
}

func (s *PostedStore) tableExists(ctx context.Context) (bool, error) {
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='articles'`
	if s.db.Driver() == DriverPostgres {
		query = `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = 'articles'`
	}

	var count int64
	if err := s.db.DB().QueryRowContext(ctx, query).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count tables: %w", err)
	}
	return count > 0, nil
}

// WasPosted reports whether the exact URL has been recorded
func (s *PostedStore) WasPosted(ctx context.Context, url string) (bool, error) {
	var count int64
	err := s.db.DB().QueryRowContext(ctx, s.db.Rebind(`SELECT COUNT(*) FROM articles WHERE url = ?`), url).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count matches for %s: %w", url, err)
	}
	return count > 0, nil
}

// MarkPosted inserts a record for the URL. It does not check for an existing
// record; call WasPosted first.
func (s *PostedStore) MarkPosted(ctx context.Context, url string) error {
	if _, err := s.db.DB().ExecContext(ctx, s.db.Rebind(`INSERT INTO articles (url) VALUES (?)`), url); err != nil {
		return fmt.Errorf("failed to record %s as posted: %w", url, err)
	}
	return nil
}

// MarkPostedIfAbsent inserts a record only when none exists for the URL and
// reports whether a row was added. Check and insert run as one statement inside a
// transaction.
func (s *PostedStore) MarkPostedIfAbsent(ctx context.Context, url string) (bool, error) {
	inserted := false
	query := s.db.Rebind(`
		INSERT INTO articles (url)
		SELECT CAST(? AS TEXT)
		WHERE NOT EXISTS (SELECT 1 FROM articles WHERE url = ?)`)

	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, url, url)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		inserted = rows > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to record %s as posted: %w", url, err)
	}

	return inserted, nil
}

// Count returns the number of recorded URLs
func (s *PostedStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posted articles: %w", err)
	}
	return count, nil
}

// Database returns the underlying database
func (s *PostedStore) Database() *Database {
	return s.db
}

// Close closes the underlying database
func (s *PostedStore) Close() error {
	return s.db.Close()
}
