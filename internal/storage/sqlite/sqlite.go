// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver. One table of email addresses is well within what it handles.
//
// Importing go-sqlite3 registers the "sqlite3" driver with database/sql;
// its Error type also tells us when the UNIQUE constraint fired.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/sixth-rift-api/internal/storage"
	"github.com/aanand-mishra/sixth-rift-api/internal/storage/migrations"
	"github.com/aanand-mishra/sixth-rift-api/internal/types"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at path, applies the embedded goose
// migrations (creating the subscribers table on first start), and returns
// a ready-to-use *SQLite.
func New(ctx context.Context, path string) (*SQLite, error) {
	// Make sure the directory holding the .db file exists.
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create directory: %w", err)
		}
	}

	// sql.Open does NOT open a real connection yet — it just validates
	// the driver name and data source name (DSN).
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: ping: %w", err)
	}

	// WAL lets readers (the admin list) run while a subscription is
	// being written; busy_timeout waits instead of failing with
	// "database is locked".
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite.New: %s: %w", pragma, err)
		}
	}

	if err := migrations.Up(ctx, db, "sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateSubscriber inserts a new row into the subscribers table.
//
// The UNIQUE constraint on email is what enforces "no duplicates": two
// concurrent requests for the same address race on the INSERT and exactly
// one of them gets SQLITE_CONSTRAINT_UNIQUE, which we translate into
// storage.ErrDuplicateEmail.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) CreateSubscriber(ctx context.Context, email string) (types.Subscriber, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO subscribers (id, email, subscribed_at) VALUES (?, ?, ?)",
	)
	if err != nil {
		return types.Subscriber{}, fmt.Errorf("CreateSubscriber: prepare: %w", err)
	}
	defer stmt.Close()

	sub := types.Subscriber{
		ID:           uuid.NewString(),
		Email:        email,
		SubscribedAt: time.Now().UTC(),
	}

	if _, err := stmt.ExecContext(ctx, sub.ID, sub.Email, sub.SubscribedAt); err != nil {
		if isUniqueViolation(err) {
			return types.Subscriber{}, fmt.Errorf("CreateSubscriber: %w", storage.ErrDuplicateEmail)
		}
		return types.Subscriber{}, fmt.Errorf("CreateSubscriber: exec: %w", err)
	}

	return sub, nil
}

// GetSubscriberByEmail fetches exactly one subscriber row matched by email.
func (s *SQLite) GetSubscriberByEmail(ctx context.Context, email string) (types.Subscriber, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, email, subscribed_at FROM subscribers WHERE email = ? LIMIT 1",
	)
	if err != nil {
		return types.Subscriber{}, fmt.Errorf("GetSubscriberByEmail: prepare: %w", err)
	}
	defer stmt.Close()

	var sub types.Subscriber

	// QueryRow returns exactly one row. If the query finds no match the
	// error surfaces only when you call Scan.
	err = stmt.QueryRowContext(ctx, email).Scan(&sub.ID, &sub.Email, &sub.SubscribedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Subscriber{}, fmt.Errorf("GetSubscriberByEmail: %w", storage.ErrNotFound)
		}
		return types.Subscriber{}, fmt.Errorf("GetSubscriberByEmail: scan: %w", err)
	}

	return sub, nil
}

// GetSubscribers returns all subscriber rows, oldest first.
func (s *SQLite) GetSubscribers(ctx context.Context) ([]types.Subscriber, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, email, subscribed_at FROM subscribers ORDER BY subscribed_at, email",
	)
	if err != nil {
		return nil, fmt.Errorf("GetSubscribers: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetSubscribers: query: %w", err)
	}
	defer rows.Close() // must close rows to free the DB connection

	// Returning [] instead of null in JSON is better API behaviour.
	subs := make([]types.Subscriber, 0)

	for rows.Next() {
		var sub types.Subscriber
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.SubscribedAt); err != nil {
			return nil, fmt.Errorf("GetSubscribers: scan row: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetSubscribers: rows iteration: %w", err)
	}

	return subs, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.Db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.Db.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
