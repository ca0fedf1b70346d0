// Package postgres implements storage.Storage against PostgreSQL using the
// lib/pq driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/aanand-mishra/sixth-rift-api/internal/storage"
	"github.com/aanand-mishra/sixth-rift-api/internal/storage/migrations"
	"github.com/aanand-mishra/sixth-rift-api/internal/types"
)

// Postgres is a storage.Storage backed by the subscribers table.
type Postgres struct {
	db *sql.DB
}

// Open connects to dsn, runs migrations and returns the store.
func Open(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres.Open: ping: %w", err)
	}
	if err := migrations.Up(ctx, db, "postgres"); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres.Open: %w", err)
	}
	return New(db), nil
}

// New wraps an existing pool. The schema must already be in place.
func New(db *sql.DB) *Postgres { return &Postgres{db: db} }

// CreateSubscriber relies on ON CONFLICT so the uniqueness check and the
// insert are one statement: when the email exists no row is returned.
func (p *Postgres) CreateSubscriber(ctx context.Context, email string) (types.Subscriber, error) {
	var sub types.Subscriber
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO subscribers (id, email, subscribed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, email, subscribed_at
	`, uuid.NewString(), email, time.Now().UTC()).Scan(&sub.ID, &sub.Email, &sub.SubscribedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Subscriber{}, fmt.Errorf("CreateSubscriber: %w", storage.ErrDuplicateEmail)
	}
	if err != nil {
		return types.Subscriber{}, fmt.Errorf("CreateSubscriber: %w", err)
	}
	return sub, nil
}

func (p *Postgres) GetSubscriberByEmail(ctx context.Context, email string) (types.Subscriber, error) {
	var sub types.Subscriber
	err := p.db.QueryRowContext(ctx,
		`SELECT id, email, subscribed_at FROM subscribers WHERE email = $1`,
		email,
	).Scan(&sub.ID, &sub.Email, &sub.SubscribedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Subscriber{}, fmt.Errorf("GetSubscriberByEmail: %w", storage.ErrNotFound)
	}
	if err != nil {
		return types.Subscriber{}, fmt.Errorf("GetSubscriberByEmail: %w", err)
	}
	return sub, nil
}

func (p *Postgres) GetSubscribers(ctx context.Context) ([]types.Subscriber, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, email, subscribed_at FROM subscribers ORDER BY subscribed_at, email`,
	)
	if err != nil {
		return nil, fmt.Errorf("GetSubscribers: %w", err)
	}
	defer rows.Close()

	subs := make([]types.Subscriber, 0)
	for rows.Next() {
		var sub types.Subscriber
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.SubscribedAt); err != nil {
			return nil, fmt.Errorf("GetSubscribers: scan: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetSubscribers: %w", err)
	}
	return subs, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *Postgres) Close() error { return p.db.Close() }
