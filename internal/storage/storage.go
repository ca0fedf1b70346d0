// Package storage defines the Storage interface — a contract that any
// subscriber backend must satisfy to work with this application.
//
// Handlers (HTTP layer) depend only on this interface, so the concrete
// backend (memory, SQLite, PostgreSQL or Redis) is picked once in main.go
// from the storage.driver config value. Tests can pass any of them, or a
// fake, without touching handler code.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/sixth-rift-api/internal/types"
)

// Driver names accepted by the storage.driver config key.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

var (
	// ErrDuplicateEmail is returned by CreateSubscriber when the address is
	// already stored. Backends must detect this atomically.
	ErrDuplicateEmail = errors.New("email already subscribed")

	// ErrNotFound is returned by GetSubscriberByEmail when nothing matches.
	ErrNotFound = errors.New("subscriber not found")
)

// Storage is the subscriber persistence contract.
type Storage interface {
	// CreateSubscriber inserts a new subscriber for an already normalised
	// and validated email. It assigns the ID and SubscribedAt fields.
	// Returns ErrDuplicateEmail (wrapped) if the email exists.
	CreateSubscriber(ctx context.Context, email string) (types.Subscriber, error)

	// GetSubscriberByEmail returns ErrNotFound (wrapped) if no row matches.
	GetSubscriberByEmail(ctx context.Context, email string) (types.Subscriber, error)

	// GetSubscribers returns every subscriber ordered by SubscribedAt, then
	// Email. Returns an empty slice (not nil) if there are none.
	GetSubscribers(ctx context.Context) ([]types.Subscriber, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases connections held by the backend.
	Close() error
}
