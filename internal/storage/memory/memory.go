// Package memory keeps subscribers in process memory. Data is lost on
// restart; it is meant for local development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aanand-mishra/sixth-rift-api/internal/storage"
	"github.com/aanand-mishra/sixth-rift-api/internal/types"
)

// Memory is a map-backed storage.Storage guarded by a RWMutex.
type Memory struct {
	mu      sync.RWMutex
	byEmail map[string]types.Subscriber

	// now is swapped in tests to get deterministic timestamps.
	now func() time.Time
}

// New returns an empty in-memory store.
func New() *Memory {
	return &Memory{
		byEmail: make(map[string]types.Subscriber),
		now:     time.Now,
	}
}

func (m *Memory) CreateSubscriber(_ context.Context, email string) (types.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[email]; ok {
		return types.Subscriber{}, fmt.Errorf("CreateSubscriber: %w", storage.ErrDuplicateEmail)
	}

	sub := types.Subscriber{
		ID:           uuid.NewString(),
		Email:        email,
		SubscribedAt: m.now().UTC(),
	}
	m.byEmail[email] = sub

	return sub, nil
}

func (m *Memory) GetSubscriberByEmail(_ context.Context, email string) (types.Subscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.byEmail[email]
	if !ok {
		return types.Subscriber{}, fmt.Errorf("GetSubscriberByEmail: %w", storage.ErrNotFound)
	}
	return sub, nil
}

func (m *Memory) GetSubscribers(_ context.Context) ([]types.Subscriber, error) {
	m.mu.RLock()
	subs := make([]types.Subscriber, 0, len(m.byEmail))
	for _, sub := range m.byEmail {
		subs = append(subs, sub)
	}
	m.mu.RUnlock()

	sort.Slice(subs, func(i, j int) bool {
		if subs[i].SubscribedAt.Equal(subs[j].SubscribedAt) {
			return subs[i].Email < subs[j].Email
		}
		return subs[i].SubscribedAt.Before(subs[j].SubscribedAt)
	})

	return subs, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
