package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/sixth-rift-api/internal/storage"
)

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	m := New()

	sub, err := m.CreateSubscriber(ctx, "fan@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "fan@example.com", sub.Email)
	assert.False(t, sub.SubscribedAt.IsZero())

	got, err := m.GetSubscriberByEmail(ctx, "fan@example.com")
	require.NoError(t, err)
	assert.Equal(t, sub, got)

	_, err = m.GetSubscriberByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	m := New()

	_, err := m.CreateSubscriber(ctx, "fan@example.com")
	require.NoError(t, err)

	_, err = m.CreateSubscriber(ctx, "fan@example.com")
	assert.ErrorIs(t, err, storage.ErrDuplicateEmail)

	subs, err := m.GetSubscribers(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestGetSubscribersOrder(t *testing.T) {
	ctx := context.Background()
	m := New()

	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base.Add(time.Minute), base, base}
	i := 0
	m.now = func() time.Time {
		ts := times[i]
		i++
		return ts
	}

	for _, email := range []string{"late@example.com", "b@example.com", "a@example.com"} {
		_, err := m.CreateSubscriber(ctx, email)
		require.NoError(t, err)
	}

	subs, err := m.GetSubscribers(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, "a@example.com", subs[0].Email)
	assert.Equal(t, "b@example.com", subs[1].Email)
	assert.Equal(t, "late@example.com", subs[2].Email)
}

func TestGetSubscribersEmpty(t *testing.T) {
	subs, err := New().GetSubscribers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, subs)
	assert.Empty(t, subs)
}

func TestConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	m := New()

	var (
		wg      sync.WaitGroup
		created atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.CreateSubscriber(ctx, "race@example.com"); err == nil {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
}

func TestDistinctEmails(t *testing.T) {
	ctx := context.Background()
	m := New()

	for i := 0; i < 10; i++ {
		_, err := m.CreateSubscriber(ctx, fmt.Sprintf("fan%d@example.com", i))
		require.NoError(t, err)
	}

	subs, err := m.GetSubscribers(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 10)
}
