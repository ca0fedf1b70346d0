package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/sixth-rift-api/internal/storage"
)

var columns = []string{"id", "email", "subscribed_at"}

func newMock(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return New(db), mock
}

func TestCreateSubscriber(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("inserted", func(t *testing.T) {
		p, mock := newMock(t)
		mock.ExpectQuery("INSERT INTO subscribers").
			WithArgs(sqlmock.AnyArg(), "fan@example.com", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(columns).AddRow("7b4b0a5e-0000-4000-8000-000000000001", "fan@example.com", now))

		sub, err := p.CreateSubscriber(ctx, "fan@example.com")
		require.NoError(t, err)
		assert.Equal(t, "7b4b0a5e-0000-4000-8000-000000000001", sub.ID)
		assert.Equal(t, "fan@example.com", sub.Email)
		assert.True(t, now.Equal(sub.SubscribedAt))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflict returns no row", func(t *testing.T) {
		p, mock := newMock(t)
		mock.ExpectQuery("INSERT INTO subscribers").
			WithArgs(sqlmock.AnyArg(), "fan@example.com", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := p.CreateSubscriber(ctx, "fan@example.com")
		assert.ErrorIs(t, err, storage.ErrDuplicateEmail)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver error", func(t *testing.T) {
		p, mock := newMock(t)
		mock.ExpectQuery("INSERT INTO subscribers").
			WillReturnError(errors.New("connection reset"))

		_, err := p.CreateSubscriber(ctx, "fan@example.com")
		require.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrDuplicateEmail)
	})
}

func TestGetSubscriberByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		p, mock := newMock(t)
		mock.ExpectQuery("SELECT id, email, subscribed_at FROM subscribers WHERE email").
			WithArgs("fan@example.com").
			WillReturnRows(sqlmock.NewRows(columns).AddRow("id-1", "fan@example.com", time.Now()))

		sub, err := p.GetSubscriberByEmail(ctx, "fan@example.com")
		require.NoError(t, err)
		assert.Equal(t, "id-1", sub.ID)
	})

	t.Run("not found", func(t *testing.T) {
		p, mock := newMock(t)
		mock.ExpectQuery("SELECT id, email, subscribed_at FROM subscribers WHERE email").
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		_, err := p.GetSubscriberByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestGetSubscribers(t *testing.T) {
	ctx := context.Background()

	t.Run("rows", func(t *testing.T) {
		p, mock := newMock(t)
		t0 := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
		mock.ExpectQuery("SELECT id, email, subscribed_at FROM subscribers ORDER BY subscribed_at, email").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("id-1", "a@example.com", t0).
				AddRow("id-2", "b@example.com", t0.Add(time.Second)))

		subs, err := p.GetSubscribers(ctx)
		require.NoError(t, err)
		require.Len(t, subs, 2)
		assert.Equal(t, "a@example.com", subs[0].Email)
		assert.Equal(t, "b@example.com", subs[1].Email)
	})

	t.Run("empty is not nil", func(t *testing.T) {
		p, mock := newMock(t)
		mock.ExpectQuery("SELECT id, email, subscribed_at FROM subscribers").
			WillReturnRows(sqlmock.NewRows(columns))

		subs, err := p.GetSubscribers(ctx)
		require.NoError(t, err)
		assert.NotNil(t, subs)
		assert.Empty(t, subs)
	})

	t.Run("row error", func(t *testing.T) {
		p, mock := newMock(t)
		mock.ExpectQuery("SELECT id, email, subscribed_at FROM subscribers").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("id-1", "a@example.com", time.Now()).
				RowError(0, errors.New("broken row")))

		_, err := p.GetSubscribers(ctx)
		assert.Error(t, err)
	})
}
