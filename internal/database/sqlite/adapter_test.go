package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xshopai/seeder/internal/database/common"
)

func newAdapter(t *testing.T) *Adapter {
	t.Helper()
	a := New()
	require.NoError(t, a.Connect(t.Context(), "sqlite://"+filepath.Join(t.TempDir(), "reviews.db")))
	t.Cleanup(func() { a.Close() })
	require.NoError(t, a.Ping(t.Context()))
	require.NoError(t, a.Exec(t.Context(), `CREATE TABLE reviews (id TEXT PRIMARY KEY, rating INTEGER, verified INTEGER)`))
	return a
}

func TestInsertCountDelete(t *testing.T) {
	ctx := t.Context()
	a := newAdapter(t)

	require.NoError(t, a.Insert(ctx, "reviews", []common.Record{
		{"id": "r1", "rating": 5, "verified": true},
		{"id": "r2", "rating": 3, "verified": false},
	}))

	n, err := a.Count(ctx, "reviews")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	ids, err := a.Column(ctx, "SELECT id FROM reviews ORDER BY id")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, ids)

	deleted, err := a.DeleteAll(ctx, "reviews")
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := t.Context()
	a := newAdapter(t)
	boom := errors.New("boom")

	err := a.Transaction(ctx, func(tx common.Execer) error {
		if err := tx.Insert(ctx, "reviews", []common.Record{{"id": "r1", "rating": 4}}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := a.Count(ctx, "reviews")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, a.Transaction(ctx, func(tx common.Execer) error {
		return tx.Insert(ctx, "reviews", []common.Record{{"id": "r1", "rating": 4}})
	}))
	n, err = a.Count(ctx, "reviews")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestDuplicateKeyIsNotForbidden(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)
	require.NoError(t, a.Insert(ctx, "reviews", []common.Record{{"id": "r1"}}))

	err := a.Insert(ctx, "reviews", []common.Record{{"id": "r1"}})
	require.Error(t, err)
	assert.False(t, common.IsForbidden(err))
}

func TestPath(t *testing.T) {
	assert.Equal(t, "data/reviews.db", Path("sqlite://data/reviews.db?_journal_mode=WAL"))
	assert.Equal(t, ":memory:", Path("sqlite://:memory:"))
}
