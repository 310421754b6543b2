package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/xshopai/seeder/internal/database/common"
)

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("ping", nil))
	assert.True(t, common.IsForbidden(classify("delete", &pgconn.PgError{Code: "42501"})))

	other := &pgconn.PgError{Code: "23505"}
	err := classify("insert", other)
	assert.False(t, common.IsForbidden(err))
	assert.True(t, errors.Is(err, other))
}

func TestUnconnectedAdapter(t *testing.T) {
	p := New()
	assert.ErrorIs(t, p.Ping(t.Context()), common.ErrNotConnected)
	assert.ErrorIs(t, p.Insert(t.Context(), "orders", nil), common.ErrNotConnected)
	assert.NoError(t, p.Close())
}
