package common

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	script := `
-- inventory
CREATE TABLE a (id INT);
INSERT INTO a VALUES ('x;y');
;
CREATE TABLE b (id INT)`

	stmts := SplitStatements(script)
	require.Len(t, stmts, 3)
	assert.Equal(t, "CREATE TABLE a (id INT)", stmts[0])
	assert.Equal(t, "INSERT INTO a VALUES ('x;y')", stmts[1])
	assert.Equal(t, "CREATE TABLE b (id INT)", stmts[2])
}

func TestBuildInsertUsesSortedColumns(t *testing.T) {
	qb := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
	query, args, err := BuildInsert(qb, QuoteBacktick, "inventory_items", Record{"sku": "A", "quantity_available": 3, "cost_per_unit": 1.5})
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO `inventory_items`")
	assert.Contains(t, query, "(`cost_per_unit`,`quantity_available`,`sku`)")
	assert.Equal(t, []interface{}{1.5, 3, "A"}, args)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"reviews"`, QuoteANSI("reviews"))
	assert.Equal(t, `"we""ird"`, QuoteANSI(`we"ird`))
	assert.Equal(t, "`a``b`", QuoteBacktick("a`b"))
}

func TestErrorClassification(t *testing.T) {
	driverErr := errors.New("permission denied for table users")
	err := fmt.Errorf("clear: %w", Forbidden("delete from users", driverErr))

	assert.True(t, IsForbidden(err))
	assert.ErrorIs(t, err, driverErr)
	assert.False(t, IsRateLimited(err))

	rl := fmt.Errorf("batch 2: %w", &RateLimitError{RetryAfter: 250 * time.Millisecond, Err: errors.New("16500")})
	assert.True(t, IsRateLimited(rl))
	assert.Equal(t, 250*time.Millisecond, RetryAfter(rl))
	assert.Zero(t, RetryAfter(driverErr))
	assert.False(t, IsForbidden(rl))
}

func TestSQLStoreRequiresConnection(t *testing.T) {
	s := NewSQLStore(QuoteANSI, nil)
	assert.ErrorIs(t, s.Insert(t.Context(), "t", []Record{{"a": 1}}), ErrNotConnected)
	_, err := s.Count(t.Context(), "t")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, s.Close())
}
