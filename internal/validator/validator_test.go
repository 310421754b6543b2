package validator

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xshopai/seeder/internal/fixtures"
)

func order(user string, products ...string) fixtures.Record {
	items := make([]interface{}, 0, len(products))
	for _, p := range products {
		items = append(items, map[string]interface{}{"productId": p, "quantity": 1})
	}
	return fixtures.Record{"userId": user, "items": items}
}

func sample() *Validator {
	return &Validator{
		Orders: []fixtures.Record{
			order("PLACEHOLDER_USER_1", "PLACEHOLDER_PRODUCT_2", "PLACEHOLDER_PRODUCT_10"),
			order("PLACEHOLDER_USER_2", "PLACEHOLDER_PRODUCT_1"),
			order("PLACEHOLDER_USER_1", "PLACEHOLDER_PRODUCT_2"),
		},
		Reviews: []fixtures.Record{
			{"userId": "PLACEHOLDER_USER_1", "productId": "PLACEHOLDER_PRODUCT_2", "rating": 5},
			{"userId": "PLACEHOLDER_USER_2", "productId": "PLACEHOLDER_PRODUCT_1", "rating": 4},
			{"userId": "PLACEHOLDER_USER_1", "productId": "PLACEHOLDER_PRODUCT_9", "rating": 1},
			{"userId": "somebody", "productId": "PLACEHOLDER_PRODUCT_1"},
		},
	}
}

func TestPurchaseHistory(t *testing.T) {
	history := sample().PurchaseHistory()
	assert.Equal(t, map[string]map[string]bool{
		"user_1": {"product_2": true, "product_10": true},
		"user_2": {"product_1": true},
	}, history)
}

func TestValidateReviews(t *testing.T) {
	res := sample().ValidateReviews()

	assert.False(t, res.OK())
	assert.Len(t, res.Valid, 2)
	assert.Len(t, res.Invalid, 2)
	require.Len(t, res.Violations, 2)
	assert.Equal(t, "review #3: user_1 never purchased product_9", res.Violations[0])
	assert.Contains(t, res.Violations[1], "review #4")
}

func TestGenerateValidReviews(t *testing.T) {
	v := sample()
	reviews := v.GenerateValidReviews()
	require.Len(t, reviews, 3)

	// user_1's products in numeric key order, then user_2
	assert.Equal(t, "PLACEHOLDER_PRODUCT_2", reviews[0]["productId"])
	assert.Equal(t, "PLACEHOLDER_PRODUCT_10", reviews[1]["productId"])
	assert.Equal(t, "PLACEHOLDER_USER_2", reviews[2]["userId"])

	assert.Equal(t, 5, reviews[0]["rating"])
	assert.Equal(t, 4, reviews[1]["rating"])
	for _, r := range reviews {
		assert.Equal(t, true, r["isVerifiedPurchase"])
		assert.Equal(t, "approved", r["status"])
	}

	v.Reviews = reviews
	assert.True(t, v.ValidateReviews().OK())
}

func TestRepairBacksUpAndRewrites(t *testing.T) {
	dir := t.TempDir()
	v := sample()
	require.NoError(t, fixtures.Write(dir, fixtures.Orders, v.Orders))
	require.NoError(t, fixtures.Write(dir, fixtures.Reviews, v.Reviews))

	loaded, err := New(dir)
	require.NoError(t, err)
	assert.False(t, loaded.ValidateReviews().OK())

	n, err := loaded.Repair(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = os.Stat(fixtures.Path(dir, fixtures.Reviews) + ".bak")
	assert.NoError(t, err)

	reloaded, err := New(dir)
	require.NoError(t, err)
	assert.True(t, reloaded.ValidateReviews().OK())
	assert.Len(t, reloaded.Reviews, 3)
}

func TestNewMissingFixture(t *testing.T) {
	_, err := New(t.TempDir())
	assert.ErrorIs(t, err, fixtures.ErrFixtureNotFound)
}
