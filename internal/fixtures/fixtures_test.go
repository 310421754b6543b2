package fixtures

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFixture(t *testing.T) {
	_, err := Load(t.TempDir(), Users)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFixtureNotFound))
}

func TestLoadAndAccessors(t *testing.T) {
	dir := t.TempDir()
	content := `[
	  {"sku": "ABC-1", "price": "29.99", "quantity": 12, "active": true,
	   "colors": ["Red", "Dark Gray"],
	   "address": {"city": "Seattle"},
	   "items": [{"product_key": "product_1", "quantity": 2}, "junk"]}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.json"), []byte(content), 0644))

	records, err := Load(dir, Products)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "ABC-1", r.String("sku"))
	assert.InDelta(t, 29.99, r.Float("price"), 1e-9)
	assert.Equal(t, 12, r.Int("quantity"))
	assert.Equal(t, 5, r.IntOr("missing", 5))
	assert.True(t, r.Bool("active"))
	assert.False(t, r.BoolOr("missing", false))
	assert.Equal(t, []string{"Red", "Dark Gray"}, r.Strings("colors"))
	assert.Nil(t, r.Strings("sizes"))
	assert.Equal(t, "Seattle", r.Map("address").String("city"))
	assert.Empty(t, r.Map("preferences"))
	assert.Equal(t, "fallback", r.StringOr("brand", "fallback"))

	items := r.Slice("items")
	require.Len(t, items, 1)
	assert.Equal(t, "product_1", items[0].String("product_key"))
	assert.Equal(t, 2, items[0].Int("quantity"))
}

func TestWriteBacksUpExistingFile(t *testing.T) {
	dir := t.TempDir()
	original := []byte(`[{"rating": 1}]`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reviews.json"), original, 0644))

	require.NoError(t, Write(dir, Reviews, []Record{{"rating": 5}}))

	backup, err := os.ReadFile(filepath.Join(dir, "reviews.json.bak"))
	require.NoError(t, err)
	assert.Equal(t, original, backup)

	records, err := Load(dir, Reviews)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 5, records[0].Int("rating"))
}

func TestWriteWithoutExistingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	require.NoError(t, Write(dir, Reviews, []Record{}))

	_, err := os.Stat(filepath.Join(dir, "reviews.json.bak"))
	assert.True(t, os.IsNotExist(err))
}
