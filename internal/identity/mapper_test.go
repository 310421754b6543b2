package identity

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/yaml.v3"
)

func TestGetOrCreateIsStable(t *testing.T) {
	m := New()

	first := m.GetOrCreateObjectID("user_3")
	second := m.GetOrCreateObjectID("user_3")
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, m.GetOrCreateObjectID("user_4"))

	u1 := m.GetOrCreateUUID("order_1")
	u2 := m.GetOrCreateUUID("order_1")
	assert.Equal(t, u1, u2)
	assert.Equal(t, uuid.Version(4), u1.Version())
}

func TestObjectAndUUIDMapsCoexist(t *testing.T) {
	m := New()

	oid := m.GetOrCreateObjectID("product_1")
	uid := m.GetOrCreateUUID("product_1")

	assert.Equal(t, oid, m.GetOrCreateObjectID("product_1"))
	assert.Equal(t, uid, m.GetOrCreateUUID("product_1"))
	assert.Equal(t, Stats{ObjectIDCount: 1, UUIDCount: 1}, m.Stats())
}

func TestResetIssuesFreshIdentifiers(t *testing.T) {
	m := New()
	before := m.GetOrCreateObjectID("user_1")
	beforeUUID := m.GetOrCreateUUID("user_1")

	m.Reset()
	assert.Equal(t, Stats{}, m.Stats())

	assert.NotEqual(t, before, m.GetOrCreateObjectID("user_1"))
	assert.NotEqual(t, beforeUUID, m.GetOrCreateUUID("user_1"))
}

func TestSetOverridesMapping(t *testing.T) {
	m := New()
	m.GetOrCreateObjectID("user_1")

	want := primitive.NewObjectID()
	m.SetObjectID("user_1", want)
	assert.Equal(t, want, m.GetOrCreateObjectID("user_1"))

	wantUUID := uuid.New()
	m.SetUUID("order_1", wantUUID)
	assert.Equal(t, wantUUID, m.GetOrCreateUUID("order_1"))

	_, ok := m.LookupObjectID("user_2")
	assert.False(t, ok)
}

func TestRelationships(t *testing.T) {
	m := New()
	m.AddRelationship("user_1", "order_1")
	m.AddRelationship("user_1", "order_2")
	m.AddRelationship("user_1", "order_1")

	assert.Equal(t, []string{"order_1", "order_2"}, m.Children("user_1"))
	assert.Empty(t, m.Children("user_9"))
	assert.Equal(t, 2, m.Stats().RelationshipCount)

	children := m.Children("user_1")
	children[0] = "mutated"
	assert.Equal(t, "order_1", m.Children("user_1")[0])
}

func TestConcurrentAccessYieldsOneID(t *testing.T) {
	m := New()
	ids := make([]primitive.ObjectID, 20)

	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = m.GetOrCreateObjectID("product_1")
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestExportSnapshot(t *testing.T) {
	m := New()
	oid := m.GetOrCreateObjectID("user_2")
	m.GetOrCreateObjectID("user_10")
	uid := m.GetOrCreateUUID("order_1")
	m.AddRelationship("user_2", "order_1")

	snap := m.Export()
	assert.Equal(t, oid.Hex(), snap.ObjectIDs["user_2"])
	assert.Equal(t, uid.String(), snap.UUIDs["order_1"])
	assert.Equal(t, []string{"order_1"}, snap.Relationships["user_2"])
	assert.Equal(t, []string{"order_1", "user_2", "user_10"}, snap.Keys())

	path := filepath.Join(t.TempDir(), "out", "ids.yaml")
	require.NoError(t, snap.WriteYAML(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, snap, decoded)
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "user_3", Key("USER", 3))
	assert.Equal(t, "PLACEHOLDER_PRODUCT_7", Placeholder("product", 7))

	kind, n, ok := ParseKey("product_7")
	require.True(t, ok)
	assert.Equal(t, "product", kind)
	assert.Equal(t, 7, n)

	_, _, ok = ParseKey("product")
	assert.False(t, ok)

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"PLACEHOLDER_USER_3", "user_3", true},
		{"PLACEHOLDER_PRODUCT_12", "product_12", true},
		{"user_5", "user_5", true},
		{"PLACEHOLDER_USER_0", "", false},
		{"64b7f0c2e4b0a1a2b3c4d5e6", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ResolvePlaceholder(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	keys := []string{"user_10", "product_2", "user_2", "user_1"}
	SortKeys(keys)
	assert.Equal(t, []string{"product_2", "user_1", "user_2", "user_10"}, keys)
}
