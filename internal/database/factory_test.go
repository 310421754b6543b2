package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	for _, kind := range []string{"mongodb", "postgresql", "postgres", "mysql", "sqlite", "sqlite3"} {
		s, err := NewStore(kind)
		require.NoError(t, err, kind)
		assert.NotNil(t, s)
	}

	s, err := NewStore("mongodb")
	require.NoError(t, err)
	_, ok := s.(DocumentStore)
	assert.True(t, ok)

	for _, kind := range []string{"postgresql", "mysql", "sqlite"} {
		s, err := NewStore(kind)
		require.NoError(t, err)
		_, ok := s.(SQLStore)
		assert.True(t, ok, kind)
	}

	_, err = NewStore("redis")
	assert.Error(t, err)
}

func TestIsRelational(t *testing.T) {
	assert.True(t, IsRelational("postgres"))
	assert.True(t, IsRelational("sqlite3"))
	assert.False(t, IsRelational("mongodb"))
	assert.False(t, IsRelational(""))
}
