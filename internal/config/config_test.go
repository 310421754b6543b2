package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadJSON(t *testing.T, body string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seeder.config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	return LoadFrom(v)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.FixturesDir)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 100*time.Millisecond, cfg.BatchPause)
	assert.True(t, cfg.DefaultClear)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	require.Len(t, cfg.Services, 5)

	var names []string
	for _, s := range cfg.Sorted() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"user-service", "product-service", "inventory-service", "order-service", "review-service"}, names)
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := loadJSON(t, `{
		"fixtures_dir": "fixtures",
		"batch_size": 25,
		"batch_pause": "250ms",
		"default_clear": false,
		"services": [
			{"name": "b", "kind": "postgres", "url_env": "B_URL", "tables": ["t"], "seed_order": 2, "depends_on": ["a"]},
			{"name": "a", "kind": "mongo", "url_env": "A_URL", "tables": ["docs"], "seed_order": 1}
		]
	}`)
	require.NoError(t, err)

	assert.Equal(t, "fixtures", cfg.FixturesDir)
	assert.Equal(t, 25, cfg.BatchSize)
	assert.Equal(t, 250*time.Millisecond, cfg.BatchPause)
	assert.False(t, cfg.DefaultClear)
	assert.Equal(t, "postgresql", cfg.Services[0].Kind)
	assert.Equal(t, "mongodb", cfg.Services[1].Kind)
	assert.Equal(t, "a", cfg.Sorted()[0].Name)
}

func TestValidateRejectsBadServices(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			"unknown kind",
			`{"services": [{"name": "a", "kind": "redis", "url_env": "A", "tables": ["t"], "seed_order": 1}]}`,
			"unsupported database kind",
		},
		{
			"duplicate",
			`{"services": [{"name": "a", "kind": "mysql", "url_env": "A", "tables": ["t"], "seed_order": 1},
			               {"name": "a", "kind": "mysql", "url_env": "A", "tables": ["t"], "seed_order": 2}]}`,
			"duplicate service",
		},
		{
			"unknown dependency",
			`{"services": [{"name": "a", "kind": "mysql", "url_env": "A", "tables": ["t"], "seed_order": 1, "depends_on": ["z"]}]}`,
			"unknown service z",
		},
		{
			"dependency seeds later",
			`{"services": [{"name": "a", "kind": "mysql", "url_env": "A", "tables": ["t"], "seed_order": 1, "depends_on": ["b"]},
			               {"name": "b", "kind": "mysql", "url_env": "B", "tables": ["t"], "seed_order": 1}]}`,
			"dependencies must seed first",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadJSON(t, tt.body)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServiceLookup(t *testing.T) {
	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	s, err := cfg.Service("order-service")
	require.NoError(t, err)
	assert.Equal(t, []string{"user-service", "product-service"}, s.DependsOn)

	_, err = cfg.Service("nope")
	assert.ErrorIs(t, err, ErrUnknownService)
}

func TestGetURL(t *testing.T) {
	s := Service{Name: "user-service", Kind: "mongodb", URLEnv: "SEEDER_TEST_USER_URL", Database: "user_service_db"}

	_, err := s.GetURL()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEEDER_TEST_USER_URL")

	t.Setenv("SEEDER_TEST_USER_URL", "mongodb://localhost:27017/?retryWrites=false")
	url, err := s.GetURL()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017/user_service_db?retryWrites=false", url)

	inv := Service{Name: "inventory-service", Kind: "mysql", URLEnv: "SEEDER_TEST_INV_URL"}
	t.Setenv("SEEDER_TEST_INV_URL", "mysql+pymysql://root:pw@localhost:3306/inventory")
	url, err = inv.GetURL()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "mysql://"))
}

func TestEnsureMongoDatabase(t *testing.T) {
	assert.Equal(t, "mongodb://h:1/db", EnsureMongoDatabase("mongodb://h:1", "db"))
	assert.Equal(t, "mongodb://h:1/mine", EnsureMongoDatabase("mongodb://h:1/mine", "db"))
	assert.Equal(t, "mongodb+srv://u:p@c.example.net/db?w=1", EnsureMongoDatabase("mongodb+srv://u:p@c.example.net?w=1", "db"))
	assert.Equal(t, "not a url", EnsureMongoDatabase("not a url", "db"))
}

func TestParseLocator(t *testing.T) {
	tests := []struct {
		name string
		kind string
		raw  string
		want Locator
	}{
		{"mongo", "mongodb", "mongodb://admin:pw@db1:27018,db2:27018/users?authSource=admin",
			Locator{Host: "db1", Port: 27018, Database: "users", User: "admin"}},
		{"postgres default port", "postgresql", "postgresql://orders@pg/order_service_db",
			Locator{Host: "pg", Port: 5432, Database: "order_service_db", User: "orders"}},
		{"mysql url", "mysql", "mysql+pymysql://root:pw@localhost:3307/inventory",
			Locator{Host: "localhost", Port: 3307, Database: "inventory", User: "root"}},
		{"mysql dsn", "mysql", "root:pw@tcp(db:3306)/inventory?parseTime=true",
			Locator{Host: "db", Port: 3306, Database: "inventory", User: "root"}},
		{"sqlite", "sqlite", "sqlite://data/reviews.db", Locator{Host: "local", Database: "data/reviews.db"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLocator(tt.kind, tt.raw))
		})
	}
}
