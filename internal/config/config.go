package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/viper"
	"github.com/xshopai/seeder/internal/database"
	"github.com/xshopai/seeder/internal/retry"
)

var ErrUnknownService = errors.New("unknown service")

type Config struct {
	FixturesDir  string        `json:"fixtures_dir" mapstructure:"fixtures_dir"`
	BatchSize    int           `json:"batch_size" mapstructure:"batch_size"`
	BatchPause   time.Duration `json:"batch_pause" mapstructure:"batch_pause"`
	DefaultClear bool          `json:"default_clear" mapstructure:"default_clear"`
	Retry        Retry         `json:"retry" mapstructure:"retry"`
	Services     []Service     `json:"services" mapstructure:"services"`
}

type Retry struct {
	MaxAttempts  int           `json:"max_attempts" mapstructure:"max_attempts"`
	InitialDelay time.Duration `json:"initial_delay" mapstructure:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay" mapstructure:"max_delay"`
}

// Config converts the settings into a retry policy with the default
// multiplier and jitter.
func (r Retry) Config() retry.Config {
	cfg := retry.DefaultConfig()
	if r.MaxAttempts > 0 {
		cfg.MaxAttempts = r.MaxAttempts
	}
	if r.InitialDelay > 0 {
		cfg.InitialDelay = r.InitialDelay
	}
	if r.MaxDelay > 0 {
		cfg.MaxDelay = r.MaxDelay
	}
	return cfg
}

// Service describes one downstream database the seeder populates.
type Service struct {
	Name      string   `json:"name" mapstructure:"name"`
	Kind      string   `json:"kind" mapstructure:"kind"`
	URLEnv    string   `json:"url_env" mapstructure:"url_env"`
	Database  string   `json:"database" mapstructure:"database"`
	Tables    []string `json:"tables" mapstructure:"tables"`
	SeedOrder int      `json:"seed_order" mapstructure:"seed_order"`
	DependsOn []string `json:"depends_on" mapstructure:"depends_on"`
}

func DefaultServices() []Service {
	return []Service{
		{
			Name: "user-service", Kind: database.KindMongoDB, URLEnv: "USER_SERVICE_DATABASE_URL",
			Database: "user_service_db", Tables: []string{"users"}, SeedOrder: 1,
		},
		{
			Name: "product-service", Kind: database.KindMongoDB, URLEnv: "PRODUCT_SERVICE_DATABASE_URL",
			Database: "product_service_db", Tables: []string{"products", "categories"}, SeedOrder: 2,
		},
		{
			Name: "inventory-service", Kind: database.KindMySQL, URLEnv: "INVENTORY_SERVICE_DATABASE_URL",
			Database: "inventory_service_db", Tables: []string{"stock_movements", "reservations", "inventory_items"},
			SeedOrder: 3, DependsOn: []string{"product-service"},
		},
		{
			Name: "order-service", Kind: database.KindPostgreSQL, URLEnv: "ORDER_SERVICE_DATABASE_URL",
			Database: "order_service_db", Tables: []string{"order_items", "orders"},
			SeedOrder: 4, DependsOn: []string{"user-service", "product-service"},
		},
		{
			Name: "review-service", Kind: database.KindSQLite, URLEnv: "REVIEW_SERVICE_DATABASE_URL",
			Database: "review_service.db", Tables: []string{"product_ratings", "reviews"},
			SeedOrder: 5, DependsOn: []string{"user-service", "product-service"},
		},
	}
}

// Load reads the process-wide viper instance populated by the root command.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.FixturesDir == "" {
		cfg.FixturesDir = "data"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if !v.IsSet("batch_pause") {
		cfg.BatchPause = 100 * time.Millisecond
	}
	if !v.IsSet("default_clear") {
		cfg.DefaultClear = true
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 5
	}
	if cfg.Retry.InitialDelay <= 0 {
		cfg.Retry.InitialDelay = 200 * time.Millisecond
	}
	if cfg.Retry.MaxDelay <= 0 {
		cfg.Retry.MaxDelay = 5 * time.Second
	}
	if len(cfg.Services) == 0 {
		cfg.Services = DefaultServices()
	}
	for i := range cfg.Services {
		cfg.Services[i].Kind = database.NormalizeKind(cfg.Services[i].Kind)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.BatchPause < 0 {
		return fmt.Errorf("batch_pause cannot be negative")
	}

	byName := make(map[string]Service, len(c.Services))
	for _, s := range c.Services {
		if s.Name == "" {
			return fmt.Errorf("service name cannot be empty")
		}
		if _, dup := byName[s.Name]; dup {
			return fmt.Errorf("duplicate service: %s", s.Name)
		}
		if s.Kind == "" {
			return fmt.Errorf("service %s: unsupported database kind. Supported kinds: %v", s.Name,
				[]string{database.KindMongoDB, database.KindPostgreSQL, database.KindMySQL, database.KindSQLite})
		}
		if s.URLEnv == "" {
			return fmt.Errorf("service %s: url_env cannot be empty", s.Name)
		}
		if len(s.Tables) == 0 {
			return fmt.Errorf("service %s: tables cannot be empty", s.Name)
		}
		byName[s.Name] = s
	}

	for _, s := range c.Services {
		for _, dep := range s.DependsOn {
			d, ok := byName[dep]
			if !ok {
				return fmt.Errorf("service %s depends on unknown service %s", s.Name, dep)
			}
			if d.SeedOrder >= s.SeedOrder {
				return fmt.Errorf("service %s (seed order %d) depends on %s (seed order %d); dependencies must seed first",
					s.Name, s.SeedOrder, dep, d.SeedOrder)
			}
		}
	}
	return nil
}

// Sorted returns the services in ascending seed order. Ties keep their
// declared order.
func (c *Config) Sorted() []Service {
	out := make([]Service, len(c.Services))
	copy(out, c.Services)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SeedOrder < out[j].SeedOrder })
	return out
}

func (c *Config) Service(name string) (Service, error) {
	for _, s := range c.Services {
		if s.Name == name {
			return s, nil
		}
	}
	return Service{}, fmt.Errorf("%w: %s", ErrUnknownService, name)
}

// GetURL reads the service's connection locator from its environment
// variable and normalizes it for the driver.
func (s Service) GetURL() (string, error) {
	raw := os.Getenv(s.URLEnv)
	if raw == "" {
		return "", fmt.Errorf("connection URL not found in environment variable %s", s.URLEnv)
	}
	url := NormalizeURL(raw)
	if s.Kind == database.KindMongoDB && s.Database != "" {
		url = EnsureMongoDatabase(url, s.Database)
	}
	return url, nil
}
