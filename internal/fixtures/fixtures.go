package fixtures

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cast"
)

const (
	Users      = "users"
	Products   = "products"
	Categories = "categories"
	Inventory  = "inventory"
	Orders     = "orders"
	Reviews    = "reviews"
)

var ErrFixtureNotFound = errors.New("fixture file not found")

// Record is one loosely-typed fixture entry.
type Record map[string]interface{}

func Path(dir, name string) string {
	return filepath.Join(dir, name+".json")
}

// Load reads dir/name.json, which must contain a JSON array of objects.
func Load(dir, name string) ([]Record, error) {
	path := Path(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFixtureNotFound, path)
		}
		return nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	return records, nil
}

// Write replaces dir/name.json with records. An existing file is copied to
// name.json.bak first.
func Write(dir, name string, records []Record) error {
	path := Path(dir, name)

	if existing, err := os.ReadFile(path); err == nil {
		if err := os.WriteFile(path+".bak", existing, 0644); err != nil {
			return fmt.Errorf("failed to back up %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode fixture %s: %w", name, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

func (r Record) String(key string) string {
	return cast.ToString(r[key])
}

// StringOr returns the value for key, or fallback when it is absent or empty.
func (r Record) StringOr(key, fallback string) string {
	if s := r.String(key); s != "" {
		return s
	}
	return fallback
}

func (r Record) Int(key string) int {
	return cast.ToInt(r[key])
}

func (r Record) IntOr(key string, fallback int) int {
	if !r.Has(key) {
		return fallback
	}
	return r.Int(key)
}

func (r Record) Float(key string) float64 {
	return cast.ToFloat64(r[key])
}

func (r Record) Bool(key string) bool {
	return cast.ToBool(r[key])
}

func (r Record) BoolOr(key string, fallback bool) bool {
	if !r.Has(key) {
		return fallback
	}
	return r.Bool(key)
}

func (r Record) Strings(key string) []string {
	if !r.Has(key) {
		return nil
	}
	return cast.ToStringSlice(r[key])
}

// Map returns a nested object, or an empty record when absent.
func (r Record) Map(key string) Record {
	if !r.Has(key) {
		return Record{}
	}
	return Record(cast.ToStringMap(r[key]))
}

// Slice returns a nested array of objects; non-object elements are dropped.
func (r Record) Slice(key string) []Record {
	if !r.Has(key) {
		return nil
	}
	var out []Record
	for _, item := range cast.ToSlice(r[key]) {
		if m, err := cast.ToStringMapE(item); err == nil {
			out = append(out, Record(m))
		}
	}
	return out
}
