package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const placeholderPrefix = "PLACEHOLDER_"

// Snapshot is the serializable form of a Mapper.
type Snapshot struct {
	ObjectIDs     map[string]string   `json:"object_ids" yaml:"object_ids"`
	UUIDs         map[string]string   `json:"uuids" yaml:"uuids"`
	Relationships map[string][]string `json:"relationships" yaml:"relationships"`
}

// WriteYAML persists the snapshot, creating parent directories as needed.
func (s Snapshot) WriteYAML(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal identity snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Key builds the logical key for the n-th (1-based) record of kind.
func Key(kind string, n int) string {
	return fmt.Sprintf("%s_%d", strings.ToLower(kind), n)
}

// ParseKey splits "product_7" into ("product", 7).
func ParseKey(key string) (string, int, bool) {
	idx := strings.LastIndex(key, "_")
	if idx <= 0 || idx == len(key)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return "", 0, false
	}
	return key[:idx], n, true
}

// Placeholder renders the fixture form of a logical key, e.g. PLACEHOLDER_USER_3.
func Placeholder(kind string, n int) string {
	return fmt.Sprintf("%s%s_%d", placeholderPrefix, strings.ToUpper(kind), n)
}

// ResolvePlaceholder turns "PLACEHOLDER_USER_3" into "user_3". Values that are
// already logical keys are returned lowercased; anything else is rejected.
func ResolvePlaceholder(value string) (string, bool) {
	value = strings.TrimSpace(value)
	raw := strings.TrimPrefix(value, placeholderPrefix)

	kind, n, ok := ParseKey(raw)
	if !ok || n < 1 {
		return "", false
	}
	for _, r := range kind {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return "", false
		}
	}
	return Key(kind, n), true
}

// SortKeys orders logical keys by kind, then by numeric ordinal, so user_2
// comes before user_10.
func SortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		ki, ni, oki := ParseKey(keys[i])
		kj, nj, okj := ParseKey(keys[j])
		if !oki || !okj {
			return keys[i] < keys[j]
		}
		if ki != kj {
			return ki < kj
		}
		return ni < nj
	})
}
