package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/Byrix/bom-scrapper/internal/core/ports/driven"
)

// DefaultFileName is the project configuration file looked up in the project dir.
const DefaultFileName = "bom-scrapper.toml"

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
// Nested tables are exposed as dot-notation keys: [driver] version becomes
// "driver.version".
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore creates a TOML-based config store backed by path.
// A missing file is not an error; the store starts empty and the file is
// only created on the first Set.
func NewConfigStore(path string) (*ConfigStore, error) {
	s := &ConfigStore{
		filePath: path,
		data:     make(map[string]any),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// lookup returns the value under key when it holds a T.
func lookup[T any](s *ConfigStore, key string) (T, bool) {
	val, _ := s.Get(key)
	v, ok := val.(T)
	return v, ok
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	v, _ := lookup[string](s, key)
	return v
}

// GetInt retrieves an integer configuration value. TOML decodes integers
// as int64; values set at runtime may be plain ints.
func (s *ConfigStore) GetInt(key string) int {
	if v, ok := lookup[int64](s, key); ok {
		return int(v)
	}
	v, _ := lookup[int](s, key)
	return v
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	v, _ := lookup[bool](s, key)
	return v
}

// GetStringSlice retrieves a list of strings. A TOML array keeps its string
// items; a single string is split on commas, as written by config set.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, _ := s.Get(key)

	var items []string
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		for _, item := range v {
			if str, ok := item.(string); ok {
				items = append(items, str)
			}
		}
		return items
	case string:
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items
	}
	return nil
}

// Keys returns every stored key in sorted order.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Unset removes a key and persists immediately.
func (s *ConfigStore) Unset(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.save()
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(unflattenMap(s.data))
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.filePath, data, 0o644)
}

// Load re-reads the TOML file, replacing everything held in memory.
// A missing file leaves the store empty.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]any)

	raw, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	tables := make(map[string]any)
	if err := toml.Unmarshal(raw, &tables); err != nil {
		return fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	s.data = flattenMap(tables, "")
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// flattenMap turns nested tables into dot keys: {"driver": {"version": v}}
// becomes {"driver.version": v}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	flat := make(map[string]any, len(m))
	for key, value := range m {
		if prefix != "" {
			key = prefix + "." + key
		}
		table, ok := value.(map[string]any)
		if !ok {
			flat[key] = value
			continue
		}
		for k, v := range flattenMap(table, key) {
			flat[k] = v
		}
	}
	return flat
}

// unflattenMap is the inverse of flattenMap, so saved files use tables
// instead of quoted dotted keys.
func unflattenMap(m map[string]any) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		parts := strings.Split(key, ".")
		node := result
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}

	return result
}
