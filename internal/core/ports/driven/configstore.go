package driven

// ConfigStore holds the project's bom-scrapper.toml as flat dot keys,
// e.g. "driver.version" for version under [driver].
type ConfigStore interface {
	// Get returns the raw value under key and whether it is set.
	Get(key string) (any, bool)

	// GetString, GetInt, GetBool and GetStringSlice return the zero value
	// when key is unset or holds another type.
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Keys lists the stored keys, sorted.
	Keys() []string

	// Set and Unset write the file before returning.
	Set(key string, value any) error
	Unset(key string) error

	// Load discards in-memory values and re-reads the file.
	Load() error

	// Path is the file backing the store.
	Path() string
}
