package driving

import "github.com/Byrix/bom-scrapper/internal/core/domain"

// SettingsService manages project configuration.
type SettingsService interface {
	// Resolve layers stored configuration over base, then overrides, and
	// validates the result.
	Resolve(base domain.Settings, overrides ...domain.SettingsOverride) (domain.Settings, error)

	// Set parses raw according to the key's type and persists it.
	Set(key, raw string) error

	// Unset removes a stored key so the default applies again.
	Unset(key string) error

	// Values returns every stored key and its value.
	Values() map[string]any

	// Path returns the configuration file path.
	Path() string
}
