package services

import (
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driven"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyScript           = "project.script"
	keyStrategy         = "env.strategy"
	keyEnvDir           = "env.dir"
	keyPython           = "env.python"
	keyRequirements     = "env.requirements"
	keyConda            = "env.conda"
	keyCondaFile        = "env.conda_file"
	keyDriverMode       = "driver.mode"
	keyDriverVersion    = "driver.version"
	keyDriverPlatform   = "driver.platform"
	keyDriverBaseURL    = "driver.base_url"
	keyDriverDir        = "driver.dir"
	keyDriverComponents = "driver.components"
	keyHistoryEnabled   = "history.enabled"
	keyHistoryKeep      = "history.keep"
)

type keyKind int

const (
	kindString keyKind = iota
	kindBool
	kindInt
	kindList
)

var knownKeys = map[string]keyKind{
	keyScript:           kindString,
	keyStrategy:         kindString,
	keyEnvDir:           kindString,
	keyPython:           kindString,
	keyRequirements:     kindString,
	keyConda:            kindString,
	keyCondaFile:        kindString,
	keyDriverMode:       kindString,
	keyDriverVersion:    kindString,
	keyDriverPlatform:   kindString,
	keyDriverBaseURL:    kindString,
	keyDriverDir:        kindString,
	keyDriverComponents: kindList,
	keyHistoryEnabled:   kindBool,
	keyHistoryKeep:      kindInt,
}

// KnownKeys returns every supported configuration key in sorted order.
func KnownKeys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages project configuration.
type SettingsService struct {
	configStore driven.ConfigStore
	goos        string
	goarch      string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		goos:        runtime.GOOS,
		goarch:      runtime.GOARCH,
	}
}

// Resolve layers stored configuration over base, applies overrides and
// validates the result. Overrides win over stored values.
func (s *SettingsService) Resolve(base domain.Settings, overrides ...domain.SettingsOverride) (domain.Settings, error) {
	out := base
	if s.configStore != nil {
		out.Script = s.getString(keyScript, base.Script)
		out.Strategy = domain.Strategy(s.getString(keyStrategy, string(base.Strategy)))
		out.Env.Dir = s.getString(keyEnvDir, base.Env.Dir)
		out.Env.Python = s.getString(keyPython, base.Env.Python)
		out.Env.Requirements = s.getString(keyRequirements, base.Env.Requirements)
		out.Env.Conda = s.getString(keyConda, base.Env.Conda)
		out.Env.CondaFile = s.getString(keyCondaFile, base.Env.CondaFile)
		out.Driver.Mode = domain.DriverMode(s.getString(keyDriverMode, string(base.Driver.Mode)))
		out.Driver.Version = s.getString(keyDriverVersion, base.Driver.Version)
		out.Driver.Platform = s.getString(keyDriverPlatform, base.Driver.Platform)
		out.Driver.BaseURL = s.getString(keyDriverBaseURL, base.Driver.BaseURL)
		out.Driver.Dir = s.getString(keyDriverDir, base.Driver.Dir)
		out.Driver.Components = s.getComponents(base.Driver.Components)
		out.History.Enabled = s.getBool(keyHistoryEnabled, base.History.Enabled)
		out.History.Keep = s.getInt(keyHistoryKeep, base.History.Keep)
	}
	for _, o := range overrides {
		o(&out)
	}

	if out.Driver.Platform == domain.PlatformAuto {
		p, err := domain.PlatformFor(s.goos, s.goarch)
		if err != nil {
			return out, err
		}
		out.Driver.Platform = p
	}

	if err := out.Validate(); err != nil {
		return out, err
	}
	return out, nil
}

// Set parses raw according to the key's type and persists it.
func (s *SettingsService) Set(key, raw string) error {
	if s.configStore == nil {
		return fmt.Errorf("config store not configured")
	}
	kind, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown key %q (known: %s)", domain.ErrInvalidInput, key, strings.Join(KnownKeys(), ", "))
	}

	var value any
	switch kind {
	case kindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false", domain.ErrInvalidInput, key)
		}
		value = b
	case kindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer", domain.ErrInvalidInput, key)
		}
		value = int64(n)
	case kindList:
		var items []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		value = items
	default:
		value = raw
	}

	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Unset removes a stored key so the default applies again.
func (s *SettingsService) Unset(key string) error {
	if s.configStore == nil {
		return fmt.Errorf("config store not configured")
	}
	if _, ok := knownKeys[key]; !ok {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidInput, key)
	}
	return s.configStore.Unset(key)
}

// Values returns every stored key and its value.
func (s *SettingsService) Values() map[string]any {
	out := make(map[string]any)
	if s.configStore == nil {
		return out
	}
	for _, k := range s.configStore.Keys() {
		if v, ok := s.configStore.Get(k); ok {
			out[k] = v
		}
	}
	return out
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	if s.configStore == nil {
		return ""
	}
	return s.configStore.Path()
}

func (s *SettingsService) getString(key, def string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return def
}

func (s *SettingsService) getBool(key string, def bool) bool {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getInt(key string, def int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getComponents(def []domain.DriverComponent) []domain.DriverComponent {
	items := s.configStore.GetStringSlice(keyDriverComponents)
	if len(items) == 0 {
		return def
	}
	out := make([]domain.DriverComponent, 0, len(items))
	for _, item := range items {
		out = append(out, domain.DriverComponent(strings.TrimSpace(item)))
	}
	return out
}
