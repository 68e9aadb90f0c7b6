package conda

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
)

// EnvFile is the subset of conda-env.yml the manager reads.
type EnvFile struct {
	Name         string   `yaml:"name"`
	Channels     []string `yaml:"channels"`
	Dependencies []any    `yaml:"dependencies"`
}

// ReadEnvFile parses a conda environment file. The name key is required
// because every later conda call addresses the environment by name.
func ReadEnvFile(path string) (*EnvFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDependencyFileMissing, path)
		}
		return nil, err
	}

	var f EnvFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidInput, path, err)
	}

	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return nil, fmt.Errorf("%w: %s has no name", domain.ErrInvalidInput, path)
	}
	return &f, nil
}

// Packages returns the conda and pip package specs declared in the file.
func (f *EnvFile) Packages() []string {
	var out []string
	for _, dep := range f.Dependencies {
		switch v := dep.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			pip, _ := v["pip"].([]any)
			for _, p := range pip {
				if s, ok := p.(string); ok {
					out = append(out, "pip:"+s)
				}
			}
		}
	}
	return out
}
