package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSettings loads and validates settings from a YAML file. A
// missing file is not an error: every setting has a default.
func LoadSettings(path string) (*Settings, error) {
	var settings Settings

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, &ConfigError{
				Message: fmt.Sprintf("Error reading settings file: %v", err),
			}
		}
	} else {
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return nil, &ConfigError{
				Message: fmt.Sprintf("Error parsing settings file: %v", err),
			}
		}
	}

	settings.SetDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &settings, nil
}
