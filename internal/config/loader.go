package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tedep/pkg/logging"
)

// LoadConfig reads the YAML file at path on top of the defaults.
// An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	config := GetDefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config file found at %s, using defaults", path)
			return config, nil
		}
		return Config{}, &ConfigurationError{
			FilePath:  path,
			FileName:  filepath.Base(path),
			ErrorType: ErrorTypeIO,
			Message:   err.Error(),
		}
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &ConfigurationError{
			FilePath:  path,
			FileName:  filepath.Base(path),
			ErrorType: ErrorTypeParse,
			Message:   fmt.Sprintf("error loading config: %v", err),
		}
	}

	if err := config.Validate(); err != nil {
		return Config{}, &ConfigurationError{
			FilePath:  path,
			FileName:  filepath.Base(path),
			ErrorType: ErrorTypeValidation,
			Message:   err.Error(),
		}
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s", path)
	return config, nil
}
