package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/audit"
)

// Default returns the stock configuration: default thresholds, port 8080,
// a 300 second report cache, info logging.
func Default() AppConfig {
	return AppConfig{
		Server:   ServerConfig{Port: 8080, CacheTTLSec: 300},
		Checks:   audit.DefaultConfig(),
		LogLevel: "info",
	}
}

// Load reads and validates the configuration, starting from Default and
// overriding with whatever the file sets. An empty path tries config.yml
// and config.yaml in the working directory; no file at all just yields the
// defaults.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse: %w", err)
		}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(path string) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		return data, nil
	}
	for _, p := range []string{"config.yml", "config.yaml"} {
		if data, err := os.ReadFile(p); err == nil {
			return data, nil
		}
	}
	return nil, nil
}

// Validate checks the assembled configuration against its struct tags.
func Validate(cfg *AppConfig) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
