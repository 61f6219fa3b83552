package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (EVENTGOV_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: EVENTGOV_REGISTRY_URL -> registry_url,
	// EVENTGOV_SERVER_PORT -> server.port, etc.
	if err := k.Load(env.Provider("EVENTGOV_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "EVENTGOV_"))
		for _, section := range []string{"server_", "demo_"} {
			if strings.HasPrefix(key, section) {
				return strings.TrimSuffix(section, "_") + "." + strings.TrimPrefix(key, section)
			}
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	for i, repo := range c.Repos {
		if repo.Name == "" {
			return fmt.Errorf("repos[%d]: name is required", i)
		}
		if repo.Path == "" {
			return fmt.Errorf("repo %q: path is required", repo.Name)
		}
	}

	if c.RegistryURL != "" && !strings.HasPrefix(c.RegistryURL, "http://") && !strings.HasPrefix(c.RegistryURL, "https://") {
		return fmt.Errorf("registry_url %q must be an http(s) URL", c.RegistryURL)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.SchemasDir == "" {
		return fmt.Errorf("schemas_dir is required")
	}
	if c.CatalogDir == "" {
		return fmt.Errorf("catalog_dir is required")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if c.Demo.InvalidRate < 0 || c.Demo.InvalidRate > 100 {
		return fmt.Errorf("demo.invalid_rate must be a percentage, got %d", c.Demo.InvalidRate)
	}
	if c.Demo.Count < 0 {
		return fmt.Errorf("demo.count must be non-negative")
	}
	if c.Demo.DelayMS < 0 {
		return fmt.Errorf("demo.delay_ms must be non-negative")
	}

	return nil
}
