package config

import "github.com/mjones3/event-governance-poc/internal/extract"

// Config is the top-level eventgov configuration, corresponding to .eventgov.yml.
type Config struct {
	Repos       []extract.Repo `yaml:"repos" koanf:"repos"`
	RegistryURL string         `yaml:"registry_url" koanf:"registry_url"`
	SchemasDir  string         `yaml:"schemas_dir" koanf:"schemas_dir"`
	CatalogDir  string         `yaml:"catalog_dir" koanf:"catalog_dir"`
	PreviewDir  string         `yaml:"preview_dir" koanf:"preview_dir"`
	DataDir     string         `yaml:"data_dir" koanf:"data_dir"`
	Include     []string       `yaml:"include" koanf:"include"`
	Exclude     []string       `yaml:"exclude" koanf:"exclude"`
	Server      ServerConfig   `yaml:"server" koanf:"server"`
	Demo        DemoConfig     `yaml:"demo" koanf:"demo"`
}

// ServerConfig holds inventory server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// DemoConfig holds demo traffic generator settings.
type DemoConfig struct {
	TargetURL   string `yaml:"target_url" koanf:"target_url"`
	Count       int    `yaml:"count" koanf:"count"`
	InvalidRate int    `yaml:"invalid_rate" koanf:"invalid_rate"`
	DelayMS     int    `yaml:"delay_ms" koanf:"delay_ms"`
	Seed        int64  `yaml:"seed" koanf:"seed"`
}

// DatabasePath returns the SQLite path under the data directory.
func (c *Config) DatabasePath() string {
	return c.DataDir + "/eventgov.db"
}
