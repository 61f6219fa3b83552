package config

// DefaultExcludes are glob patterns excluded from scans by default. They
// cover JVM build output plus the usual repository noise.
var DefaultExcludes = []string{
	"target/**",
	"build/**",
	"out/**",
	".gradle/**",
	".git/**",
	"node_modules/**",
	"vendor/**",
	"generated/**",
	"generated-sources/**",
	"*.min.js",
	"*.lock",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		RegistryURL: "http://localhost:8081",
		SchemasDir:  "schemas",
		CatalogDir:  "eventcatalog",
		PreviewDir:  "eventcatalog-site",
		DataDir:     ".eventgov",
		Include:     []string{"**/*.java"},
		Exclude:     DefaultExcludes,
		Server: ServerConfig{
			Port: 8844,
		},
		Demo: DemoConfig{
			TargetURL:   "http://localhost:8080",
			Count:       100,
			InvalidRate: 30,
			DelayMS:     50,
		},
	}
}
