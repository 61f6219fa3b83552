package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/mjones3/event-governance-poc/internal/extract"
)

// repoMarkers are files whose presence marks a directory as a scannable
// JVM repository.
var repoMarkers = []string{"pom.xml", "build.gradle", "build.gradle.kts"}

// looksLikeRepo reports whether a directory contains a build marker or at
// least one service subdirectory that does.
func looksLikeRepo(path string) bool {
	for _, marker := range repoMarkers {
		if _, err := os.Stat(filepath.Join(path, marker)); err == nil {
			return true
		}
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		for _, marker := range repoMarkers {
			if _, err := os.Stat(filepath.Join(path, e.Name(), marker)); err == nil {
				return true
			}
		}
	}
	return false
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .eventgov.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to eventgov! Let's configure your event inventory.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Repositories to scan.
	for {
		pathPrompt := promptui.Prompt{
			Label:   "Path to a repository of services (blank to finish)",
			Default: "",
		}
		repoPath, err := pathPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("repo path: %w", err)
		}
		repoPath = strings.TrimSpace(repoPath)
		if repoPath == "" {
			break
		}
		if !looksLikeRepo(repoPath) {
			fmt.Printf("Note: no Maven or Gradle markers found under %s; it will be scanned anyway.\n", repoPath)
		}

		namePrompt := promptui.Prompt{
			Label:   "Repository name",
			Default: filepath.Base(repoPath),
		}
		repoName, err := namePrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("repo name: %w", err)
		}

		cfg.Repos = append(cfg.Repos, extract.Repo{Name: repoName, Path: repoPath})
	}

	// 2. Schema registry.
	registryPrompt := promptui.Prompt{
		Label:   "Schema registry URL",
		Default: cfg.RegistryURL,
	}
	registryURL, err := registryPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("registry URL: %w", err)
	}
	cfg.RegistryURL = registryURL

	// 3. Output directories.
	schemasPrompt := promptui.Prompt{
		Label:   "Directory for generated Avro schemas",
		Default: cfg.SchemasDir,
	}
	if cfg.SchemasDir, err = schemasPrompt.Run(); err != nil {
		return nil, fmt.Errorf("schemas dir: %w", err)
	}

	catalogPrompt := promptui.Prompt{
		Label:   "Directory for generated catalog pages",
		Default: cfg.CatalogDir,
	}
	if cfg.CatalogDir, err = catalogPrompt.Run(); err != nil {
		return nil, fmt.Errorf("catalog dir: %w", err)
	}

	// 4. Server port.
	portPrompt := promptui.Prompt{
		Label:   "Inventory server port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			_, err := strconv.Atoi(s)
			return err
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Save to .eventgov.yml.
	configPath := ".eventgov.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}
