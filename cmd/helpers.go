package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mjones3/event-governance-poc/internal/config"
	"github.com/mjones3/event-governance-poc/internal/db"
	"github.com/mjones3/event-governance-poc/internal/extract"
	"github.com/mjones3/event-governance-poc/internal/progress"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `eventgov init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openDatabase opens the SQLite database under the configured data dir.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	return db.Open(filepath.Join(cfg.DataDir, "eventgov.db"))
}

// newScanner builds a scanner honoring the verbose flag.
func newScanner() *extract.Scanner {
	s := extract.NewScanner()
	s.Verbose = verbose
	if !verbose {
		s.Log = io.Discard
	}
	return s
}

// scanAll scans every configured repository, reporting per-service
// progress. Returns all service scans in repo order, services sorted
// within each repo.
func scanAll(cfg *config.Config, reporter progress.Reporter) ([]*extract.ServiceScan, error) {
	if len(cfg.Repos) == 0 {
		return nil, fmt.Errorf("no repos configured; add them to %s or run `eventgov init`", cfgFile)
	}

	scanner := newScanner()

	// Resolve service lists up front so progress has a total.
	type job struct {
		repo    extract.Repo
		service string
	}
	var jobs []job
	for _, repo := range cfg.Repos {
		services := repo.Services
		if len(services) == 0 {
			discovered, err := extract.DiscoverServices(repo.Path)
			if err != nil {
				return nil, fmt.Errorf("discovering services in %s: %w", repo.Path, err)
			}
			services = discovered
		}
		for _, service := range services {
			jobs = append(jobs, job{repo: repo, service: service})
		}
	}

	if reporter != nil {
		reporter.Start(len(jobs))
	}

	var scans []*extract.ServiceScan
	for i, j := range jobs {
		if reporter != nil {
			reporter.Update(i+1, fmt.Sprintf("%s/%s", j.repo.Name, j.service))
		}
		dir := filepath.Join(j.repo.Path, j.service)
		if _, err := os.Stat(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: service not found: %s/%s\n", j.repo.Name, j.service)
			continue
		}
		scan, err := scanner.ScanService(j.repo.Name, j.service, dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: scanning %s/%s: %v\n", j.repo.Name, j.service, err)
			continue
		}
		scans = append(scans, scan)
	}

	if reporter != nil {
		reporter.Finish()
	}
	return scans, nil
}

// eventDetails indexes extracted events by name across all scans. When
// the same event is defined in more than one service, the first
// definition wins.
func eventDetails(scans []*extract.ServiceScan) map[string]extract.Event {
	details := map[string]extract.Event{}
	for _, scan := range scans {
		for _, ev := range scan.Events {
			if _, ok := details[ev.Name]; !ok {
				details[ev.Name] = ev
			}
		}
	}
	return details
}
