package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/mjones3/event-governance-poc/internal/walker"
)

// Repo identifies one source repository to scan: a backend directory and
// the service subdirectories inside it. An empty Services list means
// discover them.
type Repo struct {
	Name     string   `json:"name" koanf:"name"`
	Path     string   `json:"path" koanf:"path"`
	Services []string `json:"services" koanf:"services"`
}

// Scanner extracts service facts from Java source trees. Individual file
// failures are skipped and logged; they never abort a scan.
type Scanner struct {
	Heuristics []Heuristic
	Verbose    bool
	Log        io.Writer
}

// NewScanner returns a scanner with the default heuristic set, logging to
// stderr.
func NewScanner() *Scanner {
	return &Scanner{
		Heuristics: DefaultHeuristics(),
		Log:        os.Stderr,
	}
}

func (s *Scanner) logf(format string, args ...any) {
	if s.Log != nil {
		fmt.Fprintf(s.Log, format+"\n", args...)
	}
}

// ScanService walks one service directory and returns everything the
// heuristics could extract from its Java sources.
func (s *Scanner) ScanService(repository, service, dir string) (*ServiceScan, error) {
	files, err := walker.Walk(walker.WalkerConfig{
		RootDir: dir,
		Include: []string{"**/*.java"},
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	scan := &ServiceScan{Service: service, Repository: repository}
	pubSeen := map[string]bool{}
	conSeen := map[string]bool{}
	topicSeen := map[string]bool{}

	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			s.logf("  [skip] %s: %v", f.RelPath, err)
			continue
		}
		content := string(data)

		if IsEventFile(f.RelPath) {
			if ev := ParseEventFile(content, f.RelPath); ev != nil {
				ev.Service = service
				ev.Repository = repository
				scan.Events = append(scan.Events, *ev)
			} else if s.Verbose {
				s.logf("  [skip] %s: no event class found", f.RelPath)
			}
		}

		for _, h := range s.Heuristics {
			r := h.Extract(f.RelPath, content)
			for _, name := range r.Published {
				if !pubSeen[name] {
					pubSeen[name] = true
					scan.Published = append(scan.Published, name)
				}
			}
			for _, name := range r.Consumed {
				if !conSeen[name] {
					conSeen[name] = true
					scan.Consumed = append(scan.Consumed, name)
				}
			}
			for _, topic := range r.Topics {
				if !topicSeen[topic] {
					topicSeen[topic] = true
					scan.Topics = append(scan.Topics, topic)
				}
			}
		}
	}

	return scan, nil
}

// ScanRepo scans every service in the repo, discovering service directories
// when none are configured. A missing service directory is logged and
// skipped.
func (s *Scanner) ScanRepo(repo Repo) ([]*ServiceScan, error) {
	services := repo.Services
	if len(services) == 0 {
		discovered, err := DiscoverServices(repo.Path)
		if err != nil {
			return nil, fmt.Errorf("discovering services in %s: %w", repo.Path, err)
		}
		services = discovered
	}

	var scans []*ServiceScan
	for _, service := range services {
		dir := filepath.Join(repo.Path, service)
		if _, err := os.Stat(dir); err != nil {
			s.logf("  [warn] service not found: %s", service)
			continue
		}
		scan, err := s.ScanService(repo.Name, service, dir)
		if err != nil {
			s.logf("  [warn] scanning %s: %v", service, err)
			continue
		}
		scans = append(scans, scan)
		if s.Verbose {
			s.logf("  [ok] %s: %d published, %d consumed",
				service, len(scan.Published), len(scan.Consumed))
		}
	}
	return scans, nil
}

// serviceMarkers identify a directory as a buildable service module.
var serviceMarkers = []string{"pom.xml", "build.gradle", "build.gradle.kts", "src/main/java"}

// DiscoverServices lists the immediate subdirectories of backendDir that
// look like service modules, sorted by name.
func DiscoverServices(backendDir string) ([]string, error) {
	entries, err := os.ReadDir(backendDir)
	if err != nil {
		return nil, err
	}

	var services []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		for _, marker := range serviceMarkers {
			if _, err := os.Stat(filepath.Join(backendDir, e.Name(), marker)); err == nil {
				services = append(services, e.Name())
				break
			}
		}
	}
	sort.Strings(services)
	return services, nil
}
