// Package catalog generates an EventCatalog-compatible documentation tree
// from the scanned event inventory: one MDX page per event, one per
// service, and an index page with the system diagram and orphan report.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/mjones3/event-governance-poc/internal/diagrams"
	"github.com/mjones3/event-governance-poc/internal/extract"
	"github.com/mjones3/event-governance-poc/internal/inventory"
)

// Generator writes catalog pages under OutputDir. When SchemasDir is set,
// event pages embed the event's generated .avsc document.
type Generator struct {
	OutputDir  string
	SchemasDir string
}

// NewGenerator creates a Generator rooted at outputDir.
func NewGenerator(outputDir string) *Generator {
	return &Generator{OutputDir: outputDir}
}

var templateFuncs = template.FuncMap{
	"slug":    ServiceSlug,
	"eventID": eventID,
}

var (
	eventTmpl   = template.Must(template.New("event").Funcs(templateFuncs).Parse(eventPageTemplate))
	serviceTmpl = template.Must(template.New("service").Funcs(templateFuncs).Parse(servicePageTemplate))
	indexTmpl   = template.Must(template.New("index").Funcs(templateFuncs).Parse(indexPageTemplate))
)

type eventPage struct {
	ID         string
	Version    string
	Type       string
	Summary    string
	Service    string
	Repository string
	Producers  []string
	Consumers  []string
	Orphaned   bool
	Fields     []extract.Field
	Diagram    string
	Schema     string
}

type servicePage struct {
	ServiceID   string
	DisplayName string
	Repository  string
	Sends       []string
	Receives    []string
}

type indexPage struct {
	Summary inventory.Summary
	Orphans []inventory.EventFlow
	Diagram string
}

// Generate writes the full catalog for a set of flows. details maps event
// names to their extracted definitions and may omit events that were only
// seen on the consumer side. Returns the number of pages written.
func (g *Generator) Generate(flows []inventory.EventFlow, details map[string]extract.Event) (int, error) {
	pages := 0

	for _, flow := range flows {
		if err := g.writeEventPage(flow, details[flow.EventName]); err != nil {
			return pages, err
		}
		pages++
	}

	for _, svc := range servicePages(flows) {
		if err := g.writeServicePage(svc); err != nil {
			return pages, err
		}
		pages++
	}

	if err := g.writeIndexPage(flows); err != nil {
		return pages, err
	}
	pages++

	return pages, nil
}

func (g *Generator) writeEventPage(flow inventory.EventFlow, detail extract.Event) error {
	page := eventPage{
		ID:         eventID(flow.EventName),
		Version:    detail.Version,
		Type:       detail.Type,
		Service:    detail.Service,
		Repository: detail.Repository,
		Producers:  flow.Publishers,
		Consumers:  flow.Consumers,
		Orphaned:   flow.IsOrphaned,
		Fields:     detail.Fields,
		Diagram:    diagrams.FlowDiagram(flow),
		Schema:     g.schemaFor(flow.EventName),
	}
	if page.Version == "" {
		page.Version = "1.0"
	}
	if page.Type == "" {
		page.Type = strings.ToUpper(eventID(flow.EventName))
	}
	page.Summary = fmt.Sprintf("Event published when %s occurs",
		strings.ToLower(strings.ReplaceAll(page.Type, "_", " ")))

	dir := filepath.Join(g.OutputDir, "events", page.ID)
	return renderPage(eventTmpl, dir, page)
}

func (g *Generator) writeServicePage(page servicePage) error {
	dir := filepath.Join(g.OutputDir, "services", ServiceSlug(page.ServiceID))
	return renderPage(serviceTmpl, dir, page)
}

func (g *Generator) writeIndexPage(flows []inventory.EventFlow) error {
	page := indexPage{
		Summary: inventory.Summarize(flows),
		Orphans: inventory.Orphaned(flows),
		Diagram: diagrams.InventoryDiagram(flows),
	}
	return renderPage(indexTmpl, g.OutputDir, page)
}

func renderPage(tmpl *template.Template, dir string, data any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, "index.mdx")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return nil
}

// schemaFor returns the generated .avsc document for an event, or "" when
// no schemas directory is configured or the event has no schema (consumed
// from another repository, or conversion skipped it).
func (g *Generator) schemaFor(eventName string) string {
	if g.SchemasDir == "" {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(g.SchemasDir, eventName+".avsc"))
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(data), "\n")
}

// servicePages derives one page per service from the flow graph, sorted
// by service ID. Sends and receives are listed in event-name order since
// flows arrive sorted.
func servicePages(flows []inventory.EventFlow) []servicePage {
	byID := map[string]*servicePage{}
	get := func(serviceID string) *servicePage {
		p, ok := byID[serviceID]
		if !ok {
			repository, service := splitServiceID(serviceID)
			display := service
			if display == "" {
				display = serviceID
			}
			p = &servicePage{
				ServiceID:   serviceID,
				DisplayName: titleCase(display) + " Service",
				Repository:  repository,
			}
			byID[serviceID] = p
		}
		return p
	}

	for _, f := range flows {
		for _, pub := range f.Publishers {
			p := get(pub)
			p.Sends = append(p.Sends, f.EventName)
		}
		for _, cons := range f.Consumers {
			p := get(cons)
			p.Receives = append(p.Receives, f.EventName)
		}
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pages := make([]servicePage, 0, len(ids))
	for _, id := range ids {
		pages = append(pages, *byID[id])
	}
	return pages
}

// ServiceSlug converts a service ID ("repo/service") into a catalog page
// ID ("repo-service-service").
func ServiceSlug(serviceID string) string {
	slug := strings.ToLower(strings.ReplaceAll(serviceID, "/", "-"))
	if !strings.HasSuffix(slug, "-service") {
		slug += "-service"
	}
	return slug
}

// eventID strips the Event suffix, matching catalog page naming.
func eventID(eventName string) string {
	return strings.TrimSuffix(eventName, "Event")
}

func splitServiceID(id string) (repository, service string) {
	if i := strings.Index(id, "/"); i >= 0 {
		return id[:i], id[i+1:]
	}
	return "", id
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
