package catalog

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Preview converts a generated catalog tree into a static HTML preview
// that can be browsed without an EventCatalog installation.
type Preview struct {
	CatalogDir string
	OutputDir  string
	Title      string
}

// NewPreview creates a Preview over a generated catalog directory.
func NewPreview(catalogDir, outputDir, title string) *Preview {
	return &Preview{CatalogDir: catalogDir, OutputDir: outputDir, Title: title}
}

type previewPage struct {
	Title    string
	Site     string
	Content  template.HTML
	BasePath string
	Nav      []navEntry
}

type navEntry struct {
	Href  string
	Label string
}

var (
	frontmatterRe  = regexp.MustCompile(`(?s)\A---\n.*?\n---\n`)
	componentRe    = regexp.MustCompile(`(?m)^<\w+\s*/>\s*$`)
	mermaidFenceRe = regexp.MustCompile("(?s)```mermaid\n(.*?)```")
)

// Generate renders every .md and .mdx page to HTML. Returns the number of
// pages generated.
func (p *Preview) Generate() (int, error) {
	var pages []string
	err := filepath.Walk(p.CatalogDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".md") || strings.HasSuffix(path, ".mdx") {
			rel, err := filepath.Rel(p.CatalogDir, path)
			if err != nil {
				return err
			}
			pages = append(pages, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walking catalog dir: %w", err)
	}
	if len(pages) == 0 {
		return 0, fmt.Errorf("no catalog pages found in %s", p.CatalogDir)
	}

	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(filepath.Join(p.OutputDir, "style.css"), []byte(previewCSS), 0o644); err != nil {
		return 0, err
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	tmpl, err := template.New("page").Parse(previewTemplate)
	if err != nil {
		return 0, fmt.Errorf("parsing preview template: %w", err)
	}

	nav := buildNav(pages)
	for _, rel := range pages {
		if err := p.renderPage(md, tmpl, nav, rel); err != nil {
			return 0, fmt.Errorf("rendering %s: %w", rel, err)
		}
	}

	return len(pages), nil
}

func (p *Preview) renderPage(md goldmark.Markdown, tmpl *template.Template, nav []navEntry, relPath string) error {
	content, err := os.ReadFile(filepath.Join(p.CatalogDir, filepath.FromSlash(relPath)))
	if err != nil {
		return err
	}

	// MDX frontmatter and components do not render as markdown, and
	// mermaid fences become divs so mermaid.js renders them client-side.
	body := frontmatterRe.ReplaceAll(content, nil)
	body = componentRe.ReplaceAll(body, nil)
	body = mermaidFenceRe.ReplaceAll(body, []byte("<div class=\"mermaid\">\n$1</div>"))

	var htmlBuf bytes.Buffer
	if err := md.Convert(body, &htmlBuf); err != nil {
		return fmt.Errorf("converting markdown: %w", err)
	}
	rendered := htmlBuf.String()

	outRel := pagePathToHTML(relPath)
	outPath := filepath.Join(p.OutputDir, filepath.FromSlash(outRel))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	depth := strings.Count(outRel, "/")
	basePath := strings.Repeat("../", depth)

	data := previewPage{
		Title:    pageTitle(string(content), relPath),
		Site:     p.Title,
		Content:  template.HTML(rendered),
		BasePath: basePath,
		Nav:      nav,
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return tmpl.Execute(f, data)
}

// buildNav lists all pages relative to the preview root.
func buildNav(pages []string) []navEntry {
	nav := make([]navEntry, 0, len(pages))
	for _, rel := range pages {
		label := strings.TrimSuffix(rel, "/index.mdx")
		label = strings.TrimSuffix(label, "index.mdx")
		if label == "" {
			label = "overview"
		}
		nav = append(nav, navEntry{Href: pagePathToHTML(rel), Label: label})
	}
	return nav
}

// pagePathToHTML maps events/Foo/index.mdx to events/Foo/index.html.
func pagePathToHTML(rel string) string {
	rel = strings.TrimSuffix(rel, ".mdx")
	rel = strings.TrimSuffix(rel, ".md")
	return rel + ".html"
}

// pageTitle pulls the first # heading, falling back to the path.
func pageTitle(content, relPath string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return relPath
}

const previewTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{ .Title }} - {{ .Site }}</title>
<link rel="stylesheet" href="{{ .BasePath }}style.css">
<script type="module">
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.esm.min.mjs";
mermaid.initialize({ startOnLoad: true });
</script>
</head>
<body>
<nav>
<h2>{{ .Site }}</h2>
<ul>
{{- range .Nav }}
<li><a href="{{ $.BasePath }}{{ .Href }}">{{ .Label }}</a></li>
{{- end }}
</ul>
</nav>
<main>
{{ .Content }}
</main>
</body>
</html>
`

const previewCSS = `body {
  display: flex;
  margin: 0;
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
  color: #1f2328;
}
nav {
  width: 260px;
  min-height: 100vh;
  padding: 1rem;
  background: #f6f8fa;
  border-right: 1px solid #d0d7de;
}
nav ul { list-style: none; padding: 0; }
nav li { margin: 0.25rem 0; }
nav a { color: #0969da; text-decoration: none; }
main { flex: 1; padding: 2rem; max-width: 56rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #d0d7de; padding: 0.4rem 0.6rem; text-align: left; }
th { background: #f6f8fa; }
code { background: #f6f8fa; padding: 0.1rem 0.3rem; border-radius: 4px; }
pre code { display: block; padding: 1rem; overflow-x: auto; }
blockquote { border-left: 4px solid #d0d7de; margin-left: 0; padding-left: 1rem; color: #57606a; }
.mermaid { margin: 1rem 0; }
`
