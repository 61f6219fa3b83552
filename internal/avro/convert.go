// Package avro converts Java event records extracted from source trees into
// Avro schema documents (.avsc JSON). Schemas are JSON values built from
// maps and strings, mirroring the Avro spec's own JSON encoding; no binary
// codec is involved.
package avro

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mjones3/event-governance-poc/internal/extract"
)

// primitiveTypes maps Java types to their Avro counterparts. Temporal and
// UUID types use logical type annotations.
var primitiveTypes = map[string]any{
	"String":  "string",
	"Integer": "int",
	"int":     "int",
	"Long":    "long",
	"long":    "long",
	"Boolean": "boolean",
	"boolean": "boolean",
	"Double":  "double",
	"double":  "double",
	"Float":   "float",
	"float":   "float",
	"UUID":          map[string]any{"type": "string", "logicalType": "uuid"},
	"ZonedDateTime": map[string]any{"type": "long", "logicalType": "timestamp-millis"},
	"Instant":       map[string]any{"type": "long", "logicalType": "timestamp-millis"},
	"LocalDate":     map[string]any{"type": "int", "logicalType": "date"},
	"BigDecimal":    map[string]any{"type": "string", "logicalType": "decimal-string"},
}

var (
	listTypeRe     = regexp.MustCompile(`^(\w+)<(.+)>$`)
	enumConstantRe = regexp.MustCompile(`private\s+static\s+final\s+String\s+\w+\s*=\s*"([^"]+)"`)
)

// Resolver resolves Java type names to Avro definitions, searching the
// service source tree for custom value-object and payload types. It caches
// resolved definitions and tracks which named types have already been
// defined in the schema under construction so later uses become name
// references instead of redefinitions ("Can't redefine" registry errors).
// A Resolver is created fresh for each conversion and discarded afterwards.
type Resolver struct {
	sourceDir string
	cache     map[string]any
	defined   map[string]bool
}

// NewResolver returns a resolver rooted at the given service source
// directory.
func NewResolver(sourceDir string) *Resolver {
	return &Resolver{
		sourceDir: sourceDir,
		cache:     make(map[string]any),
		defined:   make(map[string]bool),
	}
}

// ConvertEvent converts an extracted event into an Avro record schema.
// Optional fields become ["null", T] unions with a null default. sourceDir
// is searched for custom field types; unresolvable types fall back to
// string, keeping conversion total over best-effort extraction output.
func ConvertEvent(ev extract.Event, sourceDir string) map[string]any {
	r := NewResolver(sourceDir)

	namespace := ev.Package
	if namespace == "" {
		namespace = "com.biopro.events"
	}

	fields := make([]any, 0, len(ev.Fields))
	for _, f := range ev.Fields {
		fields = append(fields, r.convertField(f))
	}

	return map[string]any{
		"type":      "record",
		"name":      ev.Name + "Payload",
		"namespace": namespace,
		"doc":       fmt.Sprintf("Payload for %s (%s v%s)", ev.Name, ev.Type, ev.Version),
		"fields":    fields,
	}
}

// convertField converts one extracted field into an Avro field entry.
func (r *Resolver) convertField(f extract.Field) map[string]any {
	avroType := r.Resolve(f.JavaType, map[string]bool{})

	doc := f.Doc
	if doc == "" {
		doc = f.Name + " field"
	}
	if f.Example != "" {
		doc += fmt.Sprintf(" (example: %s)", f.Example)
	}

	entry := map[string]any{
		"name": f.Name,
		"doc":  doc,
	}
	if f.Required {
		entry["type"] = avroType
	} else {
		entry["type"] = []any{"null", avroType}
		entry["default"] = nil
	}
	return entry
}

// Resolve maps a Java type to an Avro type, recursing through container
// generics and custom types found in the source tree. processed guards
// against type cycles; a cycle degrades to "string".
func (r *Resolver) Resolve(javaType string, processed map[string]bool) any {
	javaType = strings.TrimSpace(javaType)

	if m := listTypeRe.FindStringSubmatch(javaType); m != nil {
		container, element := m[1], m[2]
		switch container {
		case "List", "Set", "Collection":
			return map[string]any{
				"type":  "array",
				"items": r.Resolve(element, processed),
			}
		case "Map":
			// Map<String, V> -> Avro map keyed by string.
			parts := strings.SplitN(element, ",", 2)
			if len(parts) == 2 {
				return map[string]any{
					"type":   "map",
					"values": r.Resolve(parts[1], processed),
				}
			}
		}
		return "string"
	}

	if t, ok := primitiveTypes[javaType]; ok {
		return t
	}

	if def, ok := r.cache[javaType]; ok {
		// Already defined in this schema: reference by name.
		if name, ok := definitionName(def); ok && r.defined[name] {
			return name
		}
		return def
	}

	if processed[javaType] {
		return "string"
	}
	processed[javaType] = true

	path := r.findTypeFile(javaType)
	if path == "" {
		return "string"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "string"
	}
	content := string(data)

	if symbols, namespace, ok := valueObjectEnum(content); ok {
		def := map[string]any{
			"type":    "enum",
			"name":    javaType,
			"symbols": symbols,
		}
		if namespace != "" {
			def["namespace"] = namespace
		}
		r.remember(javaType, def)
		return def
	}

	if name, pkg, fields, ok := extract.ParseRecord(content); ok {
		avroFields := make([]any, 0, len(fields))
		for _, f := range fields {
			avroFields = append(avroFields, map[string]any{
				"name": f.Name,
				"type": r.Resolve(f.JavaType, processed),
				"doc":  f.Name + " field",
			})
		}
		def := map[string]any{
			"type":      "record",
			"name":      name,
			"namespace": pkg,
			"fields":    avroFields,
		}
		r.remember(javaType, def)
		return def
	}

	return "string"
}

// remember caches a named definition and marks it defined in the current
// schema, so every later use resolves to a name reference.
func (r *Resolver) remember(javaType string, def map[string]any) {
	r.cache[javaType] = def
	if name, ok := definitionName(def); ok {
		r.defined[name] = true
	}
}

// definitionName returns the short name of a named Avro definition.
func definitionName(def any) (string, bool) {
	m, ok := def.(map[string]any)
	if !ok {
		return "", false
	}
	name, ok := m["name"].(string)
	return name, ok
}

// typeFilePatterns is the search order for custom type sources: value
// objects first, then payloads, then anywhere in the tree.
var typeFilePatterns = []string{
	"**/valueobject/%s.java",
	"**/payload/%s.java",
	"**/%s.java",
}

// findTypeFile locates the Java source file for a custom type under the
// resolver's source directory. Returns "" when no candidate exists.
func (r *Resolver) findTypeFile(typeName string) string {
	fsys := os.DirFS(r.sourceDir)
	for _, pattern := range typeFilePatterns {
		matches, err := doublestar.Glob(fsys, fmt.Sprintf(pattern, typeName))
		if err != nil || len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		return filepath.Join(r.sourceDir, filepath.FromSlash(matches[0]))
	}
	return ""
}

// valueObjectEnum reports whether Java record content is an enum-like value
// object (a record wrapping a single String with static final String
// constants) and returns the enum symbols and namespace.
func valueObjectEnum(content string) (symbols []string, namespace string, ok bool) {
	if !strings.Contains(content, "record") || !strings.Contains(content, "(String value)") {
		return nil, "", false
	}
	for _, m := range enumConstantRe.FindAllStringSubmatch(content, -1) {
		symbols = append(symbols, m[1])
	}
	if len(symbols) == 0 {
		return nil, "", false
	}
	if _, pkg, _, found := extract.ParseRecord(content); found {
		namespace = pkg
	}
	return symbols, namespace, true
}
