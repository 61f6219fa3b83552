package extract

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	packageRe    = regexp.MustCompile(`package\s+([\w.]+);`)
	eventClassRe = regexp.MustCompile(`public\s+(?:record|class)\s+(\w+Event)\b`)
	eventTypeRe  = regexp.MustCompile(`EventType\.(\w+)`)

	// Record components: everything between the parentheses of the record
	// header, terminated by the body brace or an implements clause. The
	// terminator matters because annotated components contain parentheses
	// of their own.
	recordHeaderRe = regexp.MustCompile(`(?s)public\s+record\s+\w+\s*\((.*?)\)\s*(?:implements\b|\{)`)

	// Type/name pairs inside record components or method parameters. The
	// type may carry a single level of generics (List<OrderLine>).
	componentRe = regexp.MustCompile(`(\w+(?:<[\w<>, ]+>)?)\s+(\w+)`)

	// @Schema-annotated record components with attributes.
	annotatedComponentRe = regexp.MustCompile(`(?s)@Schema\(([^)]*)\)\s*(\w+(?:<[^>]+>)?)\s+(\w+)`)
	schemaDescRe         = regexp.MustCompile(`description\s*=\s*"([^"]+)"`)
	schemaTitleRe        = regexp.MustCompile(`title\s*=\s*"([^"]+)"`)
	schemaExampleRe      = regexp.MustCompile(`example\s*=\s*"([^"]+)"`)

	privateFieldRe = regexp.MustCompile(`private\s+(?:final\s+)?(\w+(?:<[\w<>, ]+>)?)\s+(\w+);`)

	eventImportRe  = regexp.MustCompile(`import\s+[\w.]+\.event\.(\w+Event);`)
	genericParamRe = regexp.MustCompile(`<(\w+Event)>`)
	kafkaTopicsRe  = regexp.MustCompile(`@KafkaListener\s*\(\s*topics\s*=\s*"([^"]+)"`)
)

// ParseEventFile extracts event details from the content of a *Event.java
// file. Returns nil if no public event record or class is found. Like all
// extraction in this package it is best-effort text matching, not parsing.
func ParseEventFile(content, path string) *Event {
	m := eventClassRe.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	name := m[1]

	pkg := ""
	if pm := packageRe.FindStringSubmatch(content); pm != nil {
		pkg = pm[1]
	}

	eventType := strings.ToUpper(strings.TrimSuffix(name, "Event"))
	if tm := eventTypeRe.FindStringSubmatch(content); tm != nil {
		eventType = tm[1]
	}

	ev := &Event{
		Name:     name,
		Package:  pkg,
		Type:     eventType,
		Version:  "1.0",
		FilePath: filepath.ToSlash(path),
	}

	// Record components are treated as required; class fields as optional.
	if rm := recordHeaderRe.FindStringSubmatch(content); rm != nil {
		ev.Fields = parseRecordComponents(rm[1])
	}
	for _, fm := range privateFieldRe.FindAllStringSubmatch(content, -1) {
		ev.Fields = append(ev.Fields, Field{
			Name:     fm[2],
			JavaType: fm[1],
			Required: false,
		})
	}

	return ev
}

// parseRecordComponents extracts fields from the text between a record
// header's parentheses. @Schema-annotated components carry doc, example and
// required-mode metadata; bare components are plain type/name pairs.
func parseRecordComponents(components string) []Field {
	var fields []Field

	annotated := annotatedComponentRe.FindAllStringSubmatch(components, -1)
	if len(annotated) > 0 {
		for _, m := range annotated {
			attrs, javaType, name := m[1], m[2], m[3]
			f := Field{
				Name:     name,
				JavaType: javaType,
				Required: strings.Contains(attrs, "requiredMode = REQUIRED") ||
					strings.Contains(attrs, "requiredMode = Schema.RequiredMode.REQUIRED"),
			}
			if dm := schemaDescRe.FindStringSubmatch(attrs); dm != nil {
				f.Doc = dm[1]
			} else if tm := schemaTitleRe.FindStringSubmatch(attrs); tm != nil {
				f.Doc = tm[1]
			}
			if em := schemaExampleRe.FindStringSubmatch(attrs); em != nil {
				f.Example = em[1]
			}
			fields = append(fields, f)
		}
		return fields
	}

	for _, m := range componentRe.FindAllStringSubmatch(components, -1) {
		fields = append(fields, Field{
			Name:     m[2],
			JavaType: m[1],
			Required: true,
		})
	}
	return fields
}

var recordNameRe = regexp.MustCompile(`public\s+record\s+(\w+)\s*\(`)

// ParseRecord extracts the name, package and components of any public
// record, event or not. Used for resolving nested value-object and payload
// types during schema conversion.
func ParseRecord(content string) (name, pkg string, fields []Field, ok bool) {
	m := recordNameRe.FindStringSubmatch(content)
	if m == nil {
		return "", "", nil, false
	}
	name = m[1]
	if pm := packageRe.FindStringSubmatch(content); pm != nil {
		pkg = pm[1]
	}
	if rm := recordHeaderRe.FindStringSubmatch(content); rm != nil {
		fields = parseRecordComponents(rm[1])
	}
	return name, pkg, fields, true
}

// ConsumedFromListener extracts the event names a listener file appears to
// consume: the class-name convention (FooEventListener -> FooEvent), event
// imports, and generic type parameters. Duplicates are suppressed in
// first-seen order.
func ConsumedFromListener(content, path string) []string {
	var consumed []string
	seen := map[string]bool{}

	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			consumed = append(consumed, name)
		}
	}

	base := filepath.Base(path)
	if strings.HasSuffix(base, "Listener.java") && !strings.HasPrefix(base, "Abstract") {
		name := strings.TrimSuffix(base, "Listener.java")
		if strings.HasSuffix(name, "Event") {
			add(name)
		} else {
			add(name + "Event")
		}
	}

	for _, m := range eventImportRe.FindAllStringSubmatch(content, -1) {
		add(m[1])
	}
	for _, m := range genericParamRe.FindAllStringSubmatch(content, -1) {
		add(m[1])
	}

	return consumed
}

// ListenerTopics extracts Kafka topic names from @KafkaListener annotations.
func ListenerTopics(content string) []string {
	var topics []string
	seen := map[string]bool{}
	for _, m := range kafkaTopicsRe.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			topics = append(topics, m[1])
		}
	}
	return topics
}

// IsEventFile reports whether a path follows the domain-event file
// convention: an *Event.java file under a domain .../event/ directory.
func IsEventFile(relPath string) bool {
	slash := filepath.ToSlash(relPath)
	if !strings.HasSuffix(slash, "Event.java") {
		return false
	}
	return strings.Contains(slash, "domain") && strings.Contains(slash, "event")
}

// IsListenerFile reports whether a path names a concrete listener class.
func IsListenerFile(relPath string) bool {
	base := filepath.Base(relPath)
	return strings.HasSuffix(base, "Listener.java") && !strings.HasPrefix(base, "Abstract")
}
