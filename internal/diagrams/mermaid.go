package diagrams

import (
	"fmt"
	"strings"

	"github.com/mjones3/event-governance-poc/internal/inventory"
)

// FlowDiagram generates a mermaid graph LR diagram for one event flow:
// publisher services on the left, the event in the middle, consumer
// services on the right. Missing sides render a warning node so orphaned
// events are visible at a glance.
func FlowDiagram(flow inventory.EventFlow) string {
	var b strings.Builder
	b.WriteString("graph LR\n")

	eventID := sanitizeID(flow.EventName)
	b.WriteString(fmt.Sprintf("    %s{{\"%s\"}}\n", eventID, escapeMermaid(flow.EventName)))

	if len(flow.Publishers) == 0 {
		b.WriteString(fmt.Sprintf("    no_publisher[\"no publisher\"] -.-> %s\n", eventID))
	}
	for _, p := range flow.Publishers {
		b.WriteString(fmt.Sprintf("    %s[\"%s\"] -->|publishes| %s\n", sanitizeID(p), escapeMermaid(p), eventID))
	}

	if len(flow.Consumers) == 0 {
		b.WriteString(fmt.Sprintf("    %s -.-> no_consumer[\"no consumer\"]\n", eventID))
	}
	for _, c := range flow.Consumers {
		b.WriteString(fmt.Sprintf("    %s -->|consumed by| %s[\"%s\"]\n", eventID, sanitizeID(c), escapeMermaid(c)))
	}

	return b.String()
}

// InventoryDiagram generates a mermaid graph TD diagram over the whole
// inventory, connecting services through the events they exchange.
func InventoryDiagram(flows []inventory.EventFlow) string {
	var b strings.Builder
	b.WriteString("graph TD\n")

	declared := map[string]bool{}
	declare := func(service string) {
		if !declared[service] {
			declared[service] = true
			b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", sanitizeID(service), escapeMermaid(service)))
		}
	}

	for _, f := range flows {
		for _, p := range f.Publishers {
			declare(p)
			for _, c := range f.Consumers {
				declare(c)
				b.WriteString(fmt.Sprintf("    %s -->|%s| %s\n",
					sanitizeID(p), escapeMermaid(f.EventName), sanitizeID(c)))
			}
		}
	}

	return b.String()
}

// sanitizeID converts a string into a safe mermaid node ID.
func sanitizeID(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		".", "_",
		"-", "_",
		" ", "_",
		"(", "_",
		")", "_",
		"[", "_",
		"]", "_",
		"{", "_",
		"}", "_",
		":", "_",
	)
	return replacer.Replace(s)
}

// escapeMermaid escapes characters that have special meaning in mermaid labels.
func escapeMermaid(s string) string {
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "(", "#lpar;")
	s = strings.ReplaceAll(s, ")", "#rpar;")
	s = strings.ReplaceAll(s, "[", "#lsqb;")
	s = strings.ReplaceAll(s, "]", "#rsqb;")
	s = strings.ReplaceAll(s, "{", "#lbrace;")
	s = strings.ReplaceAll(s, "}", "#rbrace;")
	s = strings.ReplaceAll(s, "<", "#lt;")
	s = strings.ReplaceAll(s, ">", "#gt;")
	return s
}
