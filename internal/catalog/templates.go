package catalog

const eventPageTemplate = `---
id: {{ .ID }}
name: {{ .ID }}
version: '{{ .Version }}'
summary: {{ .Summary }}
owners:
{{- if .Producers }}
{{- range .Producers }}
  - {{ slug . }}
{{- end }}
{{- else }}
  []
{{- end }}
producers:
{{- if .Producers }}
{{- range .Producers }}
  - {{ slug . }}
{{- end }}
{{- else }}
  []
{{- end }}
consumers:
{{- if .Consumers }}
{{- range .Consumers }}
  - {{ slug . }}
{{- end }}
{{- else }}
  []
{{- end }}
badges:
  - content: "v{{ .Version }}"
    backgroundColor: "#6366f1"
    textColor: white
{{- if .Orphaned }}
  - content: "Orphaned"
    backgroundColor: "#ef4444"
    textColor: white
{{- end }}
---

# {{ .ID }} Event

**Event Type**: {{ .Type }}
**Version**: {{ .Version }}
{{- if .Service }}
**Service**: {{ slug .Service }}
{{- end }}
{{- if .Repository }}
**Repository**: {{ .Repository }}
{{- end }}

## Business Context

{{ .Summary }}.
{{ if .Orphaned }}
> **Warning**: this event is orphaned. It has {{ if not .Producers }}no known publisher{{ else }}no known consumer{{ end }} in the scanned repositories.
{{ end }}
## Flow

` + "```mermaid\n{{ .Diagram }}```" + `
{{ if .Fields }}
## Event Schema Fields

| Field | Type | Required | Description |
|-------|------|----------|-------------|
{{- range .Fields }}
| {{ .Name }} | {{ .JavaType }} | {{ if .Required }}Yes{{ else }}No{{ end }} | {{ .Doc }} |
{{- end }}
{{ end }}
{{- if .Schema }}
## Avro Schema

` + "```json\n{{ .Schema }}\n```" + `
{{ end }}
<NodeGraph />
`

const servicePageTemplate = `---
id: {{ slug .ServiceID }}
name: {{ .DisplayName }}
summary: {{ .DisplayName }} domain service
{{- if .Repository }}
badges:
  - content: "Repository: {{ .Repository }}"
    backgroundColor: "#6366f1"
    textColor: white
{{- end }}
sends:
{{- if .Sends }}
{{- range .Sends }}
    - id: {{ eventID . }}
      version: '1.0'
{{- end }}
{{- else }}
    []
{{- end }}
receives:
{{- if .Receives }}
{{- range .Receives }}
    - id: {{ eventID . }}
      version: '1.0'
{{- end }}
{{- else }}
    []
{{- end }}
---

# {{ .DisplayName }}

## Events Published
{{ if .Sends }}
{{- range .Sends }}
- **{{ eventID . }}**: {{ . }}
{{- end }}
{{- else }}
- None
{{- end }}

## Events Consumed
{{ if .Receives }}
{{- range .Receives }}
- **{{ eventID . }}**: {{ . }}
{{- end }}
{{- else }}
- None
{{- end }}

<NodeGraph />
`

const indexPageTemplate = `---
id: event-inventory
name: Event Inventory
summary: Domain events across all scanned repositories
---

# Event Inventory

**Total events**: {{ .Summary.TotalEvents }}
**Orphaned events**: {{ .Summary.OrphanedCount }}

## System Diagram

` + "```mermaid\n{{ .Diagram }}```" + `
{{ if .Orphans }}
## Orphaned Events

These events have a publisher with no consumer, or a consumer with no
publisher. Each one is either dead code or a missing integration.
{{ range .Orphans }}
- **{{ .EventName }}** ({{ if not .Publishers }}no publisher{{ else }}no consumer{{ end }})
{{- end }}
{{ end }}`
