package extract

import "github.com/mjones3/event-governance-poc/internal/inventory"

// Field is one component of a Java event record or class.
type Field struct {
	Name     string `json:"name"`
	JavaType string `json:"type"`
	Required bool   `json:"required"`
	Doc      string `json:"doc,omitempty"`
	Example  string `json:"example,omitempty"`
}

// Event holds the details extracted from one *Event.java file.
type Event struct {
	Name       string  `json:"name"`
	Package    string  `json:"package"`
	Type       string  `json:"type"`
	Version    string  `json:"version"`
	Service    string  `json:"service"`
	Repository string  `json:"repository"`
	FilePath   string  `json:"file_path"`
	Fields     []Field `json:"fields"`
}

// ServiceScan is the full extraction result for one service. Published and
// Consumed are ordered name sets built from every heuristic that fired;
// Events carries the field-level detail for published events whose source
// file could be parsed.
type ServiceScan struct {
	Service    string   `json:"service"`
	Repository string   `json:"repository"`
	Published  []string `json:"published_events"`
	Consumed   []string `json:"consumed_events"`
	Events     []Event  `json:"events"`
	Topics     []string `json:"topics,omitempty"`
}

// Fact reduces the scan to the service_id/published/consumed shape the
// inventory graph ingests.
func (s *ServiceScan) Fact() inventory.ServiceFact {
	return inventory.ServiceFact{
		ServiceID: inventory.FactID(s.Repository, s.Service),
		Published: s.Published,
		Consumed:  s.Consumed,
	}
}
