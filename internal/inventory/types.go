package inventory

// ServiceFact is the fact bundle produced by scanning one service: which
// events the service publishes and which it consumes. ServiceID is unique
// within a scan run, conventionally "<repository>/<service>".
type ServiceFact struct {
	ServiceID string   `json:"service_id"`
	Published []string `json:"published"`
	Consumed  []string `json:"consumed"`
}

// EventFlow is the aggregated record for one event name. Publishers and
// Consumers hold distinct service IDs in the order they were first observed
// across the input fact sequence.
type EventFlow struct {
	EventName  string   `json:"event_name"`
	Publishers []string `json:"publishers"`
	Consumers  []string `json:"consumers"`
	IsOrphaned bool     `json:"is_orphaned"`
}

// Summary holds derived counts over a set of flows.
type Summary struct {
	TotalEvents   int `json:"total_events"`
	OrphanedCount int `json:"orphaned_count"`
}

// FactID composes a service fact identifier from a repository name and a
// service name.
func FactID(repository, service string) string {
	if repository == "" {
		return service
	}
	return repository + "/" + service
}
