package extract

import "regexp"

// Result is what a single heuristic derived from one source file.
type Result struct {
	Published []string
	Consumed  []string
	Topics    []string
}

// Heuristic derives event names from one source file. Extraction variants
// disagree on what counts as evidence (file path conventions, imports,
// listener class-name suffixes, template generics), so none is treated as
// authoritative: the scanner runs every heuristic and unions the results.
type Heuristic interface {
	Name() string
	Extract(relPath, content string) Result
}

// DefaultHeuristics returns the standard heuristic set.
func DefaultHeuristics() []Heuristic {
	return []Heuristic{
		eventFileHeuristic{},
		listenerHeuristic{},
		kafkaTemplateHeuristic{},
	}
}

// eventFileHeuristic treats an *Event.java file under a domain event
// directory as evidence the owning service publishes that event.
type eventFileHeuristic struct{}

func (eventFileHeuristic) Name() string { return "event-file" }

func (eventFileHeuristic) Extract(relPath, content string) Result {
	if !IsEventFile(relPath) {
		return Result{}
	}
	m := eventClassRe.FindStringSubmatch(content)
	if m == nil {
		return Result{}
	}
	return Result{Published: []string{m[1]}}
}

// listenerHeuristic treats a concrete *Listener.java as evidence of
// consumption: the class-name convention plus event imports and generic
// parameters. This can over-report (a listener importing an event type for
// re-publishing still counts), which is accepted best-effort behaviour.
type listenerHeuristic struct{}

func (listenerHeuristic) Name() string { return "listener" }

func (listenerHeuristic) Extract(relPath, content string) Result {
	if !IsListenerFile(relPath) {
		return Result{}
	}
	return Result{
		Consumed: ConsumedFromListener(content, relPath),
		Topics:   ListenerTopics(content),
	}
}

var kafkaTemplateRe = regexp.MustCompile(`KafkaTemplate<\s*\w+\s*,\s*(\w+Event)\s*>`)

// kafkaTemplateHeuristic treats a typed KafkaTemplate<K, XxxEvent> as
// evidence the service publishes XxxEvent.
type kafkaTemplateHeuristic struct{}

func (kafkaTemplateHeuristic) Name() string { return "kafka-template" }

func (kafkaTemplateHeuristic) Extract(relPath, content string) Result {
	var published []string
	seen := map[string]bool{}
	for _, m := range kafkaTemplateRe.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			published = append(published, m[1])
		}
	}
	return Result{Published: published}
}
