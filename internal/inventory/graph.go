package inventory

import "sort"

// Graph merges per-service publish/consume facts into a global mapping of
// event name to EventFlow. It is rebuilt from scratch for every scan run:
// constructed, populated via AddServiceFact, snapshotted via Flows, and
// discarded. It performs no validation and no I/O.
type Graph struct {
	flows map[string]*EventFlow
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{flows: make(map[string]*EventFlow)}
}

// AddServiceFact folds one service's facts into the graph. For every event
// in fact.Published the service is appended to that event's publisher list
// unless already present, and symmetrically for Consumed. Adding the same
// fact twice leaves the graph unchanged.
func (g *Graph) AddServiceFact(fact ServiceFact) {
	for _, name := range fact.Published {
		flow := g.flow(name)
		if !contains(flow.Publishers, fact.ServiceID) {
			flow.Publishers = append(flow.Publishers, fact.ServiceID)
		}
	}
	for _, name := range fact.Consumed {
		flow := g.flow(name)
		if !contains(flow.Consumers, fact.ServiceID) {
			flow.Consumers = append(flow.Consumers, fact.ServiceID)
		}
	}
}

// Flow returns the flow for the given event name, or nil if the event has
// not been observed.
func (g *Graph) Flow(name string) *EventFlow {
	f, ok := g.flows[name]
	if !ok {
		return nil
	}
	snap := snapshot(f)
	return &snap
}

// Flows returns all flows sorted by event name, with IsOrphaned derived.
// Sorted order is the stable presentation contract: report consumers rely on
// it for reproducible diffs. Publisher/consumer lists inside each flow keep
// first-seen input order.
func (g *Graph) Flows() []EventFlow {
	names := make([]string, 0, len(g.flows))
	for name := range g.flows {
		names = append(names, name)
	}
	sort.Strings(names)

	flows := make([]EventFlow, 0, len(names))
	for _, name := range names {
		flows = append(flows, snapshot(g.flows[name]))
	}
	return flows
}

// Build applies every fact in sequence order to a fresh graph and returns
// the resulting flows sorted by event name. The empty input yields an empty
// (non-nil) slice.
func Build(facts []ServiceFact) []EventFlow {
	g := NewGraph()
	for _, fact := range facts {
		g.AddServiceFact(fact)
	}
	return g.Flows()
}

// Orphaned filters flows down to those with no publishers or no consumers,
// preserving the input order.
func Orphaned(flows []EventFlow) []EventFlow {
	orphans := make([]EventFlow, 0)
	for _, f := range flows {
		if f.IsOrphaned {
			orphans = append(orphans, f)
		}
	}
	return orphans
}

// Summarize returns derived counts over the given flows.
func Summarize(flows []EventFlow) Summary {
	return Summary{
		TotalEvents:   len(flows),
		OrphanedCount: len(Orphaned(flows)),
	}
}

// flow returns the mutable entry for name, creating it if absent.
func (g *Graph) flow(name string) *EventFlow {
	f, ok := g.flows[name]
	if !ok {
		f = &EventFlow{EventName: name}
		g.flows[name] = f
	}
	return f
}

// snapshot copies a flow and derives its orphan flag. An event with
// publishers but no consumers, or consumers but no publishers, is orphaned
// regardless of count on the other side.
func snapshot(f *EventFlow) EventFlow {
	out := EventFlow{
		EventName:  f.EventName,
		Publishers: append([]string{}, f.Publishers...),
		Consumers:  append([]string{}, f.Consumers...),
	}
	out.IsOrphaned = len(out.Publishers) == 0 || len(out.Consumers) == 0
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
