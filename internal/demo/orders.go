// Package demo generates synthetic order traffic against a running order
// service. A configurable share of orders is deliberately malformed so the
// downstream schema validation and DLQ path can be observed under load.
package demo

import (
	"fmt"
	"math/rand"
)

// Order is a JSON order payload. Invalid generators produce payloads that
// must fail schema validation, so the shape is deliberately loose.
type Order map[string]any

var (
	bloodTypes = []string{
		"O_POSITIVE", "O_NEGATIVE",
		"A_POSITIVE", "A_NEGATIVE",
		"B_POSITIVE", "B_NEGATIVE",
		"AB_POSITIVE", "AB_NEGATIVE",
	}

	priorities = []string{"ROUTINE", "URGENT", "LIFE_THREATENING"}

	facilities = []string{
		"FAC-001", "FAC-002", "FAC-003", "FAC-004", "FAC-005",
		"FAC-CENTRAL", "FAC-NORTH", "FAC-SOUTH", "FAC-EAST", "FAC-WEST",
	}

	doctors = []string{
		"DR-SMITH", "DR-JOHNSON", "DR-WILLIAMS", "DR-BROWN", "DR-JONES",
		"DR-GARCIA", "DR-MILLER", "DR-DAVIS", "DR-RODRIGUEZ", "DR-MARTINEZ",
	}
)

// Generator produces valid and invalid orders from a seeded random source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a Generator. A fixed seed gives reproducible runs.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

func (g *Generator) pick(xs []string) string {
	return xs[g.rng.Intn(len(xs))]
}

// Valid generates an order that passes schema validation.
func (g *Generator) Valid(n int) Order {
	return Order{
		"orderId":     fmt.Sprintf("ORD-%04d", n),
		"bloodType":   g.pick(bloodTypes),
		"quantity":    g.rng.Intn(10) + 1,
		"priority":    g.pick(priorities),
		"facilityId":  g.pick(facilities),
		"requestedBy": g.pick(doctors),
	}
}

// invalidKind names one family of malformed orders.
type invalidKind struct {
	name     string
	weight   int
	generate func(g *Generator, n int) Order
}

// invalidKinds lists the malformed-order families with selection weights.
// Missing fields dominate, wrong enum values are rarest.
var invalidKinds = []invalidKind{
	{"missing_fields", 30, func(g *Generator, n int) Order {
		return Order{
			"orderId":   fmt.Sprintf("ORD-INVALID-MISSING-%04d", n),
			"bloodType": g.pick(bloodTypes),
			"quantity":  g.rng.Intn(5) + 1,
		}
	}},
	{"unknown_fields", 20, func(g *Generator, n int) Order {
		return Order{
			"orderId":         fmt.Sprintf("ORD-INVALID-UNKNOWN-%04d", n),
			"invalidField":    "this field does not exist",
			"unknownProperty": "bad data",
			"extraField":      12345,
			"anotherBadField": true,
		}
	}},
	{"type_mismatch", 20, func(g *Generator, n int) Order {
		return Order{
			"orderId":     fmt.Sprintf("ORD-INVALID-TYPE-%04d", n),
			"bloodType":   g.pick(bloodTypes),
			"quantity":    "not-a-number",
			"priority":    g.pick(priorities),
			"facilityId":  g.pick(facilities),
			"requestedBy": g.pick(doctors),
		}
	}},
	{"null_required", 15, func(g *Generator, n int) Order {
		return Order{
			"orderId":     fmt.Sprintf("ORD-INVALID-NULL-%04d", n),
			"bloodType":   nil,
			"quantity":    g.rng.Intn(5) + 1,
			"priority":    g.pick(priorities),
			"facilityId":  g.pick(facilities),
			"requestedBy": g.pick(doctors),
		}
	}},
	{"empty_strings", 10, func(g *Generator, n int) Order {
		return Order{
			"orderId":     "",
			"bloodType":   g.pick(bloodTypes),
			"quantity":    g.rng.Intn(5) + 1,
			"priority":    "",
			"facilityId":  g.pick(facilities),
			"requestedBy": "",
		}
	}},
	{"wrong_enum", 5, func(g *Generator, n int) Order {
		return Order{
			"orderId":     fmt.Sprintf("ORD-INVALID-ENUM-%04d", n),
			"bloodType":   "INVALID_BLOOD_TYPE",
			"quantity":    g.rng.Intn(5) + 1,
			"priority":    "SUPER_CRITICAL",
			"facilityId":  g.pick(facilities),
			"requestedBy": g.pick(doctors),
		}
	}},
}

// Invalid generates a malformed order, picking the family by weight.
// It returns the order and the family name for reporting.
func (g *Generator) Invalid(n int) (Order, string) {
	total := 0
	for _, k := range invalidKinds {
		total += k.weight
	}
	roll := g.rng.Intn(total)
	for _, k := range invalidKinds {
		if roll < k.weight {
			return k.generate(g, n), k.name
		}
		roll -= k.weight
	}
	// Unreachable while weights are positive.
	last := invalidKinds[len(invalidKinds)-1]
	return last.generate(g, n), last.name
}

// Shuffle randomizes order batch delivery so valid and invalid requests
// interleave the way real traffic would.
func (g *Generator) Shuffle(orders []Batch) {
	g.rng.Shuffle(len(orders), func(i, j int) {
		orders[i], orders[j] = orders[j], orders[i]
	})
}

// Batch pairs an order with whether it was generated valid.
type Batch struct {
	Order Order
	Valid bool
	Kind  string
}
