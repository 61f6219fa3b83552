package avro

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"github.com/mjones3/event-governance-poc/internal/extract"
)

// orderServiceDir returns the order service fixture under
// testdata/sample_services.
func orderServiceDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("unable to determine test file location")
	}
	root := filepath.Join(filepath.Dir(filename), "..", "..", "testdata", "sample_services", "order")
	abs, err := filepath.Abs(root)
	if err != nil {
		t.Fatalf("resolve testdata path: %v", err)
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		t.Fatalf("testdata dir does not exist: %s", abs)
	}
	return abs
}

func parsedOrderCreated(t *testing.T) extract.Event {
	t.Helper()
	dir := orderServiceDir(t)
	rel := "src/main/java/com/biopro/order/domain/event/OrderCreatedEvent.java"
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	ev := extract.ParseEventFile(string(data), rel)
	if ev == nil {
		t.Fatal("ParseEventFile returned nil")
	}
	return *ev
}

func fieldByName(t *testing.T, schema map[string]any, name string) map[string]any {
	t.Helper()
	fields, ok := schema["fields"].([]any)
	if !ok {
		t.Fatalf("schema has no fields list: %v", schema)
	}
	for _, f := range fields {
		entry := f.(map[string]any)
		if entry["name"] == name {
			return entry
		}
	}
	t.Fatalf("field %q not found", name)
	return nil
}

func TestConvertEventBasics(t *testing.T) {
	schema := ConvertEvent(parsedOrderCreated(t), orderServiceDir(t))

	if schema["type"] != "record" {
		t.Errorf("type = %v, want record", schema["type"])
	}
	if schema["name"] != "OrderCreatedEventPayload" {
		t.Errorf("name = %v", schema["name"])
	}
	if schema["namespace"] != "com.biopro.order.domain.event" {
		t.Errorf("namespace = %v", schema["namespace"])
	}

	orderID := fieldByName(t, schema, "orderId")
	if orderID["type"] != "string" {
		t.Errorf("orderId type = %v, want string", orderID["type"])
	}
	if doc, _ := orderID["doc"].(string); doc != "Unique order identifier (example: ORD-0001)" {
		t.Errorf("orderId doc = %q", doc)
	}

	createdAt := fieldByName(t, schema, "createdAt")
	ts, ok := createdAt["type"].(map[string]any)
	if !ok || ts["logicalType"] != "timestamp-millis" {
		t.Errorf("createdAt type = %v, want timestamp-millis logical type", createdAt["type"])
	}
}

func TestConvertEventOptionalFieldsAreNullUnions(t *testing.T) {
	schema := ConvertEvent(parsedOrderCreated(t), orderServiceDir(t))

	quantity := fieldByName(t, schema, "quantity")
	union, ok := quantity["type"].([]any)
	if !ok || len(union) != 2 || union[0] != "null" || union[1] != "int" {
		t.Errorf("quantity type = %v, want [null int]", quantity["type"])
	}
	def, present := quantity["default"]
	if !present || def != nil {
		t.Errorf("quantity default = %v (present=%v), want explicit null", def, present)
	}
}

func TestConvertEventResolvesValueObjectEnum(t *testing.T) {
	schema := ConvertEvent(parsedOrderCreated(t), orderServiceDir(t))

	bloodType := fieldByName(t, schema, "bloodType")
	enum, ok := bloodType["type"].(map[string]any)
	if !ok {
		t.Fatalf("bloodType type = %v, want enum definition", bloodType["type"])
	}
	if enum["type"] != "enum" || enum["name"] != "BloodType" {
		t.Errorf("bloodType enum = %v", enum)
	}
	if enum["namespace"] != "com.biopro.order.domain.valueobject" {
		t.Errorf("enum namespace = %v", enum["namespace"])
	}
	symbols, _ := enum["symbols"].([]string)
	if len(symbols) != 8 || symbols[0] != "O_POSITIVE" {
		t.Errorf("enum symbols = %v", symbols)
	}
}

func TestConvertEventResolvesNestedRecordInArray(t *testing.T) {
	schema := ConvertEvent(parsedOrderCreated(t), orderServiceDir(t))

	lines := fieldByName(t, schema, "lines")
	union, ok := lines["type"].([]any)
	if !ok || len(union) != 2 {
		t.Fatalf("lines type = %v, want [null array]", lines["type"])
	}
	array, ok := union[1].(map[string]any)
	if !ok || array["type"] != "array" {
		t.Fatalf("lines union member = %v, want array", union[1])
	}
	record, ok := array["items"].(map[string]any)
	if !ok || record["type"] != "record" || record["name"] != "OrderLine" {
		t.Fatalf("array items = %v, want OrderLine record", array["items"])
	}
	fields, _ := record["fields"].([]any)
	if len(fields) != 2 {
		t.Errorf("OrderLine has %d fields, want 2", len(fields))
	}
}

func TestRepeatedCustomTypeBecomesReference(t *testing.T) {
	ev := extract.Event{
		Name:    "TransfusionEvent",
		Package: "com.biopro.order.domain.event",
		Type:    "TRANSFUSION",
		Version: "1.0",
		Fields: []extract.Field{
			{Name: "donorType", JavaType: "BloodType", Required: true},
			{Name: "recipientType", JavaType: "BloodType", Required: true},
		},
	}

	schema := ConvertEvent(ev, orderServiceDir(t))

	first := fieldByName(t, schema, "donorType")
	if _, ok := first["type"].(map[string]any); !ok {
		t.Errorf("first use should be a full definition, got %v", first["type"])
	}
	second := fieldByName(t, schema, "recipientType")
	if second["type"] != "BloodType" {
		t.Errorf("second use should be a name reference, got %v", second["type"])
	}
}

func TestUnresolvableTypeFallsBackToString(t *testing.T) {
	ev := extract.Event{
		Name:   "MysteryEvent",
		Fields: []extract.Field{{Name: "payload", JavaType: "NoSuchType", Required: true}},
	}

	schema := ConvertEvent(ev, orderServiceDir(t))
	payload := fieldByName(t, schema, "payload")
	if payload["type"] != "string" {
		t.Errorf("unresolvable type = %v, want string fallback", payload["type"])
	}
}

func TestResolvePrimitivesAndContainers(t *testing.T) {
	r := NewResolver(orderServiceDir(t))

	if got := r.Resolve("String", map[string]bool{}); got != "string" {
		t.Errorf("String -> %v", got)
	}
	if got := r.Resolve("Long", map[string]bool{}); got != "long" {
		t.Errorf("Long -> %v", got)
	}

	arr, ok := r.Resolve("List<String>", map[string]bool{}).(map[string]any)
	if !ok || arr["type"] != "array" || arr["items"] != "string" {
		t.Errorf("List<String> -> %v", arr)
	}

	m, ok := r.Resolve("Map<String, Integer>", map[string]bool{}).(map[string]any)
	if !ok || m["type"] != "map" || m["values"] != "int" {
		t.Errorf("Map<String, Integer> -> %v", m)
	}

	uuid, ok := r.Resolve("UUID", map[string]bool{}).(map[string]any)
	if !ok || uuid["logicalType"] != "uuid" {
		t.Errorf("UUID -> %v", uuid)
	}
}

func TestValueObjectEnumDetection(t *testing.T) {
	content := `package com.biopro.order.domain.valueobject;

public record Priority(String value) {
    private static final String ROUTINE = "ROUTINE";
    private static final String URGENT = "URGENT";
}
`
	symbols, namespace, ok := valueObjectEnum(content)
	if !ok {
		t.Fatal("expected enum detection")
	}
	if !reflect.DeepEqual(symbols, []string{"ROUTINE", "URGENT"}) {
		t.Errorf("symbols = %v", symbols)
	}
	if namespace != "com.biopro.order.domain.valueobject" {
		t.Errorf("namespace = %q", namespace)
	}

	if _, _, ok := valueObjectEnum("public record OrderLine(String productCode, Integer units) {}"); ok {
		t.Error("plain record wrongly detected as enum value object")
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	schema := ConvertEvent(parsedOrderCreated(t), orderServiceDir(t))

	path, err := WriteFile(dir, "OrderCreatedEvent", schema)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if filepath.Base(path) != "OrderCreatedEvent.avsc" {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written schema: %v", err)
	}
	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("written schema is not valid JSON: %v", err)
	}
	if parsed["name"] != "OrderCreatedEventPayload" {
		t.Errorf("round-tripped name = %v", parsed["name"])
	}
}
