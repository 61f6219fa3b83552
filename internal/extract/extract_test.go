package extract

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
)

// sampleServicesDir returns the absolute path to testdata/sample_services.
func sampleServicesDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("unable to determine test file location")
	}
	root := filepath.Join(filepath.Dir(filename), "..", "..", "testdata", "sample_services")
	abs, err := filepath.Abs(root)
	if err != nil {
		t.Fatalf("resolve testdata path: %v", err)
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		t.Fatalf("testdata dir does not exist: %s", abs)
	}
	return abs
}

func readFixture(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(sampleServicesDir(t), filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("reading fixture %s: %v", rel, err)
	}
	return string(data)
}

func TestParseEventFileRecord(t *testing.T) {
	rel := "order/src/main/java/com/biopro/order/domain/event/OrderCreatedEvent.java"
	ev := ParseEventFile(readFixture(t, rel), rel)
	if ev == nil {
		t.Fatal("ParseEventFile returned nil")
	}

	if ev.Name != "OrderCreatedEvent" {
		t.Errorf("name = %q, want OrderCreatedEvent", ev.Name)
	}
	if ev.Package != "com.biopro.order.domain.event" {
		t.Errorf("package = %q", ev.Package)
	}
	if ev.Type != "ORDER_CREATED" {
		t.Errorf("type = %q, want ORDER_CREATED", ev.Type)
	}
	if len(ev.Fields) != 6 {
		t.Fatalf("got %d fields, want 6: %+v", len(ev.Fields), ev.Fields)
	}

	orderID := ev.Fields[0]
	if orderID.Name != "orderId" || orderID.JavaType != "String" {
		t.Errorf("fields[0] = %+v", orderID)
	}
	if !orderID.Required {
		t.Error("orderId should be required (requiredMode = REQUIRED)")
	}
	if orderID.Doc != "Unique order identifier" {
		t.Errorf("orderId doc = %q", orderID.Doc)
	}
	if orderID.Example != "ORD-0001" {
		t.Errorf("orderId example = %q", orderID.Example)
	}

	quantity := ev.Fields[2]
	if quantity.Required {
		t.Error("quantity should be optional (no requiredMode)")
	}

	lines := ev.Fields[4]
	if lines.JavaType != "List<OrderLine>" {
		t.Errorf("lines type = %q, want List<OrderLine>", lines.JavaType)
	}
}

func TestParseEventFileClass(t *testing.T) {
	rel := "order/src/main/java/com/biopro/order/domain/event/OrderCancelledEvent.java"
	ev := ParseEventFile(readFixture(t, rel), rel)
	if ev == nil {
		t.Fatal("ParseEventFile returned nil")
	}

	if ev.Name != "OrderCancelledEvent" {
		t.Errorf("name = %q", ev.Name)
	}
	// No EventType reference in the file: derived from the class name.
	if ev.Type != "ORDERCANCELLED" {
		t.Errorf("type = %q, want ORDERCANCELLED", ev.Type)
	}

	// Class fields are extracted as optional.
	if len(ev.Fields) != 3 {
		t.Fatalf("got %d fields, want 3: %+v", len(ev.Fields), ev.Fields)
	}
	for _, f := range ev.Fields {
		if f.Required {
			t.Errorf("class field %s should be optional", f.Name)
		}
	}
}

func TestParseEventFileNonEvent(t *testing.T) {
	content := `package com.biopro.order;

public class OrderController {
}
`
	if ev := ParseEventFile(content, "OrderController.java"); ev != nil {
		t.Errorf("expected nil for non-event class, got %+v", ev)
	}
}

func TestConsumedFromListener(t *testing.T) {
	rel := "order/src/main/java/com/biopro/order/messaging/ShipmentCreatedEventListener.java"
	consumed := ConsumedFromListener(readFixture(t, rel), rel)

	// Class name, import, and generic parameter all point at the same
	// event; duplicates are suppressed.
	if !reflect.DeepEqual(consumed, []string{"ShipmentCreatedEvent"}) {
		t.Errorf("consumed = %v, want [ShipmentCreatedEvent]", consumed)
	}
}

func TestConsumedFromListenerWithoutEventSuffix(t *testing.T) {
	content := `package com.biopro.order;

public class OrderRestockListener {
}
`
	consumed := ConsumedFromListener(content, "OrderRestockListener.java")
	if !reflect.DeepEqual(consumed, []string{"OrderRestockEvent"}) {
		t.Errorf("consumed = %v, want [OrderRestockEvent]", consumed)
	}
}

func TestListenerTopics(t *testing.T) {
	rel := "shipping/src/main/java/com/biopro/shipping/listener/OrderCreatedEventListener.java"
	topics := ListenerTopics(readFixture(t, rel))
	if !reflect.DeepEqual(topics, []string{"order-events"}) {
		t.Errorf("topics = %v, want [order-events]", topics)
	}
}

func TestIsEventFile(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"src/main/java/com/x/domain/event/FooEvent.java", true},
		{"src/main/java/com/x/domain/event/Foo.java", false},
		{"src/main/java/com/x/controller/FooEvent.java", false},
		{"src/main/java/com/x/domain/event/FooEventListener.java", false},
	}
	for _, c := range cases {
		if got := IsEventFile(c.path); got != c.want {
			t.Errorf("IsEventFile(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestIsListenerFile(t *testing.T) {
	if !IsListenerFile("a/b/FooEventListener.java") {
		t.Error("FooEventListener.java should be a listener")
	}
	if IsListenerFile("a/b/AbstractEventListener.java") {
		t.Error("Abstract listeners are skipped")
	}
	if IsListenerFile("a/b/FooService.java") {
		t.Error("FooService.java is not a listener")
	}
}

func TestScanServiceOrder(t *testing.T) {
	s := NewScanner()
	s.Log = nil

	scan, err := s.ScanService("sample", "order", filepath.Join(sampleServicesDir(t), "order"))
	if err != nil {
		t.Fatalf("ScanService: %v", err)
	}

	if !reflect.DeepEqual(scan.Published, []string{"OrderCancelledEvent", "OrderCreatedEvent"}) {
		t.Errorf("published = %v", scan.Published)
	}
	if !reflect.DeepEqual(scan.Consumed, []string{"ShipmentCreatedEvent"}) {
		t.Errorf("consumed = %v", scan.Consumed)
	}
	if !reflect.DeepEqual(scan.Topics, []string{"shipment-events"}) {
		t.Errorf("topics = %v", scan.Topics)
	}
	if len(scan.Events) != 2 {
		t.Fatalf("got %d event details, want 2", len(scan.Events))
	}
	for _, ev := range scan.Events {
		if ev.Service != "order" || ev.Repository != "sample" {
			t.Errorf("event %s missing service/repository attribution: %+v", ev.Name, ev)
		}
	}

	fact := scan.Fact()
	if fact.ServiceID != "sample/order" {
		t.Errorf("fact service_id = %q", fact.ServiceID)
	}
}

func TestScanServiceShippingKafkaTemplate(t *testing.T) {
	s := NewScanner()
	s.Log = nil

	scan, err := s.ScanService("sample", "shipping", filepath.Join(sampleServicesDir(t), "shipping"))
	if err != nil {
		t.Fatalf("ScanService: %v", err)
	}

	// ShipmentCreatedEvent is evidenced twice (event file + KafkaTemplate
	// generic) but reported once.
	if !reflect.DeepEqual(scan.Published, []string{"ShipmentCreatedEvent"}) {
		t.Errorf("published = %v", scan.Published)
	}
	if !reflect.DeepEqual(scan.Consumed, []string{"OrderCreatedEvent"}) {
		t.Errorf("consumed = %v", scan.Consumed)
	}
}

func TestDiscoverServices(t *testing.T) {
	services, err := DiscoverServices(sampleServicesDir(t))
	if err != nil {
		t.Fatalf("DiscoverServices: %v", err)
	}
	// docs/ has no build marker and is not discovered.
	if !reflect.DeepEqual(services, []string{"order", "shipping"}) {
		t.Errorf("services = %v, want [order shipping]", services)
	}
}

func TestScanRepoSkipsMissingService(t *testing.T) {
	s := NewScanner()
	s.Log = nil

	scans, err := s.ScanRepo(Repo{
		Name:     "sample",
		Path:     sampleServicesDir(t),
		Services: []string{"order", "does-not-exist", "shipping"},
	})
	if err != nil {
		t.Fatalf("ScanRepo: %v", err)
	}
	if len(scans) != 2 {
		t.Fatalf("got %d scans, want 2 (missing service skipped)", len(scans))
	}
}
