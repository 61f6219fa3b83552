package demo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestValidOrderShape(t *testing.T) {
	g := NewGenerator(1)
	order := g.Valid(7)

	if order["orderId"] != "ORD-0007" {
		t.Errorf("orderId = %v", order["orderId"])
	}
	for _, key := range []string{"bloodType", "quantity", "priority", "facilityId", "requestedBy"} {
		if _, ok := order[key]; !ok {
			t.Errorf("missing field %q", key)
		}
	}
	q, ok := order["quantity"].(int)
	if !ok || q < 1 || q > 10 {
		t.Errorf("quantity = %v, want 1..10", order["quantity"])
	}
}

func TestInvalidOrderFamilies(t *testing.T) {
	g := NewGenerator(1)

	seen := map[string]int{}
	for i := 0; i < 1000; i++ {
		order, kind := g.Invalid(i)
		seen[kind]++

		switch kind {
		case "missing_fields":
			if _, ok := order["priority"]; ok {
				t.Fatalf("missing_fields order has priority: %v", order)
			}
		case "unknown_fields":
			if _, ok := order["invalidField"]; !ok {
				t.Fatalf("unknown_fields order lacks invalidField: %v", order)
			}
		case "type_mismatch":
			if order["quantity"] != "not-a-number" {
				t.Fatalf("type_mismatch quantity = %v", order["quantity"])
			}
		case "null_required":
			if v, ok := order["bloodType"]; !ok || v != nil {
				t.Fatalf("null_required bloodType = %v", v)
			}
		case "empty_strings":
			if order["orderId"] != "" {
				t.Fatalf("empty_strings orderId = %v", order["orderId"])
			}
		case "wrong_enum":
			if order["bloodType"] != "INVALID_BLOOD_TYPE" {
				t.Fatalf("wrong_enum bloodType = %v", order["bloodType"])
			}
		default:
			t.Fatalf("unknown kind %q", kind)
		}
	}

	// All six families appear, and the weighting orders them roughly:
	// missing_fields is most common, wrong_enum rarest.
	if len(seen) != 6 {
		t.Fatalf("saw %d families, want 6: %v", len(seen), seen)
	}
	if seen["missing_fields"] <= seen["wrong_enum"] {
		t.Errorf("weights not respected: %v", seen)
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	a := NewGenerator(42)
	b := NewGenerator(42)

	for i := 0; i < 20; i++ {
		oa, ob := a.Valid(i), b.Valid(i)
		if oa["bloodType"] != ob["bloodType"] || oa["quantity"] != ob["quantity"] {
			t.Fatalf("same seed diverged at %d: %v vs %v", i, oa, ob)
		}
	}
}

func TestClientHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/actuator/health" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"UP"}`))
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
}

func TestClientHealthDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).Health(context.Background()); err == nil {
		t.Fatal("expected error for unhealthy service")
	}
}

func TestSendOrder(t *testing.T) {
	var gotContentType string
	var gotOrder Order

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotOrder)
		w.Write([]byte(`{"accepted":true}`))
	}))
	defer srv.Close()

	order := NewGenerator(1).Valid(1)
	result := NewClient(srv.URL).SendOrder(context.Background(), order)

	if !result.Success || result.StatusCode != http.StatusOK {
		t.Errorf("result = %+v", result)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %s", gotContentType)
	}
	if gotOrder["orderId"] != "ORD-0001" {
		t.Errorf("received orderId = %v", gotOrder["orderId"])
	}
}

func TestSendOrderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	result := NewClient(srv.URL).SendOrder(context.Background(), Order{"orderId": ""})
	if result.Success {
		t.Error("rejected order reported as success")
	}
	if result.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", result.StatusCode)
	}
}

func TestRunnerRun(t *testing.T) {
	var received int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/actuator/health" {
			w.Write([]byte(`{"status":"UP"}`))
			return
		}
		var order Order
		json.NewDecoder(r.Body).Decode(&order)
		atomic.AddInt64(&received, 1)
		// Reject anything that looks invalid.
		if id, _ := order["orderId"].(string); id == "" || strings.Contains(id, "INVALID") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"accepted":true}`))
	}))
	defer srv.Close()

	r := &Runner{
		Client:      NewClient(srv.URL),
		Generator:   NewGenerator(42),
		Count:       20,
		InvalidRate: 30,
	}
	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.Total != 20 {
		t.Errorf("total = %d, want 20", stats.Total)
	}
	if stats.Valid != 14 || stats.Invalid != 6 {
		t.Errorf("valid/invalid = %d/%d, want 14/6", stats.Valid, stats.Invalid)
	}
	if atomic.LoadInt64(&received) != 20 {
		t.Errorf("server received %d orders, want 20", received)
	}
	// Every invalid family carries an empty or INVALID-prefixed order ID,
	// so the naive server rejects exactly the invalid share.
	if stats.Success != 14 || stats.Failed != 6 {
		t.Errorf("success/failed = %d/%d, want 14/6", stats.Success, stats.Failed)
	}
}

func TestRunnerHealthGate(t *testing.T) {
	r := &Runner{
		Client:    NewClient("http://127.0.0.1:1"),
		Generator: NewGenerator(1),
		Count:     5,
	}
	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("expected error when service is unreachable")
	}
}
