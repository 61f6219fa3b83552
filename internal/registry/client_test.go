package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestSubject(t *testing.T) {
	if got := Subject("OrderCreatedEvent"); got != "OrderCreatedEvent-value" {
		t.Errorf("Subject = %q, want OrderCreatedEvent-value", got)
	}
}

func TestCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/subjects" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.Check(context.Background()); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestCheckUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	if err := c.Check(context.Background()); err == nil {
		t.Fatal("expected error for unreachable registry")
	}
}

func TestSubjects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]string{"OrderCreatedEvent-value", "ShipmentCreatedEvent-value"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	subjects, err := c.Subjects(context.Background())
	if err != nil {
		t.Fatalf("Subjects: %v", err)
	}
	want := []string{"OrderCreatedEvent-value", "ShipmentCreatedEvent-value"}
	if !reflect.DeepEqual(subjects, want) {
		t.Errorf("subjects = %v, want %v", subjects, want)
	}
}

func TestRegister(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody registerRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(registerResponse{ID: 42})
	}))
	defer srv.Close()

	schema := map[string]any{"type": "record", "name": "OrderCreatedEventPayload", "fields": []any{}}
	c := NewClient(srv.URL)
	id, err := c.Register(context.Background(), "OrderCreatedEvent-value", schema)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if id != 42 {
		t.Errorf("id = %d, want 42", id)
	}
	if gotPath != "/subjects/OrderCreatedEvent-value/versions" {
		t.Errorf("path = %s", gotPath)
	}
	if gotContentType != "application/vnd.schemaregistry.v1+json" {
		t.Errorf("content type = %s", gotContentType)
	}

	var sent map[string]any
	if err := json.Unmarshal([]byte(gotBody.Schema), &sent); err != nil {
		t.Fatalf("schema field is not JSON: %v", err)
	}
	if sent["name"] != "OrderCreatedEventPayload" {
		t.Errorf("sent schema name = %v", sent["name"])
	}
}

func TestRegisterError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(registryError{ErrorCode: 42201, Message: "Invalid schema"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Register(context.Background(), "Bad-value", map[string]any{})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "registry error 42201 (HTTP 422): Invalid schema" {
		t.Errorf("error = %q", got)
	}
}

func TestLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/subjects/OrderCreatedEvent-value/versions/latest" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(schemaVersion{
			Subject: "OrderCreatedEvent-value",
			ID:      42,
			Version: 3,
			Schema:  `{"type":"record","name":"OrderCreatedEventPayload"}`,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	schema, version, err := c.Latest(context.Background(), "OrderCreatedEvent-value")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if version != 3 {
		t.Errorf("version = %d, want 3", version)
	}
	if schema["name"] != "OrderCreatedEventPayload" {
		t.Errorf("schema name = %v", schema["name"])
	}
}

func TestCompatible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/compatibility/subjects/OrderCreatedEvent-value/versions/latest" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(compatibilityResponse{IsCompatible: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ok, err := c.Compatible(context.Background(), "OrderCreatedEvent-value", map[string]any{"type": "record"})
	if err != nil {
		t.Fatalf("Compatible: %v", err)
	}
	if !ok {
		t.Error("expected compatible = true")
	}
}
