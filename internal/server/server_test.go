package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mjones3/event-governance-poc/internal/db"
	"github.com/mjones3/event-governance-poc/internal/inventory"
	"github.com/mjones3/event-governance-poc/internal/progress"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return New(cfg, database)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, Config{Port: 0})

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(t, Config{Port: 0, AllowAll: true})

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestInventoryRoutesMounted(t *testing.T) {
	srv := newTestServer(t, Config{Port: 0})
	ctx := context.Background()

	run, err := srv.Store().CreateScan(ctx, []string{"biopro"})
	if err != nil {
		t.Fatalf("CreateScan: %v", err)
	}
	flows := inventory.Build([]inventory.ServiceFact{
		{ServiceID: "biopro/order", Published: []string{"OrderCreatedEvent"}},
	})
	if err := srv.Store().SaveFlows(ctx, run.ID, flows); err != nil {
		t.Fatalf("SaveFlows: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/flows", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var got []inventory.EventFlow
	json.NewDecoder(w.Body).Decode(&got)
	if len(got) != 1 || got[0].EventName != "OrderCreatedEvent" {
		t.Errorf("flows = %v", got)
	}
}

func TestScanProgressWebsocket(t *testing.T) {
	srv := newTestServer(t, Config{Port: 0})

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/scan/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.Close()

	// The hub registers clients synchronously during the upgrade.
	deadline := time.Now().Add(2 * time.Second)
	for srv.ProgressHub().ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.ProgressHub().ClientCount() != 1 {
		t.Fatal("client never registered with hub")
	}

	srv.ProgressHub().Broadcast(progress.Event{Current: 1, Total: 3, Message: "scanning order"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev progress.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("reading event: %v", err)
	}
	if ev.Current != 1 || ev.Total != 3 || ev.Message != "scanning order" {
		t.Errorf("event = %+v", ev)
	}
}

func TestHubDropsClosedClients(t *testing.T) {
	srv := newTestServer(t, Config{Port: 0})

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/scan/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	conn.Close()

	// After the close is noticed, broadcasts must not panic and the
	// client list empties out.
	deadline := time.Now().Add(2 * time.Second)
	for srv.ProgressHub().ClientCount() > 0 && time.Now().Before(deadline) {
		srv.ProgressHub().Broadcast(progress.Event{Message: "tick"})
		time.Sleep(10 * time.Millisecond)
	}
	if n := srv.ProgressHub().ClientCount(); n != 0 {
		t.Errorf("client count = %d after disconnect, want 0", n)
	}
}
