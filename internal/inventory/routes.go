package inventory

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts inventory endpoints on the given router. All
// flow and service endpoints read from the latest scan run.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/api/flows", listFlowsHandler(store))
	r.Get("/api/flows/{event}", getFlowHandler(store))
	r.Get("/api/services", listServicesHandler(store))
	r.Get("/api/summary", summaryHandler(store))
	r.Get("/api/scans", listScansHandler(store))
}

func listFlowsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := latestScan(w, r, store)
		if !ok {
			return
		}
		orphanedOnly := r.URL.Query().Get("orphaned") == "true"
		flows, err := store.ListFlows(r.Context(), run.ID, orphanedOnly)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, flows)
	}
}

func getFlowHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := latestScan(w, r, store)
		if !ok {
			return
		}
		event := chi.URLParam(r, "event")
		flow, err := store.GetFlow(r.Context(), run.ID, event)
		if err != nil {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, flow)
	}
}

func listServicesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := latestScan(w, r, store)
		if !ok {
			return
		}
		facts, err := store.ListFacts(r.Context(), run.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, facts)
	}
}

func summaryHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := latestScan(w, r, store)
		if !ok {
			return
		}
		flows, err := store.ListFlows(r.Context(), run.ID, false)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, Summarize(flows))
	}
}

func listScansHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scans, err := store.ListScans(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, scans)
	}
}

// latestScan resolves the most recent scan run, writing a 404 when no scan
// has run yet.
func latestScan(w http.ResponseWriter, r *http.Request, store *Store) (*ScanRun, bool) {
	run, err := store.LatestScan(r.Context())
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "no scans recorded", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return run, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
