package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mjones3/event-governance-poc/internal/db"
	"github.com/mjones3/event-governance-poc/internal/inventory"
)

// Config holds server configuration.
type Config struct {
	Port       int
	DataDir    string // directory for the SQLite DB and data files
	CatalogDir string // directory containing generated catalog pages
	AllowAll   bool   // allow all CORS origins (dev mode)
}

// Server exposes the event inventory over HTTP: flow and service queries,
// scan history, a live scan-progress websocket and the generated catalog.
type Server struct {
	cfg        Config
	db         *db.DB
	store      *inventory.Store
	hub        *Hub
	router     chi.Router
	httpServer *http.Server
}

// New creates a server over the given database.
func New(cfg Config, database *db.DB) *Server {
	s := &Server{
		cfg:   cfg,
		db:    database,
		store: inventory.NewStore(database),
		hub:   NewHub(),
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	inventory.RegisterRoutes(r, s.store)

	// Live scan progress for catalog UIs.
	r.Get("/api/scan/ws", s.hub.Handler())

	// Generated catalog preview, when present.
	if s.cfg.CatalogDir != "" {
		if _, err := os.Stat(s.cfg.CatalogDir); err == nil {
			fileServer := http.StripPrefix("/catalog/", http.FileServer(http.Dir(s.cfg.CatalogDir)))
			r.Get("/catalog/*", fileServer.ServeHTTP)
		}
	}

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Database returns the database connection.
func (s *Server) Database() *db.DB { return s.db }

// Store returns the inventory store.
func (s *Server) Store() *inventory.Store { return s.store }

// ProgressHub returns the websocket hub for broadcasting scan progress.
func (s *Server) ProgressHub() *Hub { return s.hub }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("eventgov server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
