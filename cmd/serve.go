package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mjones3/event-governance-poc/internal/config"
	"github.com/mjones3/event-governance-poc/internal/progress"
	"github.com/mjones3/event-governance-poc/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the event inventory API server",
	Long: `Starts the eventgov HTTP server exposing the event flow inventory as
a REST API, a websocket endpoint streaming scan progress, and the
generated catalog preview as static files. POST /api/scan triggers a
rescan; progress is broadcast to websocket watchers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		port := cfg.Server.Port
		if servePort != 0 {
			port = servePort
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		srv := server.New(server.Config{
			Port:       port,
			DataDir:    cfg.DataDir,
			CatalogDir: cfg.PreviewDir,
			AllowAll:   cfg.Server.AllowAll,
		}, database)

		registerScanTrigger(srv, cfg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "eventgov server v%s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", cfg.DatabasePath())
		fmt.Fprintf(os.Stderr, "  Catalog:  %s\n", cfg.PreviewDir)

		return srv.Start()
	},
}

// registerScanTrigger adds POST /api/scan: kicks off a repo scan in the
// background, streaming per-service progress to websocket watchers. At
// most one scan runs at a time.
func registerScanTrigger(srv *server.Server, cfg *config.Config) {
	var scanning atomic.Bool

	srv.Router().Post("/api/scan", func(w http.ResponseWriter, r *http.Request) {
		if !scanning.CompareAndSwap(false, true) {
			http.Error(w, `{"error":"scan already in progress"}`, http.StatusConflict)
			return
		}

		go func() {
			defer scanning.Store(false)

			reporter := progress.Multi{
				&progress.CIReporter{},
				&progress.FuncReporter{Emit: srv.ProgressHub().Broadcast},
			}
			result, err := executeScan(context.Background(), cfg, srv.Store(), reporter)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
				return
			}
			fmt.Fprintf(os.Stderr, "Scan %s completed: %d services, %d events (%d orphaned)\n",
				result.RunID, len(result.Facts), result.Summary.TotalEvents, result.Summary.OrphanedCount)
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"status":"scan started"}`))
	})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}
