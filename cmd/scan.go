package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mjones3/event-governance-poc/internal/config"
	"github.com/mjones3/event-governance-poc/internal/inventory"
	"github.com/mjones3/event-governance-poc/internal/progress"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan configured repositories and build the event flow graph",
	Long: `Walks every configured repository, extracts published and consumed
events from Java sources, merges them into the event flow graph and
stores the result. Orphaned events are reported at the end.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().String("json", "", "also write the inventory as JSON to this path")
	scanCmd.Flags().Bool("orphans-only", false, "print only orphaned events")
	rootCmd.AddCommand(scanCmd)
}

// inventoryDump is the JSON export shape of a completed scan.
type inventoryDump struct {
	Services []inventory.ServiceFact `json:"services"`
	Flows    []inventory.EventFlow   `json:"event_flows"`
	Summary  inventory.Summary       `json:"summary"`
}

// scanResult holds a completed, persisted scan.
type scanResult struct {
	RunID   string
	Facts   []inventory.ServiceFact
	Flows   []inventory.EventFlow
	Summary inventory.Summary
}

// executeScan scans all configured repos, builds the flow graph and
// persists the run. On scan failure the run is recorded as failed.
func executeScan(ctx context.Context, cfg *config.Config, store *inventory.Store, reporter progress.Reporter) (*scanResult, error) {
	repoNames := make([]string, 0, len(cfg.Repos))
	for _, r := range cfg.Repos {
		repoNames = append(repoNames, r.Name)
	}
	run, err := store.CreateScan(ctx, repoNames)
	if err != nil {
		return nil, fmt.Errorf("recording scan run: %w", err)
	}

	scans, err := scanAll(cfg, reporter)
	if err != nil {
		store.FinishScan(ctx, run.ID, "failed", 0, inventory.Summary{})
		return nil, err
	}

	facts := make([]inventory.ServiceFact, 0, len(scans))
	for _, s := range scans {
		facts = append(facts, s.Fact())
	}
	flows := inventory.Build(facts)
	summary := inventory.Summarize(flows)

	for _, f := range facts {
		if err := store.SaveFact(ctx, run.ID, f); err != nil {
			return nil, fmt.Errorf("saving facts: %w", err)
		}
	}
	if err := store.SaveFlows(ctx, run.ID, flows); err != nil {
		return nil, fmt.Errorf("saving flows: %w", err)
	}
	if err := store.FinishScan(ctx, run.ID, "completed", len(facts), summary); err != nil {
		return nil, fmt.Errorf("finishing scan run: %w", err)
	}

	return &scanResult{RunID: run.ID, Facts: facts, Flows: flows, Summary: summary}, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	result, err := executeScan(ctx, cfg, inventory.NewStore(database), progress.NewReporter())
	if err != nil {
		return err
	}

	orphansOnly, _ := cmd.Flags().GetBool("orphans-only")
	printFlows(result.Flows, result.Summary, len(result.Facts), orphansOnly)

	if jsonPath, _ := cmd.Flags().GetString("json"); jsonPath != "" {
		dump := inventoryDump{Services: result.Facts, Flows: result.Flows, Summary: result.Summary}
		data, err := json.MarshalIndent(dump, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling inventory: %w", err)
		}
		if err := os.WriteFile(jsonPath, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing inventory JSON: %w", err)
		}
		fmt.Printf("Inventory written to %s\n", jsonPath)
	}

	return nil
}

func printFlows(flows []inventory.EventFlow, summary inventory.Summary, serviceCount int, orphansOnly bool) {
	fmt.Printf("\nScanned %d services, %d events (%d orphaned)\n\n",
		serviceCount, summary.TotalEvents, summary.OrphanedCount)

	for _, f := range flows {
		if orphansOnly && !f.IsOrphaned {
			continue
		}
		marker := " "
		if f.IsOrphaned {
			marker = "!"
		}
		fmt.Printf("%s %-40s publishers=%v consumers=%v\n", marker, f.EventName, f.Publishers, f.Consumers)
	}

	if summary.OrphanedCount > 0 {
		fmt.Printf("\n%d orphaned events (marked !): each is dead code or a missing integration.\n",
			summary.OrphanedCount)
	}
}
