package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mjones3/event-governance-poc/internal/avro"
)

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "Convert extracted event payloads to Avro schemas",
	Long: `Re-scans the configured repositories, converts every extracted event
payload to an Avro schema and writes one .avsc file per event into the
schemas directory. Custom field types are resolved against the owning
service's source tree.`,
	RunE: runSchemas,
}

func init() {
	schemasCmd.Flags().String("event", "", "convert only the named event")
	rootCmd.AddCommand(schemasCmd)
}

func runSchemas(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	only, _ := cmd.Flags().GetString("event")

	scans, err := scanAll(cfg, nil)
	if err != nil {
		return err
	}

	// Service source roots for custom type resolution.
	sourceDirs := map[string]string{}
	for _, repo := range cfg.Repos {
		for _, scan := range scans {
			if scan.Repository == repo.Name {
				sourceDirs[scan.Repository+"/"+scan.Service] = filepath.Join(repo.Path, scan.Service)
			}
		}
	}

	written := 0
	for _, scan := range scans {
		sourceDir := sourceDirs[scan.Repository+"/"+scan.Service]
		for _, ev := range scan.Events {
			if only != "" && ev.Name != only {
				continue
			}
			schema := avro.ConvertEvent(ev, sourceDir)
			path, err := avro.WriteFile(cfg.SchemasDir, ev.Name, schema)
			if err != nil {
				return err
			}
			written++
			if verbose {
				fmt.Printf("  %s -> %s\n", ev.Name, path)
			}
		}
	}

	if only != "" && written == 0 {
		return fmt.Errorf("event %q not found in any scanned service", only)
	}
	fmt.Printf("Wrote %d Avro schemas to %s\n", written, cfg.SchemasDir)
	return nil
}
