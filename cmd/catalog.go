package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mjones3/event-governance-poc/internal/catalog"
	"github.com/mjones3/event-governance-poc/internal/inventory"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Generate EventCatalog documentation from the event inventory",
	Long: `Scans the configured repositories and generates an EventCatalog
documentation tree: one page per event with its flow diagram and field
table, one page per service, and an index with orphan warnings.
With --preview, a static HTML rendering of the catalog is also built.`,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().Bool("preview", false, "also render the catalog as static HTML")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	scans, err := scanAll(cfg, nil)
	if err != nil {
		return err
	}

	facts := make([]inventory.ServiceFact, 0, len(scans))
	for _, s := range scans {
		facts = append(facts, s.Fact())
	}
	flows := inventory.Build(facts)
	if len(flows) == 0 {
		return fmt.Errorf("no events found in configured repos")
	}

	gen := catalog.NewGenerator(cfg.CatalogDir)
	gen.SchemasDir = cfg.SchemasDir
	pages, err := gen.Generate(flows, eventDetails(scans))
	if err != nil {
		return fmt.Errorf("generating catalog: %w", err)
	}
	fmt.Printf("Generated %d catalog pages in %s\n", pages, cfg.CatalogDir)

	if preview, _ := cmd.Flags().GetBool("preview"); preview {
		pv := catalog.NewPreview(cfg.CatalogDir, cfg.PreviewDir, "BioPro Events")
		rendered, err := pv.Generate()
		if err != nil {
			return fmt.Errorf("rendering preview: %w", err)
		}
		fmt.Printf("Rendered %d HTML pages in %s\n", rendered, cfg.PreviewDir)
	}
	return nil
}
