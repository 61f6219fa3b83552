package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mjones3/event-governance-poc/internal/inventory"
	"github.com/mjones3/event-governance-poc/internal/registry"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register Avro schemas with the Confluent schema registry",
	Long: `Reads every .avsc file from the schemas directory and registers it
with the configured schema registry under the <EventName>-value subject.
With --dry-run, schemas are only checked for compatibility against the
latest registered version.`,
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().Bool("dry-run", false, "check compatibility without registering")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	schemas, err := loadSchemas(cfg.SchemasDir)
	if err != nil {
		return err
	}
	if len(schemas) == 0 {
		return fmt.Errorf("no .avsc files in %s; run `eventgov schemas` first", cfg.SchemasDir)
	}

	client := registry.NewClient(cfg.RegistryURL)
	if err := client.Check(ctx); err != nil {
		return fmt.Errorf("schema registry unreachable at %s: %w", cfg.RegistryURL, err)
	}

	if dryRun {
		return checkCompatibility(ctx, client, schemas)
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()
	store := inventory.NewStore(database)

	registered := 0
	for _, s := range schemas {
		subject := registry.Subject(s.event)
		id, err := client.Register(ctx, subject, s.schema)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: registering %s: %v\n", subject, err)
			continue
		}
		if err := store.SaveRegistration(ctx, subject, s.event, id, cfg.RegistryURL); err != nil {
			return fmt.Errorf("recording registration: %w", err)
		}
		fmt.Printf("  %-50s id=%d\n", subject, id)
		registered++
	}

	fmt.Printf("Registered %d of %d schemas with %s\n", registered, len(schemas), cfg.RegistryURL)
	if registered < len(schemas) {
		return fmt.Errorf("%d schemas failed to register", len(schemas)-registered)
	}
	return nil
}

func checkCompatibility(ctx context.Context, client *registry.Client, schemas []namedSchema) error {
	incompatible := 0
	for _, s := range schemas {
		subject := registry.Subject(s.event)
		ok, err := client.Compatible(ctx, subject, s.schema)
		if err != nil {
			// New subjects have no latest version to check against.
			fmt.Printf("  %-50s new subject\n", subject)
			continue
		}
		if ok {
			fmt.Printf("  %-50s compatible\n", subject)
		} else {
			fmt.Printf("  %-50s INCOMPATIBLE\n", subject)
			incompatible++
		}
	}
	if incompatible > 0 {
		return fmt.Errorf("%d schemas are incompatible with their latest registered version", incompatible)
	}
	fmt.Println("All schemas compatible")
	return nil
}

type namedSchema struct {
	event  string
	schema map[string]any
}

// loadSchemas reads every .avsc file in dir, keyed by event name
// (the filename without extension), sorted by event name.
func loadSchemas(dir string) ([]namedSchema, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading schemas dir: %w", err)
	}

	var schemas []namedSchema
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".avsc") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		var schema map[string]any
		if err := json.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", e.Name(), err)
		}
		schemas = append(schemas, namedSchema{
			event:  strings.TrimSuffix(e.Name(), ".avsc"),
			schema: schema,
		})
	}
	sort.Slice(schemas, func(i, j int) bool { return schemas[i].event < schemas[j].event })
	return schemas, nil
}
