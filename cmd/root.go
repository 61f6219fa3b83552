package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "eventgov",
	Short: "Event inventory and schema governance for Kafka microservices",
	Long: `eventgov scans Java microservice repositories for domain events,
builds the publisher/consumer flow graph, flags orphaned events,
converts event payloads to Avro schemas, registers them with a schema
registry and generates an EventCatalog documentation tree.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".eventgov.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
