package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mjones3/event-governance-poc/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize eventgov configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the repositories to scan and generates a .eventgov.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
