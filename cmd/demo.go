package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/mjones3/event-governance-poc/internal/demo"
	"github.com/mjones3/event-governance-poc/internal/progress"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Send demo order traffic to exercise DLQ handling",
	Long: `Generates a mix of valid and deliberately malformed orders and posts
them to the target order service. Malformed orders should be rejected
and routed to the dead letter queue, making DLQ dashboards and alerts
observable with realistic traffic.`,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().Int("count", 0, "number of orders to send (default from config)")
	demoCmd.Flags().Int("invalid-rate", -1, "percentage of invalid orders (default from config)")
	demoCmd.Flags().Int("delay", -1, "delay between orders in milliseconds (default from config)")
	demoCmd.Flags().String("target", "", "order service base URL (default from config)")
	demoCmd.Flags().Int64("seed", 0, "random seed (0 means time-based)")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	count := cfg.Demo.Count
	if v, _ := cmd.Flags().GetInt("count"); v > 0 {
		count = v
	}
	invalidRate := cfg.Demo.InvalidRate
	if v, _ := cmd.Flags().GetInt("invalid-rate"); v >= 0 {
		invalidRate = v
	}
	delayMS := cfg.Demo.DelayMS
	if v, _ := cmd.Flags().GetInt("delay"); v >= 0 {
		delayMS = v
	}
	target := cfg.Demo.TargetURL
	if v, _ := cmd.Flags().GetString("target"); v != "" {
		target = v
	}
	seed := cfg.Demo.Seed
	if v, _ := cmd.Flags().GetInt64("seed"); v != 0 {
		seed = v
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Sending %d orders to %s (%d%% invalid)\n", count, target, invalidRate)

	runner := &demo.Runner{
		Client:      demo.NewClient(target),
		Generator:   demo.NewGenerator(seed),
		Reporter:    progress.NewReporter(),
		Count:       count,
		InvalidRate: invalidRate,
		Delay:       time.Duration(delayMS) * time.Millisecond,
	}
	stats, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\nSent %d orders in %s (%.1f/s)\n", stats.Total, stats.Duration.Round(time.Millisecond), stats.Rate())
	fmt.Printf("  valid:    %d\n", stats.Valid)
	fmt.Printf("  invalid:  %d\n", stats.Invalid)
	fmt.Printf("  accepted: %d\n", stats.Success)
	fmt.Printf("  rejected: %d\n", stats.Failed)
	return nil
}
