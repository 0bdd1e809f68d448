package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one alert sweep and print the report",
	Run: func(_ *cobra.Command, _ []string) {
		sweep()
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func sweep() {
	ctx := context.Background()
	log, config := setup()

	a, err := newApplication(ctx, config, log, true)
	if err != nil {
		log.Fatal("building the application", zap.Error(err))
	}
	defer a.Close()

	if a.sweeper == nil {
		log.Fatal("alerts are disabled", zap.String("hint", "set alerts.enabled to true"))
	}

	report, err := a.sweeper.Run(ctx)
	if err != nil {
		log.Fatal("sweep failed", zap.Error(err))
	}

	pretty, err := prettyJSON(report)
	if err != nil {
		log.Fatal("encoding the report", zap.Error(err))
	}
	fmt.Println(pretty)
}
