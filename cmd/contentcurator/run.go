package main

import (
	"context"

	"github.com/spf13/cobra"

	"ContentCurator/internal/app"
)

var (
	runBatchSize int
	runThreshold float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one ingestion pass",
	Long:  `Fetch every configured source, score and deduplicate the items and stage the accepted ones for review. Prints the run summary as JSON.`,
	RunE:  runOnce,
}

func init() {
	runCmd.Flags().IntVar(&runBatchSize, "batch-size", 0, "Maximum items to stage (1-100, defaults to config)")
	runCmd.Flags().Float64Var(&runThreshold, "threshold", 0, "Minimum score to stage (0-100, defaults to config)")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	return withApp(ctx, func(ctx context.Context, a *app.Application) error {
		run := a.RunConfig()
		if cmd.Flags().Changed("batch-size") {
			run.BatchSize = runBatchSize
		}
		if cmd.Flags().Changed("threshold") {
			run.ScoreThreshold = runThreshold
		}

		res, err := a.Run(ctx, run)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	})
}
