package main

import (
	"context"

	"github.com/spf13/cobra"

	"ContentCurator/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the review API and the run scheduler",
	Long:  `Start an HTTP server exposing run and review endpoints. When scheduler.enabled is set, ingestion also runs on the configured interval.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	return withApp(ctx, func(ctx context.Context, a *app.Application) error {
		return a.Serve(ctx)
	})
}
