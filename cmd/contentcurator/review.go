package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"ContentCurator/internal/app"
	"ContentCurator/internal/approval"
	"ContentCurator/internal/domain"
)

var (
	reviewer     string
	reviewNotes  string
	autoMinScore float64
	listCategory string
	listStatus   string
	listMinScore float64
	listLimit    int
	listOffset   int
)

var errReviewFail = errors.New("review failed")

var approveCmd = &cobra.Command{
	Use:   "approve <queue-id>",
	Short: "Approve a staged record into production",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewOne(cmd, args[0], approval.ActionApprove)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <queue-id>",
	Short: "Reject a staged record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewOne(cmd, args[0], approval.ActionReject)
	},
}

var bulkApproveCmd = &cobra.Command{
	Use:   "bulk-approve <queue-id>...",
	Short: "Approve several staged records independently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
			return printBulk(cmd, a.Approval().BulkApprove(ctx, args, reviewer))
		})
	},
}

var autoApproveCmd = &cobra.Command{
	Use:   "auto-approve",
	Short: "Approve pending records at or above a score",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
			minScore := a.Config().Approval.AutoApproveMin
			if cmd.Flags().Changed("min-score") {
				minScore = autoMinScore
			}
			res, err := a.Approval().AutoApprove(ctx, minScore)
			if err != nil {
				return err
			}
			return printBulk(cmd, res)
		})
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Mark pending records approved when production already holds them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
			res, err := a.Approval().Reconcile(ctx)
			if err != nil {
				return err
			}
			return printBulk(cmd, res)
		})
	},
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List staged records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		filter := domain.QueueFilter{
			Status:   domain.Status(listStatus),
			MinScore: listMinScore,
			Limit:    listLimit,
			Offset:   listOffset,
		}
		if listCategory != "" {
			category, err := domain.ParseCategory(listCategory)
			if err != nil {
				return err
			}
			filter.Category = &category
		}

		return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
			recs, err := a.Queue().ListQueue(ctx, filter)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), recs)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{approveCmd, rejectCmd, bulkApproveCmd} {
		c.Flags().StringVar(&reviewer, "reviewer", "", "Reviewer name (defaults to "+approval.DefaultReviewer+")")
	}
	approveCmd.Flags().StringVar(&reviewNotes, "notes", "", "Review notes")
	rejectCmd.Flags().StringVar(&reviewNotes, "reason", "", "Rejection reason")
	autoApproveCmd.Flags().Float64Var(&autoMinScore, "min-score", 0, "Minimum score (defaults to approval.autoApproveMin)")

	queueCmd.Flags().StringVar(&listCategory, "category", "", "project, funding or resource")
	queueCmd.Flags().StringVar(&listStatus, "status", string(domain.StatusPendingReview), "pending_review, approved or rejected")
	queueCmd.Flags().Float64Var(&listMinScore, "min-score", 0, "Minimum score")
	queueCmd.Flags().IntVar(&listLimit, "limit", 50, "Page size")
	queueCmd.Flags().IntVar(&listOffset, "offset", 0, "Page offset")

	rootCmd.AddCommand(approveCmd, rejectCmd, bulkApproveCmd, autoApproveCmd, reconcileCmd, queueCmd)
}

func reviewOne(cmd *cobra.Command, id string, action approval.Action) error {
	return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
		resp := a.Approval().ProcessApproval(ctx, id, action, reviewer, reviewNotes)
		if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
		if !resp.Success {
			return errReviewFail
		}
		return nil
	})
}

func printBulk(cmd *cobra.Command, res approval.BulkResult) error {
	if err := printJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if res.Failed > 0 {
		return errReviewFail
	}
	return nil
}
