package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/studyplanner-backend/internal/service/planner"
)

func newItemCmd(e *env) *cobra.Command {
	var itemRaw string

	cmd := &cobra.Command{
		Use:   "item",
		Short: "Complete, defer or skip a plan item",
	}
	cmd.PersistentFlags().StringVar(&itemRaw, "item", "", "plan item ID")

	// run resolves the learner and item flags and prints the result.
	run := func(cmd *cobra.Command, act func(ctx context.Context, learnerID, itemID uuid.UUID) (*planner.ItemResult, error)) error {
		learnerID, err := e.learnerID()
		if err != nil {
			return err
		}
		itemID, err := parseID("item", itemRaw)
		if err != nil {
			return err
		}
		ctx, cancel := e.ctx(cmd, learnerID)
		defer cancel()

		res, err := act(ctx, learnerID, itemID)
		if err != nil {
			return err
		}
		e.dispatch(ctx, res.Intents)
		printItem(cmd.OutOrStdout(), res.Item, res.PreviousStatus, res.TopicStatus)
		return nil
	}

	var hours float64
	complete := &cobra.Command{
		Use:   "complete",
		Short: "Mark an item completed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			actual, err := optionalHours(cmd.Flags().Changed("hours"), hours)
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, learnerID, itemID uuid.UUID) (*planner.ItemResult, error) {
				return e.c.Planner.CompletePlanItem(ctx, planner.CompleteItemInput{
					LearnerID: learnerID, ItemID: itemID, ActualHours: actual,
				})
			})
		},
	}
	complete.Flags().Float64Var(&hours, "hours", 0, "hours actually spent (default: the estimate)")

	deferCmd := &cobra.Command{
		Use:   "defer",
		Short: "Push an item to a later day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, learnerID, itemID uuid.UUID) (*planner.ItemResult, error) {
				return e.c.Planner.DeferPlanItem(ctx, planner.ItemActionInput{LearnerID: learnerID, ItemID: itemID})
			})
		},
	}

	skip := &cobra.Command{
		Use:   "skip",
		Short: "Drop an item from today's plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, learnerID, itemID uuid.UUID) (*planner.ItemResult, error) {
				return e.c.Planner.SkipPlanItem(ctx, planner.ItemActionInput{LearnerID: learnerID, ItemID: itemID})
			})
		},
	}

	cmd.AddCommand(complete, deferCmd, skip)
	return cmd
}
