package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

func newInsightCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insight",
		Short: "Record or list mock accuracy and weakness-radar flags",
	}
	cmd.AddCommand(newInsightMockCmd(e), newInsightFlagCmd(e), newInsightListCmd(e))
	return cmd
}

func newInsightMockCmd(e *env) *cobra.Command {
	var (
		topicRaw string
		accuracy float64
	)

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Record the latest mock test accuracy for a topic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			learnerID, err := e.learnerID()
			if err != nil {
				return err
			}
			topicID, err := parseID("topic", topicRaw)
			if err != nil {
				return err
			}
			if err := validAccuracy(accuracy); err != nil {
				return err
			}
			ctx, cancel := e.ctx(cmd, learnerID)
			defer cancel()

			if err := e.c.Insights.SetMockAccuracy(ctx, learnerID, topicID, accuracy); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "topic %s mock accuracy %.2f\n", topicID, accuracy)
			return nil
		},
	}
	cmd.Flags().StringVar(&topicRaw, "topic", "", "topic ID")
	cmd.Flags().Float64Var(&accuracy, "accuracy", 0, "share of questions answered correctly, 0-1")
	return cmd
}

func newInsightFlagCmd(e *env) *cobra.Command {
	var topicRaw, kindRaw string

	cmd := &cobra.Command{
		Use:   "flag",
		Short: "Flag a topic in a weakness-radar set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			learnerID, err := e.learnerID()
			if err != nil {
				return err
			}
			topicID, err := parseID("topic", topicRaw)
			if err != nil {
				return err
			}
			kind := domain.InsightKind(kindRaw)
			if !kind.IsValid() {
				return fmt.Errorf("--kind: unknown insight %q", kindRaw)
			}
			ctx, cancel := e.ctx(cmd, learnerID)
			defer cancel()

			if err := e.c.Insights.SetInsight(ctx, learnerID, topicID, kind); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "topic %s flagged %s\n", topicID, kind)
			return nil
		},
	}
	cmd.Flags().StringVar(&topicRaw, "topic", "", "topic ID")
	cmd.Flags().StringVar(&kindRaw, "kind", "", "false_security, blind_spot or over_revised")
	return cmd
}

func newInsightListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded mock accuracy and weakness-radar flags",
		RunE: func(cmd *cobra.Command, _ []string) error {
			learnerID, err := e.learnerID()
			if err != nil {
				return err
			}
			ctx, cancel := e.ctx(cmd, learnerID)
			defer cancel()

			acc, err := e.c.Insights.MockAccuracy(ctx, learnerID)
			if err != nil {
				return err
			}
			sets, err := e.c.Insights.Insights(ctx, learnerID)
			if err != nil {
				return err
			}
			printInsights(cmd.OutOrStdout(), acc, sets)
			return nil
		},
	}
}

func validAccuracy(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("--accuracy must be between 0 and 1, got %g", v)
	}
	return nil
}
