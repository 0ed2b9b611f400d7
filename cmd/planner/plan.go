package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/studyplanner-backend/internal/service/planner"
)

func newPlanCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate, regenerate or show a daily plan",
	}

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate the plan for --date, or return the existing one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			learnerID, err := e.learnerID()
			if err != nil {
				return err
			}
			day, err := e.day(time.Now())
			if err != nil {
				return err
			}
			ctx, cancel := e.ctx(cmd, learnerID)
			defer cancel()

			p, err := e.c.Planner.GenerateDailyPlan(ctx, planner.GenerateInput{LearnerID: learnerID, Date: day})
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), p)
			return nil
		},
	}

	var hours float64
	regenerate := &cobra.Command{
		Use:   "regenerate",
		Short: "Replace the plan for --date, optionally with different hours",
		RunE: func(cmd *cobra.Command, _ []string) error {
			learnerID, err := e.learnerID()
			if err != nil {
				return err
			}
			day, err := e.day(time.Now())
			if err != nil {
				return err
			}
			override, err := optionalHours(cmd.Flags().Changed("hours"), hours)
			if err != nil {
				return err
			}
			ctx, cancel := e.ctx(cmd, learnerID)
			defer cancel()

			p, err := e.c.Planner.RegeneratePlan(ctx, planner.RegenerateInput{
				LearnerID: learnerID, Date: day, HoursOverride: override,
			})
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), p)
			return nil
		},
	}
	regenerate.Flags().Float64Var(&hours, "hours", 0, "study hours for the day instead of the profile value")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored plan for --date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			learnerID, err := e.learnerID()
			if err != nil {
				return err
			}
			day, err := e.day(time.Now())
			if err != nil {
				return err
			}
			ctx, cancel := e.ctx(cmd, learnerID)
			defer cancel()

			p, err := e.c.Plans.GetByDate(ctx, learnerID, day)
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), p)
			return nil
		},
	}

	cmd.AddCommand(generate, regenerate, show)
	return cmd
}
