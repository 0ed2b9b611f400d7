package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"github.com/heartmarshall/studyplanner-backend/internal/service/fatigue"
)

func newFatigueCmd(e *env) *cobra.Command {
	var persist bool

	cmd := &cobra.Command{
		Use:   "fatigue",
		Short: "Show the fatigue score and burnout risk index for --date",
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

			var snap *domain.BurnoutSnapshot
			if persist {
				snap, err = e.c.Fatigue.SnapshotBurnout(ctx, learnerID, day)
			} else {
				snap, err = e.c.Fatigue.CalculateBRI(ctx, learnerID, day)
			}
			if err != nil {
				return err
			}
			printBurnout(cmd.OutOrStdout(), snap)
			return nil
		},
	}
	cmd.Flags().BoolVar(&persist, "save", false, "store the result as the day's burnout snapshot")
	return cmd
}

func newRecoveryCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recovery",
		Short: "Check, enter or leave recovery mode",
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Report whether the burnout trend calls for recovery",
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

			trigger, bri, err := e.c.Fatigue.CheckRecoveryTrigger(ctx, learnerID, day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "BRI %d, recovery needed: %t\n", bri, trigger)
			return nil
		},
	}

	var bri int
	activate := &cobra.Command{
		Use:   "activate",
		Short: "Start a recovery period on --date",
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

			res, err := e.c.Fatigue.ActivateRecovery(ctx, fatigue.ActivateRecoveryInput{
				LearnerID: learnerID, Date: day, TriggerBRI: bri,
			})
			if err != nil {
				return err
			}
			e.dispatch(ctx, res.Intents)
			printRecovery(cmd.OutOrStdout(), res.Log)
			return nil
		},
	}
	activate.Flags().IntVar(&bri, "bri", 0, "burnout risk index that triggered recovery")

	var reason string
	exit := &cobra.Command{
		Use:   "exit",
		Short: "End the open recovery period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			learnerID, err := e.learnerID()
			if err != nil {
				return err
			}
			ctx, cancel := e.ctx(cmd, learnerID)
			defer cancel()

			res, err := e.c.Fatigue.ExitRecovery(ctx, fatigue.ExitRecoveryInput{LearnerID: learnerID, Reason: reason})
			if err != nil {
				return err
			}
			e.dispatch(ctx, res.Intents)
			printRecovery(cmd.OutOrStdout(), res.Log)
			return nil
		},
	}
	exit.Flags().StringVar(&reason, "reason", "manual", "why recovery ended")

	cmd.AddCommand(check, activate, exit)
	return cmd
}
