package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newConfidenceCmd(e *env) *cobra.Command {
	var subjects bool

	cmd := &cobra.Command{
		Use:   "confidence",
		Short: "Recalculate topic confidence and apply decay for a learner",
		RunE: func(cmd *cobra.Command, _ []string) error {
			learnerID, err := e.learnerID()
			if err != nil {
				return err
			}
			ctx, cancel := e.ctx(cmd, learnerID)
			defer cancel()

			res, err := e.c.Confidence.RecalculateAll(ctx, learnerID)
			if err != nil {
				return err
			}
			e.dispatch(ctx, res.Intents)

			fmt.Fprintf(cmd.OutOrStdout(),
				"recalculated %d topics: %d transitions, %d downgraded, %d decay revisions, %d subjects at risk\n",
				res.Recalculated, res.Transitions, len(res.Downgraded), res.DecayScheduled, len(res.SubjectsAtRisk))
			if !subjects {
				return nil
			}

			rows, err := e.c.Progress.ListSubjectConfidence(ctx, learnerID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			printSubjectConfidence(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&subjects, "subjects", false, "also print the per-subject weighted confidence")
	return cmd
}

func newVelocityCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "velocity",
		Short: "Compute and store the velocity snapshot for --date",
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

			snap, err := e.c.Velocity.CalculateVelocity(ctx, learnerID, day)
			if err != nil {
				return err
			}
			printVelocity(cmd.OutOrStdout(), snap)
			return nil
		},
	}
}

func newBufferCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buffer",
		Short: "Post or list buffer bank transactions",
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Post the buffer transactions for --date",
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

			res, err := e.c.Velocity.UpdateBuffer(ctx, learnerID, day)
			if err != nil {
				return err
			}
			e.dispatch(ctx, res.Intents)

			w := cmd.OutOrStdout()
			if res.Frozen {
				fmt.Fprintf(w, "%s not posted, ledger frozen during recovery, balance %.2f\n", res.Date.Format(time.DateOnly), res.Balance)
				return nil
			}
			if res.AlreadyPosted {
				fmt.Fprintf(w, "%s already posted, balance %.2f\n", res.Date.Format(time.DateOnly), res.Balance)
				return nil
			}
			printBuffer(w, res.Transactions)
			fmt.Fprintf(w, "\nbalance %.2f\n", res.Balance)
			return nil
		},
	}

	var days int
	list := &cobra.Command{
		Use:   "list",
		Short: "List transactions for the --days ending at --date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			learnerID, err := e.learnerID()
			if err != nil {
				return err
			}
			day, err := e.day(time.Now())
			if err != nil {
				return err
			}
			if days < 1 {
				return fmt.Errorf("--days must be positive")
			}
			ctx, cancel := e.ctx(cmd, learnerID)
			defer cancel()

			txs, err := e.c.Buffer.ListTransactions(ctx, learnerID, day.AddDate(0, 0, -(days-1)), day)
			if err != nil {
				return err
			}
			printBuffer(cmd.OutOrStdout(), txs)
			return nil
		},
	}
	list.Flags().IntVar(&days, "days", 14, "number of days to list")

	cmd.AddCommand(update, list)
	return cmd
}

func newCascadeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "cascade",
		Short: "Check whether missed work should cascade into a replan",
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

			res, err := e.c.Velocity.CheckCascade(ctx, learnerID, day)
			if err != nil {
				return err
			}
			e.dispatch(ctx, res.Intents)
			printCascade(cmd.OutOrStdout(), res)
			return nil
		},
	}
}
