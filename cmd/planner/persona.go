package main

import (
	"github.com/spf13/cobra"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"github.com/heartmarshall/studyplanner-backend/internal/service/recalibration"
)

func newPersonaCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "persona",
		Short: "Show or customize persona parameters",
	}
	cmd.AddCommand(newPersonaShowCmd(e), newPersonaSetCmd(e), newPersonaHistoryCmd(e))
	return cmd
}

func newPersonaShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the learner's current persona parameters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			learnerID, err := e.learnerID()
			if err != nil {
				return err
			}
			ctx, cancel := e.ctx(cmd, learnerID)
			defer cancel()

			profile, err := e.c.Learners.Get(ctx, learnerID)
			if err != nil {
				return err
			}
			printPersona(cmd.OutOrStdout(), profile.Params, profile.Params)
			return nil
		},
	}
}

func newPersonaHistoryCmd(e *env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print persona snapshots and recent recalibration runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			learnerID, err := e.learnerID()
			if err != nil {
				return err
			}
			ctx, cancel := e.ctx(cmd, learnerID)
			defer cancel()

			h, err := e.c.Recalibration.History(ctx, learnerID, limit)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "most recent recalibration runs to show; 0 for all")
	return cmd
}

// personaFlags holds the override flag values; only flags the user set
// become overrides.
type personaFlags struct {
	fatigueThreshold float64
	bufferCapacity   float64
	targetRetention  float64
	burnoutThreshold float64
	maxTopicsPerDay  int
	reset            bool
}

func (pf *personaFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&pf.fatigueThreshold, "fatigue-threshold", 0, "fatigue score above which the day is light")
	f.Float64Var(&pf.bufferCapacity, "buffer-capacity", 0, "buffer capacity as a share of remaining days")
	f.Float64Var(&pf.targetRetention, "target-retention", 0, "FSRS target retention")
	f.Float64Var(&pf.burnoutThreshold, "burnout-threshold", 0, "recovery triggers while BRI stays below 100 minus this")
	f.IntVar(&pf.maxTopicsPerDay, "max-topics-per-day", 0, "cap on plan items per day")
	f.BoolVar(&pf.reset, "reset", false, "start from the strategy mode defaults")
}

func (pf *personaFlags) overrides(cmd *cobra.Command) domain.PersonaOverrides {
	var o domain.PersonaOverrides
	changed := cmd.Flags().Changed
	if changed("fatigue-threshold") {
		o.FatigueThreshold = &pf.fatigueThreshold
	}
	if changed("buffer-capacity") {
		o.BufferCapacity = &pf.bufferCapacity
	}
	if changed("target-retention") {
		o.TargetRetention = &pf.targetRetention
	}
	if changed("burnout-threshold") {
		o.BurnoutThreshold = &pf.burnoutThreshold
	}
	if changed("max-topics-per-day") {
		o.MaxTopicsPerDay = &pf.maxTopicsPerDay
	}
	return o
}

func newPersonaSetCmd(e *env) *cobra.Command {
	pf := &personaFlags{}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Override persona parameters; tunables are clamped to their safety bounds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			learnerID, err := e.learnerID()
			if err != nil {
				return err
			}
			ctx, cancel := e.ctx(cmd, learnerID)
			defer cancel()

			res, err := e.c.Recalibration.Customize(ctx, recalibration.CustomizeInput{
				LearnerID: learnerID,
				Overrides: pf.overrides(cmd),
				Reset:     pf.reset,
			})
			if err != nil {
				return err
			}
			printPersona(cmd.OutOrStdout(), res.Before, res.After)
			return nil
		},
	}

	pf.bind(cmd)
	return cmd
}
