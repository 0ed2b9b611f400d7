package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

func newRecalibrateCmd(e *env) *cobra.Command {
	var trigger string

	cmd := &cobra.Command{
		Use:   "recalibrate",
		Short: "Tune the learner's persona parameters from recent signals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			learnerID, err := e.learnerID()
			if err != nil {
				return err
			}
			t := domain.RecalibrationTrigger(trigger)
			if !t.IsValid() {
				return fmt.Errorf("--trigger: unknown trigger %q", trigger)
			}
			ctx, cancel := e.ctx(cmd, learnerID)
			defer cancel()

			res, err := e.c.Recalibration.Run(ctx, learnerID, t)
			if err != nil {
				return err
			}
			e.dispatch(ctx, res.Intents)
			printRecalibration(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&trigger, "trigger", string(domain.TriggerManual), "automatic, buffer_debt, cascade or manual")
	return cmd
}
