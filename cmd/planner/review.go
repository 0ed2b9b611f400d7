package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/studyplanner-backend/internal/service/srs"
)

func newReviewCmd(e *env) *cobra.Command {
	var topicRaw, ratingRaw string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Record a spaced-repetition review of a topic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			learnerID, err := e.learnerID()
			if err != nil {
				return err
			}
			topicID, err := parseID("topic", topicRaw)
			if err != nil {
				return err
			}
			rating, err := parseRating(ratingRaw)
			if err != nil {
				return err
			}
			ctx, cancel := e.ctx(cmd, learnerID)
			defer cancel()

			res, err := e.c.SRS.RecordReview(ctx, srs.RecordReviewInput{
				LearnerID: learnerID, TopicID: topicID, Rating: rating,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "card %s: %s, stability %.2f, difficulty %.2f\n",
				res.Card.ID, res.Card.State, res.Card.Stability, res.Card.Difficulty)
			fmt.Fprintf(w, "confidence %d (%s), topic %s -> %s\n",
				res.Confidence, res.ConfidenceStatus, res.PreviousStatus, res.Progress.Status)
			fmt.Fprintf(w, "next review %s\n", res.NextReview.DueDate.Format(time.DateOnly))
			return nil
		},
	}
	cmd.Flags().StringVar(&topicRaw, "topic", "", "topic ID")
	cmd.Flags().StringVar(&ratingRaw, "rating", "", "1-4 or again/hard/good/easy")
	return cmd
}
