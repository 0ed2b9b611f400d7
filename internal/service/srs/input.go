package srs

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"github.com/heartmarshall/studyplanner-backend/internal/service/srs/fsrs"
)

// RecordReviewInput holds the parameters for recording a review.
type RecordReviewInput struct {
	LearnerID uuid.UUID
	TopicID   uuid.UUID
	Rating    int
}

// Validate checks all fields and collects all errors.
func (i RecordReviewInput) Validate() error {
	var errs []domain.FieldError
	if i.LearnerID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "learner_id", Message: "required"})
	}
	if i.TopicID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "topic_id", Message: "required"})
	}
	if !fsrs.Rating(i.Rating).IsValid() {
		errs = append(errs, domain.FieldError{Field: "rating", Message: "must be between 1 and 4"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ReviewResult is the outcome of a recorded review.
type ReviewResult struct {
	Card             domain.Card
	Progress         domain.Progress
	Confidence       int
	ConfidenceStatus domain.ConfidenceStatus
	PreviousStatus   domain.TopicStatus
	NextReview       domain.ReviewSchedule
}

// StatusChanged reports whether the review moved the topic to a new status.
func (r *ReviewResult) StatusChanged() bool {
	return r.PreviousStatus != r.Progress.Status
}
