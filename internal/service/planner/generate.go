package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

const maxHoursOverride = 24

// GenerateInput holds the parameters for GenerateDailyPlan.
type GenerateInput struct {
	LearnerID uuid.UUID
	Date      time.Time
}

// Validate checks all fields and collects all errors.
func (i GenerateInput) Validate() error {
	var errs []domain.FieldError
	if i.LearnerID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "learner_id", Message: "required"})
	}
	if i.Date.IsZero() {
		errs = append(errs, domain.FieldError{Field: "date", Message: "required"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// RegenerateInput holds the parameters for RegeneratePlan.
type RegenerateInput struct {
	LearnerID     uuid.UUID
	Date          time.Time
	HoursOverride *float64
}

// Validate checks all fields and collects all errors.
func (i RegenerateInput) Validate() error {
	var errs []domain.FieldError
	if i.LearnerID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "learner_id", Message: "required"})
	}
	if i.Date.IsZero() {
		errs = append(errs, domain.FieldError{Field: "date", Message: "required"})
	}
	if i.HoursOverride != nil && (*i.HoursOverride <= 0 || *i.HoursOverride > maxHoursOverride) {
		errs = append(errs, domain.FieldError{Field: "hours_override", Message: "must be in (0, 24]"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// GenerateDailyPlan returns the learner's plan for the date, building and
// storing it on first request. An existing plan is returned unchanged.
func (s *Service) GenerateDailyPlan(ctx context.Context, input GenerateInput) (*domain.DailyPlan, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	day := domain.Day(input.Date)

	existing, err := s.plans.GetByDate(ctx, input.LearnerID, day)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get plan: %w", err)
	}

	profile, err := s.learners.Get(ctx, input.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("get learner: %w", err)
	}

	plan, err := s.build(ctx, profile, day, nil)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return s.plans.Create(txCtx, plan)
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		// A concurrent request stored the plan first.
		existing, getErr := s.plans.GetByDate(ctx, input.LearnerID, day)
		if getErr != nil {
			return nil, fmt.Errorf("get plan: %w", getErr)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	s.logPlan(ctx, "plan generated", plan)
	return plan, nil
}

// RegeneratePlan deletes the learner's plan for the date, if any, and
// builds a fresh one. HoursOverride replaces the computed hour budget.
func (s *Service) RegeneratePlan(ctx context.Context, input RegenerateInput) (*domain.DailyPlan, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	day := domain.Day(input.Date)

	profile, err := s.learners.Get(ctx, input.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("get learner: %w", err)
	}

	plan, err := s.build(ctx, profile, day, input.HoursOverride)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.plans.Delete(txCtx, input.LearnerID, day); err != nil {
			return fmt.Errorf("delete plan: %w", err)
		}
		if err := s.plans.Create(txCtx, plan); err != nil {
			return fmt.Errorf("create plan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logPlan(ctx, "plan regenerated", plan)
	return plan, nil
}

// build computes a plan without writing anything.
func (s *Service) build(ctx context.Context, profile *domain.LearnerProfile, day time.Time, hoursOverride *float64) (*domain.DailyPlan, error) {
	snap, err := s.snapshot(ctx, profile, day)
	if err != nil {
		return nil, fmt.Errorf("plan context: %w", err)
	}
	snap.HoursOverride = hoursOverride

	capa := AssessCapacity(snap, s.cfg)
	picks := Allocate(Candidates(snap, capa, s.cfg), capa, s.cfg)

	now := s.clock()
	plan := &domain.DailyPlan{
		ID:             uuid.New(),
		LearnerID:      profile.LearnerID,
		Date:           day,
		AvailableHours: capa.AvailableHours,
		IsLightDay:     capa.IsLightDay,
		FatigueScore:   snap.Fatigue,
		EnergyLevel:    capa.Energy,
		RevisionRatio:  capa.RevisionRatio,
		Items:          make([]domain.PlanItem, 0, len(picks)),
		CreatedAt:      now,
	}
	for i, c := range picks {
		plan.Items = append(plan.Items, domain.PlanItem{
			ID:             uuid.New(),
			PlanID:         plan.ID,
			LearnerID:      profile.LearnerID,
			PlanDate:       day,
			TopicID:        c.Topic.ID,
			SubjectID:      c.Topic.SubjectID,
			Type:           c.Type,
			EstimatedHours: c.Hours,
			PriorityScore:  c.Priority,
			DisplayOrder:   i,
			Status:         domain.PlanItemPending,
			Difficulty:     c.Topic.Difficulty,
			Gravity:        c.Topic.Gravity(),
			CreatedAt:      now,
		})
	}
	return plan, nil
}

func (s *Service) logPlan(ctx context.Context, msg string, plan *domain.DailyPlan) {
	s.log.InfoContext(ctx, msg,
		slog.String("learner_id", plan.LearnerID.String()),
		slog.String("date", plan.Date.Format(time.DateOnly)),
		slog.Int("items", len(plan.Items)),
		slog.Float64("available_hours", plan.AvailableHours),
		slog.Bool("light_day", plan.IsLightDay),
	)
}
