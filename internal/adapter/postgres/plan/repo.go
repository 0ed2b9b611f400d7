// Package plan implements the daily plan and plan item repository using
// PostgreSQL.
package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/studyplanner-backend/internal/adapter/postgres"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// Repo provides plan persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new plan repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const getPlanSQL = `
SELECT id, learner_id, plan_date, available_hours, is_light_day, fatigue_score,
       energy_level, revision_ratio, created_at
FROM daily_plans
WHERE learner_id = $1 AND plan_date = $2`

const insertPlanSQL = `
INSERT INTO daily_plans (id, learner_id, plan_date, available_hours, is_light_day,
                         fatigue_score, energy_level, revision_ratio, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const deletePlanSQL = `DELETE FROM daily_plans WHERE learner_id = $1 AND plan_date = $2`

const itemColumns = `pi.id, pi.plan_id, dp.learner_id, dp.plan_date, pi.topic_id, pi.subject_id,
       pi.item_type, pi.estimated_hours, pi.priority_score, pi.display_order, pi.status,
       pi.difficulty, pi.gravity, pi.actual_hours, pi.completed_at, pi.created_at`

const listItemsSQL = `SELECT ` + itemColumns + `
FROM plan_items pi
JOIN daily_plans dp ON dp.id = pi.plan_id
WHERE pi.plan_id = $1
ORDER BY pi.display_order`

const getItemSQL = `SELECT ` + itemColumns + `
FROM plan_items pi
JOIN daily_plans dp ON dp.id = pi.plan_id
WHERE pi.id = $1`

const planHeaderSQL = `SELECT learner_id, plan_date FROM daily_plans WHERE id = $1`

const updateItemSQL = `
UPDATE plan_items
SET status = $2, actual_hours = $3, completed_at = $4
WHERE id = $1`

const studyDaysSQL = `
SELECT dp.plan_date,
       SUM(COALESCE(pi.actual_hours, pi.estimated_hours))::float8,
       AVG(pi.difficulty)::float8,
       COALESCE(SUM(pi.gravity) FILTER (WHERE pi.item_type IN ('new', 'stretch')), 0)::float8,
       COUNT(*)
FROM plan_items pi
JOIN daily_plans dp ON dp.id = pi.plan_id
WHERE dp.learner_id = $1
  AND dp.plan_date BETWEEN $2 AND $3
  AND pi.status = 'completed'
GROUP BY dp.plan_date
ORDER BY dp.plan_date`

const recentSubjectCountsSQL = `
WITH recent AS (
    SELECT id FROM daily_plans
    WHERE learner_id = $1 AND plan_date < $2
    ORDER BY plan_date DESC
    LIMIT $3
)
SELECT pi.subject_id, COUNT(DISTINCT pi.plan_id)
FROM plan_items pi
JOIN recent r ON r.id = pi.plan_id
GROUP BY pi.subject_id`

const deferredTopicIDsSQL = `
SELECT pi.topic_id
FROM plan_items pi
JOIN daily_plans dp ON dp.id = pi.plan_id
WHERE dp.learner_id = $1 AND dp.plan_date = $2 AND pi.status = 'deferred'
ORDER BY pi.display_order`

// ---------------------------------------------------------------------------
// Plans
// ---------------------------------------------------------------------------

// GetByDate returns the learner's plan for the day with its items in
// display order.
func (r *Repo) GetByDate(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.DailyPlan, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)
	day := domain.Day(date)

	var (
		p      domain.DailyPlan
		energy string
	)
	err := q.QueryRow(ctx, getPlanSQL, learnerID, day).Scan(
		&p.ID, &p.LearnerID, &p.Date, &p.AvailableHours, &p.IsLightDay, &p.FatigueScore,
		&energy, &p.RevisionRatio, &p.CreatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "plan", day.Format(time.DateOnly))
	}
	p.EnergyLevel = domain.EnergyLevel(energy)

	rows, err := q.Query(ctx, listItemsSQL, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list plan items: %w", err)
	}
	p.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PlanItem, error) {
		return scanItem(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list plan items: %w", err)
	}
	return &p, nil
}

// Create stores the plan and its items. A second plan for the same learner
// and date fails with ErrAlreadyExists. Callers run it inside a transaction.
func (r *Repo) Create(ctx context.Context, p *domain.DailyPlan) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.Date = domain.Day(p.Date)

	_, err := q.Exec(ctx, insertPlanSQL,
		p.ID, p.LearnerID, p.Date, p.AvailableHours, p.IsLightDay,
		p.FatigueScore, string(p.EnergyLevel), p.RevisionRatio, p.CreatedAt)
	if err != nil {
		return postgres.MapError(err, "plan", p.Date.Format(time.DateOnly))
	}
	if len(p.Items) == 0 {
		return nil
	}

	b := postgres.Builder.
		Insert("plan_items").
		Columns("id", "plan_id", "topic_id", "subject_id", "item_type", "estimated_hours",
			"priority_score", "display_order", "status", "difficulty", "gravity",
			"actual_hours", "completed_at", "created_at")
	for i := range p.Items {
		it := &p.Items[i]
		prepareItem(it, p.CreatedAt)
		it.PlanID, it.LearnerID, it.PlanDate = p.ID, p.LearnerID, p.Date
		b = b.Values(it.ID, it.PlanID, it.TopicID, it.SubjectID, string(it.Type), it.EstimatedHours,
			it.PriorityScore, it.DisplayOrder, string(it.Status), it.Difficulty, it.Gravity,
			it.ActualHours, it.CompletedAt, it.CreatedAt)
	}
	if _, err := postgres.ExecBuilt(ctx, q, b); err != nil {
		return postgres.MapError(err, "plan_items", p.ID)
	}
	return nil
}

// Delete removes the plan and, by cascade, its items. A missing plan is not
// an error.
func (r *Repo) Delete(ctx context.Context, learnerID uuid.UUID, date time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if _, err := q.Exec(ctx, deletePlanSQL, learnerID, domain.Day(date)); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

// AddItem appends one item to an existing plan.
func (r *Repo) AddItem(ctx context.Context, it *domain.PlanItem) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if err := q.QueryRow(ctx, planHeaderSQL, it.PlanID).Scan(&it.LearnerID, &it.PlanDate); err != nil {
		return postgres.MapError(err, "plan", it.PlanID)
	}
	prepareItem(it, time.Now().UTC())

	b := postgres.Builder.
		Insert("plan_items").
		Columns("id", "plan_id", "topic_id", "subject_id", "item_type", "estimated_hours",
			"priority_score", "display_order", "status", "difficulty", "gravity",
			"actual_hours", "completed_at", "created_at").
		Values(it.ID, it.PlanID, it.TopicID, it.SubjectID, string(it.Type), it.EstimatedHours,
			it.PriorityScore, it.DisplayOrder, string(it.Status), it.Difficulty, it.Gravity,
			it.ActualHours, it.CompletedAt, it.CreatedAt)
	if _, err := postgres.ExecBuilt(ctx, q, b); err != nil {
		return postgres.MapError(err, "plan_item", it.ID)
	}
	return nil
}

// GetItem returns one item with its plan's learner and date.
func (r *Repo) GetItem(ctx context.Context, itemID uuid.UUID) (*domain.PlanItem, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	it, err := scanItem(q.QueryRow(ctx, getItemSQL, itemID))
	if err != nil {
		return nil, postgres.MapError(err, "plan item", itemID)
	}
	return &it, nil
}

// UpdateItem persists the mutable fields: status, actual hours and
// completion time.
func (r *Repo) UpdateItem(ctx context.Context, it *domain.PlanItem) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, updateItemSQL, it.ID, string(it.Status), it.ActualHours, it.CompletedAt)
	if err != nil {
		return postgres.MapError(err, "plan item", it.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plan item %s: %w", it.ID, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Aggregates
// ---------------------------------------------------------------------------

// StudyDays aggregates completed items per plan date within [from, to].
// Gravity counts first-pass work only (new and stretch items).
func (r *Repo) StudyDays(ctx context.Context, learnerID uuid.UUID, from, to time.Time) ([]domain.StudyDay, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, studyDaysSQL, learnerID, domain.Day(from), domain.Day(to))
	if err != nil {
		return nil, fmt.Errorf("study days: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.StudyDay, error) {
		var (
			d     domain.StudyDay
			count int64
		)
		if err := row.Scan(&d.Date, &d.Hours, &d.AvgDifficulty, &d.Gravity, &count); err != nil {
			return d, err
		}
		d.Hours = domain.Round2(d.Hours)
		d.ItemsCompleted = int(count)
		return d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("study days: %w", err)
	}
	return out, nil
}

// RecentSubjectCounts counts, per subject, how many of the learner's last n
// plans before the given date contain it.
func (r *Repo) RecentSubjectCounts(ctx context.Context, learnerID uuid.UUID, before time.Time, n int) (map[uuid.UUID]int, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, recentSubjectCountsSQL, learnerID, domain.Day(before), n)
	if err != nil {
		return nil, fmt.Errorf("recent subject counts: %w", err)
	}
	defer rows.Close()

	counts := map[uuid.UUID]int{}
	for rows.Next() {
		var (
			id uuid.UUID
			c  int64
		)
		if err := rows.Scan(&id, &c); err != nil {
			return nil, fmt.Errorf("recent subject counts: %w", err)
		}
		counts[id] = int(c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent subject counts: %w", err)
	}
	return counts, nil
}

// DeferredTopicIDs returns the topics deferred in the learner's plan for the day.
func (r *Repo) DeferredTopicIDs(ctx context.Context, learnerID uuid.UUID, date time.Time) ([]uuid.UUID, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, deferredTopicIDsSQL, learnerID, domain.Day(date))
	if err != nil {
		return nil, fmt.Errorf("deferred topics: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("deferred topics: %w", err)
	}
	return ids, nil
}

func prepareItem(it *domain.PlanItem, now time.Time) {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	if it.Status == "" {
		it.Status = domain.PlanItemPending
	}
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now
	}
}

func scanItem(row pgx.Row) (domain.PlanItem, error) {
	var (
		it           domain.PlanItem
		kind, status string
	)
	err := row.Scan(
		&it.ID, &it.PlanID, &it.LearnerID, &it.PlanDate, &it.TopicID, &it.SubjectID,
		&kind, &it.EstimatedHours, &it.PriorityScore, &it.DisplayOrder, &status,
		&it.Difficulty, &it.Gravity, &it.ActualHours, &it.CompletedAt, &it.CreatedAt,
	)
	if err != nil {
		return it, err
	}
	it.Type, it.Status = domain.PlanItemType(kind), domain.PlanItemStatus(status)
	return it, nil
}
