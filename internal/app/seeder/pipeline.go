package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// CatalogWriter persists catalog entities. Upserts are keyed by name within
// the parent and fill in the stored ID.
type CatalogWriter interface {
	UpsertSubject(ctx context.Context, sub *domain.Subject) error
	UpsertChapter(ctx context.Context, ch *domain.Chapter) error
	UpsertTopic(ctx context.Context, t *domain.Topic) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PhaseResult holds the outcome of loading one subject.
type PhaseResult struct {
	Chapters int
	Topics   int
	Skipped  int
	Duration time.Duration
	Err      error
}

// Pipeline loads a catalog file subject by subject. Each subject is written
// in its own transaction so one bad subject does not block the rest.
type Pipeline struct {
	log     *slog.Logger
	repo    CatalogWriter
	tx      txManager
	cfg     Config
	results map[string]PhaseResult
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, repo CatalogWriter, tx txManager, cfg Config) *Pipeline {
	return &Pipeline{
		log:     log,
		repo:    repo,
		tx:      tx,
		cfg:     cfg,
		results: make(map[string]PhaseResult),
	}
}

// Results returns per-subject results after Run completes.
func (p *Pipeline) Results() map[string]PhaseResult {
	return p.results
}

// HasErrors returns true if any subject failed to load.
func (p *Pipeline) HasErrors() bool {
	for _, r := range p.results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// Run writes every subject of the catalog. If subjects is non-empty, only
// the named subjects are loaded.
func (p *Pipeline) Run(ctx context.Context, cf *CatalogFile, subjects []string) error {
	if cf == nil {
		return fmt.Errorf("run pipeline: nil catalog")
	}

	filter := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		filter[s] = true
	}

	ran := 0
	for _, doc := range cf.Subjects {
		if len(filter) > 0 && !filter[doc.Name] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run pipeline: %w", err)
		}

		start := time.Now()
		p.log.Info("loading subject", slog.String("subject", doc.Name))

		var result PhaseResult
		if p.cfg.DryRun {
			result = dryRunResult(doc)
		} else {
			result = p.loadSubject(ctx, doc)
		}
		result.Duration = time.Since(start)
		p.results[doc.Name] = result
		ran++

		if result.Err != nil {
			p.log.Warn("subject failed",
				slog.String("subject", doc.Name),
				slog.String("error", result.Err.Error()),
				slog.Duration("duration", result.Duration),
			)
		} else {
			p.log.Info("subject loaded",
				slog.String("subject", doc.Name),
				slog.Int("chapters", result.Chapters),
				slog.Int("topics", result.Topics),
				slog.Int("skipped", result.Skipped),
				slog.Duration("duration", result.Duration),
			)
		}
	}

	p.log.Info("pipeline completed", slog.Int("subjects_run", ran), slog.Bool("dry_run", p.cfg.DryRun))
	return nil
}

func dryRunResult(doc SubjectDoc) PhaseResult {
	r := PhaseResult{}
	for _, ch := range doc.Chapters {
		r.Skipped += 1 + len(ch.Topics)
	}
	return r
}

func (p *Pipeline) loadSubject(ctx context.Context, doc SubjectDoc) PhaseResult {
	var result PhaseResult

	err := p.tx.RunInTx(ctx, func(ctx context.Context) error {
		result = PhaseResult{}

		sub := &domain.Subject{Name: doc.Name, ExamModes: make([]domain.ExamMode, 0, len(doc.ExamModes))}
		for _, m := range doc.ExamModes {
			sub.ExamModes = append(sub.ExamModes, domain.ExamMode(m))
		}
		if err := p.repo.UpsertSubject(ctx, sub); err != nil {
			return fmt.Errorf("upsert subject %s: %w", doc.Name, err)
		}

		for i, chDoc := range doc.Chapters {
			ch := &domain.Chapter{SubjectID: sub.ID, Name: chDoc.Name, Position: i + 1}
			if err := p.repo.UpsertChapter(ctx, ch); err != nil {
				return fmt.Errorf("upsert chapter %s: %w", chDoc.Name, err)
			}
			result.Chapters++

			for _, tDoc := range chDoc.Topics {
				t := &domain.Topic{
					SubjectID:             sub.ID,
					ChapterID:             ch.ID,
					Name:                  tDoc.Name,
					PYQWeight:             tDoc.PYQWeight,
					Importance:            tDoc.Importance,
					Difficulty:            tDoc.Difficulty,
					EstimatedHours:        tDoc.EstimatedHours,
					EstimatedMicroMinutes: tDoc.EstimatedMicroMinutes,
				}
				if err := p.repo.UpsertTopic(ctx, t); err != nil {
					return fmt.Errorf("upsert topic %s: %w", tDoc.Name, err)
				}
				result.Topics++
			}
		}
		return nil
	})
	if err != nil {
		return PhaseResult{Err: err}
	}
	return result
}
