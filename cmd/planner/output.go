package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"github.com/heartmarshall/studyplanner-backend/internal/service/recalibration"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printPlan(w io.Writer, p *domain.DailyPlan) {
	light := ""
	if p.IsLightDay {
		light = " (light day)"
	}
	fmt.Fprintf(w, "plan %s for %s%s\n", p.ID, p.Date.Format(time.DateOnly), light)
	fmt.Fprintf(w, "available %.2fh  fatigue %d  energy %s  revision ratio %.2f\n\n",
		p.AvailableHours, p.FatigueScore, p.EnergyLevel, p.RevisionRatio)

	items := slices.Clone(p.Items)
	slices.SortFunc(items, func(a, b domain.PlanItem) int { return a.DisplayOrder - b.DisplayOrder })

	tw := newTable(w)
	fmt.Fprintln(tw, "#\tITEM\tTOPIC\tTYPE\tHOURS\tPRIORITY\tSTATUS")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%.2f\t%s\n",
			it.DisplayOrder, it.ID, it.TopicID, it.Type, it.EstimatedHours, it.PriorityScore, it.Status)
	}
	_ = tw.Flush()
}

func printItem(w io.Writer, it domain.PlanItem, prev, now domain.TopicStatus) {
	fmt.Fprintf(w, "item %s %s", it.ID, it.Status)
	if it.ActualHours != nil {
		fmt.Fprintf(w, " (%.2fh)", *it.ActualHours)
	}
	fmt.Fprintln(w)
	if prev != now && now != "" {
		fmt.Fprintf(w, "topic %s: %s -> %s\n", it.TopicID, prev, now)
	}
}

func printVelocity(w io.Writer, s *domain.VelocitySnapshot) {
	tw := newTable(w)
	fmt.Fprintf(tw, "date\t%s\n", s.Date.Format(time.DateOnly))
	fmt.Fprintf(tw, "required\t%.2f\n", s.RequiredVelocity)
	fmt.Fprintf(tw, "actual (7d/14d/blend)\t%.2f / %.2f / %.2f\n", s.Actual7d, s.Actual14d, s.ActualVelocity)
	fmt.Fprintf(tw, "ratio\t%.2f (%s, %s)\n", s.Ratio, s.Status, s.Trend)
	fmt.Fprintf(tw, "completion weighted/unweighted\t%.1f%% / %.1f%%\n", s.WeightedCompletion, s.UnweightedCompletion)
	fmt.Fprintf(tw, "gravity done/remaining/total\t%.1f / %.1f / %.1f\n", s.CompletedGravity, s.RemainingGravity, s.TotalGravity)
	fmt.Fprintf(tw, "days remaining\t%d\n", s.DaysRemaining)
	fmt.Fprintf(tw, "stress\t%.2f\n", s.Stress)
	_ = tw.Flush()
}

func printBuffer(w io.Writer, txs []domain.BufferTransaction) {
	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tTYPE\tAMOUNT\tBALANCE\tNOTE")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%+.2f\t%.2f\t%s\n",
			tx.Date.Format(time.DateOnly), tx.Type, tx.Amount, tx.BalanceAfter, tx.Note)
	}
	_ = tw.Flush()
}

func printBurnout(w io.Writer, b *domain.BurnoutSnapshot) {
	tw := newTable(w)
	fmt.Fprintf(tw, "date\t%s\n", b.Date.Format(time.DateOnly))
	fmt.Fprintf(tw, "BRI\t%d\n", b.BRI)
	fmt.Fprintf(tw, "fatigue\t%d\n", b.FatigueScore)
	fmt.Fprintf(tw, "stress persistence\t%.2f\n", b.StressPersistence)
	fmt.Fprintf(tw, "buffer hemorrhage\t%.2f\n", b.BufferHemorrhage)
	fmt.Fprintf(tw, "velocity collapse\t%.2f\n", b.VelocityCollapse)
	fmt.Fprintf(tw, "engagement decay\t%.2f\n", b.EngagementDecay)
	fmt.Fprintf(tw, "in recovery\t%t\n", b.InRecovery)
	_ = tw.Flush()
}

func printRecovery(w io.Writer, r domain.RecoveryLog) {
	fmt.Fprintf(w, "recovery %s: %s to %s (trigger BRI %d)",
		r.ID, r.StartDate.Format(time.DateOnly), r.EndDate.Format(time.DateOnly), r.TriggerBRI)
	if r.ExitedAt != nil {
		fmt.Fprintf(w, ", exited %s: %s", r.ExitedAt.Format(time.DateOnly), r.ExitReason)
	}
	fmt.Fprintln(w)
}

func printRecalibration(w io.Writer, r *domain.RecalibrationResult) {
	fmt.Fprintf(w, "recalibration %s (%s)", r.Outcome, r.Trigger)
	if r.SkipReason != "" {
		fmt.Fprintf(w, ": %s", r.SkipReason)
	}
	fmt.Fprintln(w)
	if len(r.Reasons) == 0 {
		return
	}

	names := make([]string, 0, len(r.Reasons))
	for name := range r.Reasons {
		names = append(names, string(name))
	}
	slices.Sort(names)

	tw := newTable(w)
	fmt.Fprintln(tw, "PARAM\tBEFORE\tAFTER\tREASON")
	for _, n := range names {
		p := domain.TunableParam(n)
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%s\n", n, r.Before.Get(p), r.After.Get(p), r.Reasons[p])
	}
	_ = tw.Flush()
}

func printCascade(w io.Writer, r *domain.CascadeResult) {
	if !r.Triggered {
		fmt.Fprintln(w, "no cascade")
		return
	}
	strategies := make([]string, 0, len(r.Strategies))
	for _, s := range r.Strategies {
		strategies = append(strategies, string(s.Kind))
	}
	fmt.Fprintf(w, "cascade triggered: %s (backlog %.2f)\n", r.Reason, r.Backlog)
	if len(strategies) > 0 {
		fmt.Fprintf(w, "strategies: %s\n", strings.Join(strategies, ", "))
	}
}

func printPersona(w io.Writer, before, after domain.PersonaParams) {
	rows := []struct {
		name   string
		before float64
		after  float64
	}{
		{"fatigue_threshold", before.FatigueThreshold, after.FatigueThreshold},
		{"buffer_capacity", before.BufferCapacity, after.BufferCapacity},
		{"fsrs_target_retention", before.TargetRetention, after.TargetRetention},
		{"burnout_threshold", before.BurnoutThreshold, after.BurnoutThreshold},
		{"fatigue_sensitivity", before.FatigueSensitivity, after.FatigueSensitivity},
		{"deposit_rate", before.DepositRate, after.DepositRate},
		{"withdrawal_rate", before.WithdrawalRate, after.WithdrawalRate},
		{"velocity_target_multiplier", before.VelocityTargetMultiplier, after.VelocityTargetMultiplier},
		{"base_revision_ratio", before.BaseRevisionRatio, after.BaseRevisionRatio},
		{"terminal_revision_ratio", before.TerminalRevisionRatio, after.TerminalRevisionRatio},
		{"max_topics_per_day", float64(before.MaxTopicsPerDay), float64(after.MaxTopicsPerDay)},
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "PARAM\tVALUE\t")
	for _, r := range rows {
		mark := ""
		if r.before != r.after {
			mark = fmt.Sprintf("(was %g)", r.before)
		}
		fmt.Fprintf(tw, "%s\t%g\t%s\n", r.name, r.after, mark)
	}
	_ = tw.Flush()
}

func printHistory(w io.Writer, h *recalibration.History) {
	tw := newTable(w)
	fmt.Fprintln(tw, "VALID FROM\tVALID TO\tTRIGGER\tFATIGUE\tBUFFER\tRETENTION\tBURNOUT")
	for _, s := range h.Snapshots {
		to := "current"
		if s.ValidTo != nil {
			to = s.ValidTo.Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%g\t%g\t%g\n",
			s.ValidFrom.Format(time.DateTime), to, s.Trigger,
			s.Params.FatigueThreshold, s.Params.BufferCapacity, s.Params.TargetRetention, s.Params.BurnoutThreshold)
	}
	_ = tw.Flush()

	if len(h.Logs) == 0 {
		fmt.Fprintln(w, "\nno recalibration runs")
		return
	}
	fmt.Fprintln(w)
	tw = newTable(w)
	fmt.Fprintln(tw, "AT\tTRIGGER\tOUTCOME\tDETAIL")
	for _, l := range h.Logs {
		detail := l.SkipReason
		if detail == "" {
			names := make([]string, 0, len(l.Reasons))
			for name := range l.Reasons {
				names = append(names, string(name))
			}
			slices.Sort(names)
			detail = strings.Join(names, ", ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.CreatedAt.Format(time.DateTime), l.Trigger, l.Outcome, detail)
	}
	_ = tw.Flush()
}

func printSubjectConfidence(w io.Writer, rows []domain.SubjectConfidence) {
	tw := newTable(w)
	fmt.Fprintln(tw, "SUBJECT\tWEIGHTED\tTOPICS\t")
	for _, r := range rows {
		risk := ""
		if r.AtRisk {
			risk = "at risk"
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%d\t%s\n", r.SubjectID, r.Weighted, r.TopicCount, risk)
	}
	_ = tw.Flush()
}

func printInsights(w io.Writer, accuracy map[uuid.UUID]float64, sets domain.InsightSets) {
	flags := map[uuid.UUID][]string{}
	for kind, ids := range sets.Kinds() {
		for _, id := range ids {
			flags[id] = append(flags[id], string(kind))
		}
	}

	ids := make([]uuid.UUID, 0, len(accuracy)+len(flags))
	for id := range accuracy {
		ids = append(ids, id)
	}
	for id := range flags {
		if _, ok := accuracy[id]; !ok {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })

	if len(ids) == 0 {
		fmt.Fprintln(w, "no insights recorded")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "TOPIC\tMOCK\tFLAGS")
	for _, id := range ids {
		mock := "-"
		if acc, ok := accuracy[id]; ok {
			mock = fmt.Sprintf("%.2f", acc)
		}
		slices.Sort(flags[id])
		fmt.Fprintf(tw, "%s\t%s\t%s\n", id, mock, strings.Join(flags[id], ", "))
	}
	_ = tw.Flush()
}
