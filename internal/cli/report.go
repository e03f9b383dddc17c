package cli

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/fatih/color"

	"github.com/at-ishikawa/tidbit/internal/content"
	"github.com/at-ishikawa/tidbit/internal/repetition"
	"github.com/at-ishikawa/tidbit/internal/statistics"
	"github.com/at-ishikawa/tidbit/internal/study"
)

// PrintSessionSummary displays the stats of a finished session.
func PrintSessionSummary(w io.Writer, session *study.Session) {
	_, _ = color.New(color.Bold).Fprintln(w, "Session complete")
	_, _ = fmt.Fprintf(w, "Completed: %d/%d\n", session.Stats.Completed, session.Stats.Total)
	_, _ = fmt.Fprintf(w, "Knew: %d, Didn't know: %d, Saved: %d\n", session.Stats.Knew, session.Stats.DidntKnow, session.Stats.Saved)
	_, _ = fmt.Fprintf(w, "Accuracy: %d%%\n", int(math.Round(session.Stats.Accuracy*100)))
	_, _ = fmt.Fprintf(w, "Duration: %d min\n", session.DurationMinutes)
}

// PrintPlan displays a daily plan.
func PrintPlan(w io.Writer, plan *study.SessionPlan) {
	if plan == nil {
		_, _ = fmt.Fprintln(w, "No plan for today. Select categories first.")
		return
	}
	_, _ = color.New(color.Bold).Fprintf(w, "Plan for %s\n", plan.Date.Format(time.DateOnly))
	_, _ = fmt.Fprintf(w, "%d tidbits (%d due, %d new), about %d min\n", plan.TotalCount, plan.DueCount, plan.NewCount, plan.EstimatedMinutes)
	if plan.Completed {
		_, _ = color.New(color.FgGreen).Fprintf(w, "Completed (%d/%d)\n", plan.CompletedCount, plan.TotalCount)
	} else {
		_, _ = fmt.Fprintf(w, "Progress: %d/%d\n", plan.CompletedCount, plan.TotalCount)
	}
	PrintTidbits(w, plan.Tidbits)
}

// PrintTidbits displays tidbits as a numbered list.
func PrintTidbits(w io.Writer, tidbits []content.Tidbit) {
	for i, t := range tidbits {
		_, _ = fmt.Fprintf(w, "%3d. [%s] %s (%s)\n", i+1, t.Category, t.Text, t.ID)
	}
}

// PrintLearningState displays the learning state of one tidbit.
func PrintLearningState(w io.Writer, state *repetition.LearningState) {
	if state == nil {
		_, _ = fmt.Fprintln(w, "No learning state.")
		return
	}
	nextDue := "not scheduled"
	if state.NextDue != nil {
		nextDue = state.NextDue.Format(time.RFC3339)
	}
	_, _ = fmt.Fprintf(w, "Tidbit:     %s\n", state.TidbitID)
	_, _ = fmt.Fprintf(w, "Mastery:    %s\n", state.MasteryLevel)
	_, _ = fmt.Fprintf(w, "Views:      %d (correct %d, streak %d)\n", state.TotalViews, state.TotalCorrect, state.CorrectStreak)
	_, _ = fmt.Fprintf(w, "Next due:   %s\n", nextDue)
	_, _ = fmt.Fprintf(w, "Saved:      %t\n", state.Saved)
}

// PrintProgress displays per-category progress.
func PrintProgress(w io.Writer, progress []statistics.CategoryProgress) {
	if len(progress) == 0 {
		_, _ = fmt.Fprintln(w, "No categories selected.")
		return
	}
	_, _ = fmt.Fprintf(w, "%-24s  %6s  %6s  %8s  %8s  %6s  %7s\n", "Category", "Total", "Seen", "Learning", "Mastered", "Due", "Mastery")
	_, _ = fmt.Fprintf(w, "%-24s  %6s  %6s  %8s  %8s  %6s  %7s\n", "--------", "-----", "----", "--------", "--------", "---", "-------")
	for _, p := range progress {
		_, _ = fmt.Fprintf(w, "%-24s  %6d  %6d  %8d  %8d  %6d  %6d%%\n",
			p.Name, p.Total, p.Seen, p.Learning, p.Mastered, p.Due, p.MasteryPercent)
	}
}

// PrintSessionReport displays study statistics per month.
func PrintSessionReport(w io.Writer, summary statistics.SessionSummary) {
	if len(summary.Periods) == 0 {
		_, _ = fmt.Fprintln(w, "No study sessions found for the specified period.")
		return
	}

	_, _ = fmt.Fprintln(w, "Study Statistics Report")
	_, _ = fmt.Fprintln(w, "=======================")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%-10s  %-8s  %-24s  %-8s  %-8s\n", "Period", "Sessions", "Reviewed (Total/Unique)", "Accuracy", "Minutes")
	_, _ = fmt.Fprintf(w, "%-10s  %-8s  %-24s  %-8s  %-8s\n", "------", "--------", "-----------------------", "--------", "-------")

	for _, s := range summary.Periods {
		printSessionStatistics(w, s.Period, s)
	}

	_, _ = fmt.Fprintln(w)
	printSessionStatistics(w, "Totals:", summary.Aggregate)
}

func printSessionStatistics(w io.Writer, label string, s statistics.SessionStatistics) {
	_, _ = fmt.Fprintf(w, "%-10s  %-8d  %-24s  %-8s  %-8d\n",
		label,
		s.Sessions,
		fmt.Sprintf("%d / %d", s.Reviewed, s.ReviewedUnique),
		fmt.Sprintf("%d%%", int(math.Round(s.Accuracy()*100))),
		s.DurationMinutes,
	)
}

// PrintValidationReport displays content validation results.
// It returns false when the content has errors.
func PrintValidationReport(w io.Writer, report content.ValidationReport) bool {
	_, _ = fmt.Fprintf(w, "%d categories, %d tidbits\n", report.Categories, report.Tidbits)
	for _, msg := range report.Errors {
		_, _ = color.New(color.FgRed).Fprintf(w, "ERROR    %s\n", msg)
	}
	for _, msg := range report.Warnings {
		_, _ = color.New(color.FgYellow).Fprintf(w, "WARNING  %s\n", msg)
	}
	if report.Valid() {
		_, _ = color.New(color.FgGreen).Fprintf(w, "✅ Content is valid (%d warnings)\n", len(report.Warnings))
		return true
	}
	_, _ = color.New(color.FgRed).Fprintf(w, "❌ %d errors, %d warnings\n", len(report.Errors), len(report.Warnings))
	return false
}
