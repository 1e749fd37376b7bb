// cmd/tools/matchctl/output.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"delegation-workers/internal/models"
)

func writeJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func matchesTable(w io.Writer, o *models.MatchingOutcome) error {
	fmt.Fprintf(w, "Candidates: %d (skipped %d)  Matches: %d  Average: %.4f\n\n",
		o.TotalCandidates, o.SkippedCandidates, len(o.Matches), o.AverageScore)
	if len(o.Matches) == 0 {
		fmt.Fprintln(w, "No matches found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPROVIDER\tNAME\tSCORE\tPRICE\tREASONS\tWARNINGS")
	fmt.Fprintln(tw, "-\t--------\t----\t-----\t-----\t-------\t--------")
	for i, m := range o.Matches {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.4f\t%.0f\t%s\t%s\n",
			i+1, m.ProviderID, truncate(m.ProviderName, 24), m.MatchScore, m.EstimatedPrice,
			strings.Join(m.Reasons, "; "), strings.Join(m.Warnings, "; "))
	}
	return tw.Flush()
}

func matchDetail(w io.Writer, m *models.MatchResult) error {
	fmt.Fprintf(w, "Provider:  %s (%s)\n", m.ProviderName, m.ProviderID)
	fmt.Fprintf(w, "Score:     %.4f\n", m.MatchScore)
	fmt.Fprintf(w, "Price:     R$ %.0f\n", m.EstimatedPrice)
	writeList(w, "Reasons", m.Reasons)
	writeList(w, "Warnings", m.Warnings)
	return nil
}

func evaluationDetail(w io.Writer, o *models.EvaluationOutcome) error {
	verdict := "REJECTED"
	if o.Approved {
		verdict = "APPROVED"
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Items:\t%d\n", o.ItemCount)
	fmt.Fprintf(tw, "Technical:\t%.1f\n", o.TechnicalScore)
	fmt.Fprintf(tw, "Argumentation:\t%.1f\n", o.ArgumentationScore)
	fmt.Fprintf(tw, "Formatting:\t%.1f\n", o.FormattingScore)
	fmt.Fprintf(tw, "Overall:\t%.1f (%s)\n", o.OverallScore, verdict)
	if err := tw.Flush(); err != nil {
		return err
	}
	writeList(w, "Strengths", o.Strengths)
	writeList(w, "Improvements", o.Improvements)
	writeList(w, "Recommendations", o.Recommendations)
	return nil
}

func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(w, "  - %s\n", it)
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
