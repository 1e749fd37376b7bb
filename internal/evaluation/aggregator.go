package evaluation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"delegation-workers/internal/models"
)

const (
	// ApprovalThreshold is inclusive.
	ApprovalThreshold = 70.0
	maxListEntries    = 5
)

var ErrNoItemsToEvaluate = errors.New("NO_ITEMS_TO_EVALUATE")

// Aggregate averages the judged items into one outcome. Fallback items are treated like any other.
func Aggregate(items []models.EvaluationItem) (*models.EvaluationOutcome, error) {
	if len(items) == 0 {
		return nil, ErrNoItemsToEvaluate
	}

	var technical, argumentation, formatting float64
	summaries := make([]string, 0, len(items))
	var strengths, improvements, recommendations [][]string

	for i, item := range items {
		t, a, f := clampScore(item.Technical), clampScore(item.Argumentation), clampScore(item.Formatting)
		technical += t
		argumentation += a
		formatting += f

		summaries = append(summaries, fmt.Sprintf("Teste %d: técnica %s, argumentação %s, formatação %s\n%s",
			i+1, formatScore(t), formatScore(a), formatScore(f), item.Feedback))

		strengths = append(strengths, item.Strengths)
		improvements = append(improvements, item.Improvements)
		recommendations = append(recommendations, item.Recommendations)
	}

	n := float64(len(items))
	outcome := &models.EvaluationOutcome{
		TechnicalScore:     round1(technical / n),
		ArgumentationScore: round1(argumentation / n),
		FormattingScore:    round1(formatting / n),
		Feedback:           strings.Join(summaries, "\n\n"),
		Strengths:          firstUnique(strengths),
		Improvements:       firstUnique(improvements),
		Recommendations:    firstUnique(recommendations),
		ItemCount:          len(items),
	}
	outcome.OverallScore = round1((outcome.TechnicalScore + outcome.ArgumentationScore + outcome.FormattingScore) / 3)
	outcome.Approved = outcome.OverallScore >= ApprovalThreshold

	return outcome, nil
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func clampScore(x float64) float64 {
	return math.Max(0, math.Min(100, x))
}

func formatScore(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// firstUnique merges the lists in order, dropping blanks and repeats, and keeps at most maxListEntries.
func firstUnique(lists [][]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, maxListEntries)
	for _, list := range lists {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
			if len(out) == maxListEntries {
				return out
			}
		}
	}
	return out
}
