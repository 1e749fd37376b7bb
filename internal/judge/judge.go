package judge

import (
	"context"
	"errors"
	"fmt"

	"delegation-workers/internal/models"
)

var (
	ErrJudgeFailed  = errors.New("JUDGE_FAILED")
	ErrJudgeTimeout = errors.New("JUDGE_TIMEOUT")
)

// FallbackScore is the neutral score given to every dimension when judging fails.
const FallbackScore = 50.0

// Submission is one test answer sent by a provider applicant.
type Submission struct {
	ProviderID string `json:"providerId"`
	TestIndex  int    `json:"testIndex"`
	LegalArea  string `json:"legalArea"`
	Question   string `json:"question"`
	Rubric     string `json:"rubric"`
	Answer     string `json:"answer"`
}

type Judge interface {
	Evaluate(ctx context.Context, sub Submission) (*models.EvaluationItem, error)
}

// FallbackItem is the neutral item substituted for a submission the judge could not score.
func FallbackItem(reason string) models.EvaluationItem {
	return models.EvaluationItem{
		Technical:       FallbackScore,
		Argumentation:   FallbackScore,
		Formatting:      FallbackScore,
		Feedback:        fmt.Sprintf("Avaliação automática indisponível (%s). Nota neutra atribuída.", reason),
		Strengths:       []string{},
		Improvements:    []string{},
		Recommendations: []string{"Solicitar revisão manual desta resposta"},
	}
}
