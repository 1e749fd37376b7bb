// internal/workers/evaluation/judge-submission/handler_test.go
package judgesubmission

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delegation-workers/internal/common/errors"
	"delegation-workers/internal/common/logger"
	"delegation-workers/internal/judge"
	"delegation-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeJudge struct {
	item        *models.EvaluationItem
	err         error
	submissions []judge.Submission
	deadline    time.Time
	hasDeadline bool
}

func (f *fakeJudge) Evaluate(ctx context.Context, sub judge.Submission) (*models.EvaluationItem, error) {
	f.submissions = append(f.submissions, sub)
	f.deadline, f.hasDeadline = ctx.Deadline()
	return f.item, f.err
}

func createTestInput() *Input {
	return &Input{
		ProviderID: "prov-001",
		TestIndex:  2,
		LegalArea:  "civil",
		Question:   "Redija uma contestação para a ação de cobrança descrita.",
		Answer:     "Excelentíssimo Senhor Doutor Juiz...",
	}
}

func judgedItem() *models.EvaluationItem {
	return &models.EvaluationItem{
		Technical:       88,
		Argumentation:   81,
		Formatting:      92,
		Feedback:        "Boa fundamentação.",
		Strengths:       []string{"Citação de jurisprudência"},
		Improvements:    []string{},
		Recommendations: []string{},
	}
}

func newTestHandler(t *testing.T, j judge.Judge, fallback bool) *Handler {
	t.Helper()
	cfg := LoadConfig()
	cfg.FallbackEnabled = fallback
	return NewHandler(cfg, j, nil, logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	fj := &fakeJudge{item: judgedItem()}
	handler := newTestHandler(t, fj, true)

	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.False(t, output.Fallback)
	assert.Empty(t, output.FallbackReason)
	assert.Equal(t, "prov-001", output.ProviderID)
	assert.Equal(t, 2, output.TestIndex)
	assert.Equal(t, *judgedItem(), output.Item)

	require.Len(t, fj.submissions, 1)
	assert.Equal(t, "civil", fj.submissions[0].LegalArea)
	assert.Equal(t, createTestInput().Answer, fj.submissions[0].Answer)
	assert.True(t, fj.hasDeadline, "judge call must be bounded")
}

func TestHandler_Execute_FallbackOnJudgeError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantReason string
	}{
		{"timeout", fmt.Errorf("%w: context deadline exceeded", judge.ErrJudgeTimeout), FallbackReasonTimeout},
		{"malformed response", fmt.Errorf("%w: no JSON object in response", judge.ErrJudgeFailed), FallbackReasonFailure},
		{"unexpected error", stderrors.New("quota exhausted"), FallbackReasonFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, &fakeJudge{err: tt.err}, true)

			output, err := handler.Execute(context.Background(), createTestInput())

			require.NoError(t, err)
			assert.True(t, output.Fallback)
			assert.Equal(t, tt.wantReason, output.FallbackReason)
			assert.Equal(t, judge.FallbackScore, output.Item.Technical)
			assert.Equal(t, judge.FallbackScore, output.Item.Argumentation)
			assert.Equal(t, judge.FallbackScore, output.Item.Formatting)
			assert.Contains(t, output.Item.Feedback, fallbackDescriptions[tt.wantReason])
		})
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_FallbackDisabled(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errors.ErrorCode
	}{
		{"timeout", fmt.Errorf("%w: slow model", judge.ErrJudgeTimeout), errors.ErrCodeJudgeTimeout},
		{"failure", fmt.Errorf("%w: bad JSON", judge.ErrJudgeFailed), errors.ErrCodeJudgeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, &fakeJudge{err: tt.err}, false)

			_, err := handler.Execute(context.Background(), createTestInput())

			require.Error(t, err)
			stdErr := toStandardError(err)
			assert.Equal(t, tt.want, stdErr.Code)
			assert.True(t, stdErr.Retryable)
		})
	}
}

func TestHandler_Execute_EmptyAnswer(t *testing.T) {
	fj := &fakeJudge{item: judgedItem()}
	handler := newTestHandler(t, fj, true)

	input := createTestInput()
	input.Answer = "   "
	_, err := handler.Execute(context.Background(), input)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInputValidation, toStandardError(err).Code)
	assert.Empty(t, fj.submissions)
}
