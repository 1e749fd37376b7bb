package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code    ErrorCode
		retries int
	}{
		{ErrCodeNoQualifyingCandidate, 0},
		{ErrCodeNoItemsToEvaluate, 0},
		{ErrCodeInvalidCandidateData, 0},
		{ErrCodeInvalidCriteria, 0},
		{ErrCodeInputValidation, 0},
		{ErrCodeDuplicateAssignment, 0},
		{ErrCodeRosterQueryFailed, 3},
		{ErrCodeRosterTimeout, 2},
		{ErrCodeAssignmentInsertFailed, 3},
		{ErrCodeEvaluationPersist, 3},
		{ErrCodeNotificationSendFailed, 3},
		{ErrCodeJudgeTimeout, 1},
		{ErrCodeJudgeFailed, 1},
		{ErrCodeInternal, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.retries, GetRetryCount(tt.code))
			assert.Equal(t, tt.retries > 0, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewNoQualifyingCandidateError("best score 0.65").
		WithMetadata("bestScore", 0.65).
		WithMetadata("minScore", 0.7)

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "NO_QUALIFYING_CANDIDATE", bpmnErr.Code)
	assert.False(t, bpmnErr.Retryable)
	assert.Equal(t, 0, bpmnErr.Retries)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "NO_QUALIFYING_CANDIDATE", vars["errorCode"])
	assert.Equal(t, "best score 0.65", vars["errorDetails"])
	assert.Equal(t, 0.65, vars["bestScore"])
	assert.Equal(t, 0.7, vars["minScore"])
	assert.Equal(t, "NO_QUALIFYING_CANDIDATE", vars["originalErrorCode"])
}

func TestConvertToBPMNError_Retryable(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewRosterTimeoutError(fmt.Errorf("deadline exceeded")))

	assert.True(t, bpmnErr.Retryable)
	assert.Equal(t, 2, bpmnErr.Retries)
	assert.Equal(t, "ROSTER_TIMEOUT", bpmnErr.Code)
}

func TestNormalizeError(t *testing.T) {
	h := NewErrorHandler(nil)

	wrapped := fmt.Errorf("context: %w", NewDuplicateAssignmentError("wi-1"))
	assert.Equal(t, ErrCodeDuplicateAssignment, h.normalizeError(wrapped).Code)

	plain := h.normalizeError(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
	assert.False(t, plain.Retryable)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "ROSTER", GetErrorCategory(ErrCodeRosterTimeout))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeAssignmentInsertFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeEvaluationPersist))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeJudgeFailed))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidCriteria))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidCandidateData))
	assert.Equal(t, "BUSINESS", GetErrorCategory(ErrCodeNoQualifyingCandidate))
	assert.Equal(t, "BUSINESS", GetErrorCategory(ErrCodeNoItemsToEvaluate))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
