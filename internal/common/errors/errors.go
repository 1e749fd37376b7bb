// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeNoQualifyingCandidate ErrorCode = "NO_QUALIFYING_CANDIDATE"
	ErrCodeNoItemsToEvaluate     ErrorCode = "NO_ITEMS_TO_EVALUATE"
	ErrCodeInvalidCandidateData  ErrorCode = "INVALID_CANDIDATE_DATA"
	ErrCodeInvalidCriteria       ErrorCode = "INVALID_CRITERIA"
	ErrCodeInputValidation       ErrorCode = "INPUT_VALIDATION_FAILED"

	ErrCodeRosterQueryFailed ErrorCode = "ROSTER_QUERY_FAILED"
	ErrCodeRosterTimeout     ErrorCode = "ROSTER_TIMEOUT"

	ErrCodeAssignmentInsertFailed ErrorCode = "ASSIGNMENT_INSERT_FAILED"
	ErrCodeDuplicateAssignment    ErrorCode = "DUPLICATE_ASSIGNMENT"
	ErrCodeEvaluationPersist      ErrorCode = "EVALUATION_PERSIST_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeJudgeTimeout ErrorCode = "JUDGE_TIMEOUT"
	ErrCodeJudgeFailed  ErrorCode = "JUDGE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a value that is forwarded to the process as an error variable.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: GetRetryCount(code) > 0,
		Timestamp: time.Now().UTC(),
	}
}

func NewNoQualifyingCandidateError(details string) *StandardError {
	return newError(ErrCodeNoQualifyingCandidate, "No candidate met the minimum match score", details)
}

func NewNoItemsToEvaluateError() *StandardError {
	return newError(ErrCodeNoItemsToEvaluate, "Insufficient test submissions to evaluate", "items list is empty")
}

func NewInvalidCandidateDataError(details string) *StandardError {
	return newError(ErrCodeInvalidCandidateData, "Candidate data is invalid", details)
}

func NewInvalidCriteriaError(details string) *StandardError {
	return newError(ErrCodeInvalidCriteria, "Matching criteria are invalid", details)
}

func NewInputValidationError(details string) *StandardError {
	return newError(ErrCodeInputValidation, "Job variables failed schema validation", details)
}

func NewRosterQueryFailedError(err error) *StandardError {
	return newError(ErrCodeRosterQueryFailed, "Provider roster query failed", err.Error())
}

func NewRosterTimeoutError(err error) *StandardError {
	return newError(ErrCodeRosterTimeout, "Provider roster query timed out", err.Error())
}

func NewAssignmentInsertFailedError(err error) *StandardError {
	return newError(ErrCodeAssignmentInsertFailed, "Provider assignment could not be stored", err.Error())
}

func NewDuplicateAssignmentError(workItemID string) *StandardError {
	return newError(ErrCodeDuplicateAssignment, "Work item already has an active assignment",
		fmt.Sprintf("workItemId: %s", workItemID))
}

func NewEvaluationPersistError(err error) *StandardError {
	return newError(ErrCodeEvaluationPersist, "Evaluation outcome could not be stored", err.Error())
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()))
}

func NewJudgeTimeoutError(err error) *StandardError {
	return newError(ErrCodeJudgeTimeout, "Submission judge timed out", err.Error())
}

func NewJudgeFailedError(err error) *StandardError {
	return newError(ErrCodeJudgeFailed, "Submission judge failed", err.Error())
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error())
}

// ==========================
// 4. BPMN Mapping
// ==========================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeNoQualifyingCandidate:  "NO_QUALIFYING_CANDIDATE",
	ErrCodeNoItemsToEvaluate:      "NO_ITEMS_TO_EVALUATE",
	ErrCodeInvalidCandidateData:   "INVALID_CANDIDATE_DATA",
	ErrCodeInvalidCriteria:        "INVALID_CRITERIA",
	ErrCodeInputValidation:        "INPUT_VALIDATION_FAILED",
	ErrCodeRosterQueryFailed:      "ROSTER_QUERY_FAILED",
	ErrCodeRosterTimeout:          "ROSTER_TIMEOUT",
	ErrCodeAssignmentInsertFailed: "ASSIGNMENT_INSERT_FAILED",
	ErrCodeDuplicateAssignment:    "DUPLICATE_ASSIGNMENT",
	ErrCodeEvaluationPersist:      "EVALUATION_PERSIST_FAILED",
	ErrCodeNotificationSendFailed: "NOTIFICATION_SEND_FAILED",
	ErrCodeJudgeTimeout:           "JUDGE_TIMEOUT",
	ErrCodeJudgeFailed:            "JUDGE_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeRosterQueryFailed,
		ErrCodeAssignmentInsertFailed,
		ErrCodeEvaluationPersist,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeRosterTimeout:
		return 2 // Partial retry for timeouts

	case ErrCodeJudgeTimeout, ErrCodeJudgeFailed:
		return 1

	default:
		return 0 // Business errors: no retry
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "ROSTER"):
		return "ROSTER"
	case strings.Contains(codeStr, "ASSIGNMENT") || strings.Contains(codeStr, "PERSIST"):
		return "DATABASE"
	case strings.Contains(codeStr, "JUDGE"):
		return "AI"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CANDIDATE") || strings.Contains(codeStr, "ITEMS"):
		return "BUSINESS"
	default:
		return "OTHER"
	}
}
