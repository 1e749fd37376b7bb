// internal/workers/evaluation/aggregate-evaluation/handler.go
package aggregateevaluation

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"delegation-workers/internal/common/errors"
	"delegation-workers/internal/common/logger"
	"delegation-workers/internal/common/metrics"
	"delegation-workers/internal/common/observability"
	"delegation-workers/internal/common/validation"
	"delegation-workers/internal/evaluation"
	"delegation-workers/internal/models"
)

const (
	TaskType = "aggregate-evaluation"
)

var (
	ErrEvaluationPersistFailed = stderrors.New("EVALUATION_PERSIST_FAILED")
)

// RosterInvalidator drops cached rosters once a provider's score changes.
type RosterInvalidator interface {
	Invalidate(ctx context.Context) error
}

type Handler struct {
	config       *Config
	db           *sql.DB
	invalidator  RosterInvalidator
	validator    *validation.Validator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
	now          func() time.Time
}

// NewHandler accepts a nil db (no persistence) and a nil invalidator (no roster cache).
func NewHandler(config *Config, db *sql.DB, invalidator RosterInvalidator, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
		invalidator:  invalidator,
		validator:    validator,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
		now:          time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	ctx, span := observability.StartSpan(ctx, TaskType, attribute.Int64("jobKey", job.Key))
	defer span.End()

	raw := []byte(job.Variables)
	if err := h.validator.Validate(TaskType, raw); err != nil {
		h.failJob(client, job, span, err)
		return
	}

	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		h.failJob(client, job, span, errors.NewInputValidationError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, span, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	outcome, err := evaluation.Aggregate(input.Items)
	if err != nil {
		return nil, err
	}
	metrics.RecordEvaluation(outcome.Approved)

	output := &Output{EvaluationOutcome: *outcome}

	if input.ProviderID != "" && h.db != nil {
		id, err := h.persist(ctx, input.ProviderID, outcome)
		if err != nil {
			return nil, err
		}
		output.EvaluationID = id
		output.Persisted = true

		if h.invalidator != nil {
			if err := h.invalidator.Invalidate(ctx); err != nil {
				h.logger.Warn("roster cache invalidation failed", map[string]interface{}{
					"error":      err,
					"providerId": input.ProviderID,
				})
			}
		}
	}

	h.logger.Info("evaluation aggregated", map[string]interface{}{
		"providerId":   input.ProviderID,
		"items":        outcome.ItemCount,
		"overallScore": outcome.OverallScore,
		"approved":     outcome.Approved,
		"persisted":    output.Persisted,
	})

	return output, nil
}

// persist stores the outcome and the provider's new evaluation score in one transaction.
func (h *Handler) persist(ctx context.Context, providerID string, o *models.EvaluationOutcome) (string, error) {
	strengths, _ := json.Marshal(o.Strengths)
	improvements, _ := json.Marshal(o.Improvements)
	recommendations, _ := json.Marshal(o.Recommendations)

	id := uuid.New().String()
	createdAt := h.now().UTC()

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: begin: %v", ErrEvaluationPersistFailed, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO provider_evaluations (
			id, provider_id, technical_score, argumentation_score, formatting_score, overall_score,
			approved, feedback, strengths, improvements, recommendations, item_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		id, providerID, o.TechnicalScore, o.ArgumentationScore, o.FormattingScore, o.OverallScore,
		o.Approved, o.Feedback, string(strengths), string(improvements), string(recommendations), o.ItemCount, createdAt,
	)
	if err != nil {
		return "", fmt.Errorf("%w: insert evaluation: %v", ErrEvaluationPersistFailed, err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE providers SET evaluation_score = $1, status = $2, updated_at = $3 WHERE id = $4`,
		o.OverallScore, providerStatus(o.Approved), createdAt, providerID,
	)
	if err != nil {
		return "", fmt.Errorf("%w: update provider: %v", ErrEvaluationPersistFailed, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		h.logger.Warn("evaluated provider not found", map[string]interface{}{
			"providerId": providerID,
		})
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: commit: %v", ErrEvaluationPersistFailed, err)
	}
	return id, nil
}

// providerStatus is the roster status an evaluation leaves the provider in.
func providerStatus(approved bool) string {
	if approved {
		return models.ProviderStatusApproved
	}
	return models.ProviderStatusRejected
}

// toStandardError maps domain failures onto the BPMN error catalogue.
func toStandardError(err error) *errors.StandardError {
	var stdErr *errors.StandardError
	switch {
	case stderrors.As(err, &stdErr):
		return stdErr
	case stderrors.Is(err, evaluation.ErrNoItemsToEvaluate):
		return errors.NewNoItemsToEvaluateError()
	case stderrors.Is(err, ErrEvaluationPersistFailed):
		return errors.NewEvaluationPersistError(err)
	default:
		return errors.NewInternalError(err)
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.RecordJobCompleted(TaskType)
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, span observability.Span, err error) {
	stdErr := toStandardError(err)
	observability.RecordError(span, stdErr)
	metrics.RecordJobFailed(TaskType, string(stdErr.Code))
	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
