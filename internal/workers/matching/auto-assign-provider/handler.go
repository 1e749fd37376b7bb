// internal/workers/matching/auto-assign-provider/handler.go
package autoassignprovider

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"

	"delegation-workers/internal/common/errors"
	"delegation-workers/internal/common/logger"
	"delegation-workers/internal/common/metrics"
	"delegation-workers/internal/common/observability"
	"delegation-workers/internal/common/validation"
	"delegation-workers/internal/matching"
	"delegation-workers/internal/models"
	"delegation-workers/internal/roster"
)

const (
	TaskType = "auto-assign-provider"

	// uniqueViolation is raised by idx_assignments_active when a concurrent job assigned the work item first.
	uniqueViolation = "23505"
)

var (
	ErrAssignmentInsertFailed = stderrors.New("ASSIGNMENT_INSERT_FAILED")
	ErrDuplicateAssignment    = stderrors.New("DUPLICATE_ASSIGNMENT")
	ErrMissingWorkItem        = stderrors.New("workItemId is required")
	ErrInvalidMinScore        = stderrors.New("minScore must be in (0,1]")
)

type Handler struct {
	config       *Config
	engine       *matching.Engine
	roster       roster.Source
	db           *sql.DB
	validator    *validation.Validator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
	now          func() time.Time
}

func NewHandler(config *Config, engine *matching.Engine, source roster.Source, db *sql.DB, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
		roster:       source,
		db:           db,
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
	if strings.TrimSpace(input.WorkItemID) == "" {
		return nil, ErrMissingWorkItem
	}
	if input.MinScore != nil && (*input.MinScore <= 0 || *input.MinScore > 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidMinScore, *input.MinScore)
	}
	if err := input.Criteria.Validate(); err != nil {
		return nil, err
	}

	// Refuse before touching the roster.
	var exists bool
	err := h.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM provider_assignments WHERE work_item_id = $1 AND status = $2)`,
		input.WorkItemID, models.AssignmentStatusAssigned).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrAssignmentInsertFailed, err)
	}
	if exists {
		metrics.AutoAssignOutcomes.WithLabelValues(OutcomeDuplicate).Inc()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAssignment, input.WorkItemID)
	}

	pool, from, err := roster.ResolvePool(ctx, h.roster, input.Candidates, roster.Filter{
		LegalArea:          input.Criteria.LegalArea,
		MinEvaluationScore: h.config.MinEvaluationScore,
	})
	if err != nil {
		return nil, err
	}

	assignedAt := h.now().UTC()
	scoredAt := assignedAt
	if input.Now != nil {
		scoredAt = *input.Now
	}

	minScore := h.config.DefaultMinScore
	if input.MinScore != nil {
		minScore = *input.MinScore
	}

	best, err := h.engine.AutoAssignBestMatch(input.Criteria, pool, scoredAt, minScore)
	if err != nil {
		if stderrors.Is(err, matching.ErrNoQualifyingCandidate) {
			metrics.AutoAssignOutcomes.WithLabelValues(OutcomeNoCandidate).Inc()
			h.logger.Warn("no qualifying candidate", map[string]interface{}{
				"workItemId": input.WorkItemID,
				"poolSize":   len(pool),
				"minScore":   minScore,
			})
		}
		return nil, err
	}

	assignment := models.Assignment{
		ID:             uuid.New().String(),
		WorkItemID:     input.WorkItemID,
		ProviderID:     best.ProviderID,
		MatchScore:     best.MatchScore,
		EstimatedPrice: best.EstimatedPrice,
		Status:         models.AssignmentStatusAssigned,
		CreatedAt:      assignedAt,
	}

	if err := h.persist(ctx, assignment); err != nil {
		return nil, err
	}
	metrics.AutoAssignOutcomes.WithLabelValues(OutcomeAssigned).Inc()

	h.logger.Info("provider assigned", map[string]interface{}{
		"assignmentId": assignment.ID,
		"workItemId":   assignment.WorkItemID,
		"providerId":   assignment.ProviderID,
		"matchScore":   assignment.MatchScore,
		"poolSource":   from,
	})

	return &Output{
		AssignmentID:   assignment.ID,
		WorkItemID:     assignment.WorkItemID,
		ProviderID:     best.ProviderID,
		ProviderName:   best.ProviderName,
		MatchScore:     best.MatchScore,
		EstimatedPrice: best.EstimatedPrice,
		Reasons:        best.Reasons,
		Warnings:       best.Warnings,
		Status:         assignment.Status,
		AssignedAt:     assignment.CreatedAt.Format(time.RFC3339),
		PoolSource:     from,
	}, nil
}

func (h *Handler) persist(ctx context.Context, a models.Assignment) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO provider_assignments (
			id, work_item_id, provider_id, match_score, estimated_price, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.WorkItemID, a.ProviderID, a.MatchScore, a.EstimatedPrice, a.Status, a.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			metrics.AutoAssignOutcomes.WithLabelValues(OutcomeDuplicate).Inc()
			return fmt.Errorf("%w: %s", ErrDuplicateAssignment, a.WorkItemID)
		}
		return fmt.Errorf("%w: insert failed: %v", ErrAssignmentInsertFailed, err)
	}

	// Audit failures never undo the assignment.
	details, err := json.Marshal(map[string]interface{}{
		"workItemId":     a.WorkItemID,
		"providerId":     a.ProviderID,
		"matchScore":     a.MatchScore,
		"estimatedPrice": a.EstimatedPrice,
	})
	if err != nil {
		details = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"provider_assigned", "provider_assignment", a.ID, string(details), a.CreatedAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":        err,
			"assignmentId": a.ID,
		})
	}
	return nil
}

// toStandardError maps domain failures onto the BPMN error catalogue.
func toStandardError(err error) *errors.StandardError {
	var (
		stdErr  *errors.StandardError
		qualErr *matching.QualificationError
	)
	switch {
	case stderrors.As(err, &stdErr):
		return stdErr
	case stderrors.As(err, &qualErr):
		var bestScore interface{}
		if qualErr.BestMatch != nil {
			bestScore = qualErr.BestMatch.MatchScore
		}
		return errors.NewNoQualifyingCandidateError(err.Error()).
			WithMetadata("bestScore", bestScore).
			WithMetadata("minScore", qualErr.MinScore)
	case stderrors.Is(err, ErrDuplicateAssignment):
		return errors.NewDuplicateAssignmentError(strings.TrimPrefix(err.Error(), ErrDuplicateAssignment.Error()+": "))
	case stderrors.Is(err, ErrAssignmentInsertFailed):
		return errors.NewAssignmentInsertFailedError(err)
	case stderrors.Is(err, ErrMissingWorkItem):
		return errors.NewInputValidationError(err.Error())
	case stderrors.Is(err, ErrInvalidMinScore):
		return errors.NewInputValidationError(err.Error())
	case stderrors.Is(err, models.ErrInvalidCriteria):
		return errors.NewInvalidCriteriaError(err.Error())
	case stderrors.Is(err, roster.ErrRosterTimeout):
		return errors.NewRosterTimeoutError(err)
	case stderrors.Is(err, roster.ErrRosterQueryFailed):
		return errors.NewRosterQueryFailedError(err)
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
