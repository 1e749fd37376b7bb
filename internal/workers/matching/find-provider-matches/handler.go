// internal/workers/matching/find-provider-matches/handler.go
package findprovidermatches

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
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
	TaskType = "find-provider-matches"
)

type Handler struct {
	config       *Config
	engine       *matching.Engine
	roster       roster.Source
	validator    *validation.Validator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
	now          func() time.Time
}

func NewHandler(config *Config, engine *matching.Engine, source roster.Source, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
		roster:       source,
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
	if err := input.Criteria.Validate(); err != nil {
		return nil, err
	}

	pool, from, err := roster.ResolvePool(ctx, h.roster, input.Candidates, roster.Filter{
		LegalArea:          input.Criteria.LegalArea,
		MinEvaluationScore: h.config.MinEvaluationScore,
	})
	if err != nil {
		return nil, err
	}

	now := h.now()
	if input.Now != nil {
		now = *input.Now
	}

	outcome, err := h.engine.FindMatches(input.Criteria, pool, now)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(outcome.Matches))
	for i, m := range outcome.Matches {
		scores[i] = m.MatchScore
	}
	metrics.RecordMatches(outcome.TotalCandidates-outcome.SkippedCandidates, outcome.SkippedCandidates, scores)

	// A pool with no valid record at all is a caller error, not an honest "no match".
	if outcome.TotalCandidates > 0 && outcome.SkippedCandidates == outcome.TotalCandidates {
		return nil, fmt.Errorf("%w: all %d candidates were rejected", models.ErrInvalidCandidateData, outcome.TotalCandidates)
	}

	h.logger.Info("matches computed", map[string]interface{}{
		"workItemId":      input.WorkItemID,
		"poolSource":      from,
		"totalCandidates": outcome.TotalCandidates,
		"skipped":         outcome.SkippedCandidates,
		"matches":         len(outcome.Matches),
		"averageScore":    outcome.AverageScore,
	})

	return &Output{
		WorkItemID:        input.WorkItemID,
		TotalCandidates:   outcome.TotalCandidates,
		SkippedCandidates: outcome.SkippedCandidates,
		Matches:           outcome.Matches,
		BestMatch:         outcome.BestMatch,
		AverageScore:      outcome.AverageScore,
		HasMatches:        outcome.BestMatch != nil,
		PoolSource:        from,
	}, nil
}

// toStandardError maps domain failures onto the BPMN error catalogue.
func toStandardError(err error) *errors.StandardError {
	var stdErr *errors.StandardError
	switch {
	case stderrors.As(err, &stdErr):
		return stdErr
	case stderrors.Is(err, models.ErrInvalidCriteria):
		return errors.NewInvalidCriteriaError(err.Error())
	case stderrors.Is(err, models.ErrInvalidCandidateData):
		return errors.NewInvalidCandidateDataError(err.Error())
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
