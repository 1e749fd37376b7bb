// internal/workers/evaluation/judge-submission/handler.go
package judgesubmission

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"

	"delegation-workers/internal/common/errors"
	"delegation-workers/internal/common/logger"
	"delegation-workers/internal/common/metrics"
	"delegation-workers/internal/common/observability"
	"delegation-workers/internal/common/validation"
	"delegation-workers/internal/judge"
)

const (
	TaskType = "judge-submission"
)

var fallbackDescriptions = map[string]string{
	FallbackReasonTimeout: "tempo de avaliação esgotado",
	FallbackReasonFailure: "falha no serviço de avaliação",
}

type Handler struct {
	config       *Config
	judge        judge.Judge
	validator    *validation.Validator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, j judge.Judge, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		judge:        j,
		validator:    validator,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
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
	span.SetAttributes(attribute.Bool("fallback", output.Fallback))

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Answer) == "" {
		return nil, errors.NewInputValidationError("answer is required")
	}

	judgeCtx := ctx
	if h.config.JudgeTimeout > 0 {
		var cancel context.CancelFunc
		judgeCtx, cancel = context.WithTimeout(ctx, h.config.JudgeTimeout)
		defer cancel()
	}

	item, err := h.judge.Evaluate(judgeCtx, judge.Submission{
		ProviderID: input.ProviderID,
		TestIndex:  input.TestIndex,
		LegalArea:  input.LegalArea,
		Question:   input.Question,
		Rubric:     input.Rubric,
		Answer:     input.Answer,
	})
	if err != nil {
		if !h.config.FallbackEnabled {
			return nil, err
		}
		return h.fallback(input, err), nil
	}

	h.logger.Info("submission judged", map[string]interface{}{
		"providerId":    input.ProviderID,
		"testIndex":     input.TestIndex,
		"technical":     item.Technical,
		"argumentation": item.Argumentation,
		"formatting":    item.Formatting,
	})

	return &Output{
		ProviderID: input.ProviderID,
		TestIndex:  input.TestIndex,
		Item:       *item,
	}, nil
}

// fallback substitutes the neutral item for a submission the judge could not score.
func (h *Handler) fallback(input *Input, cause error) *Output {
	reason := FallbackReasonFailure
	if stderrors.Is(cause, judge.ErrJudgeTimeout) {
		reason = FallbackReasonTimeout
	}

	h.logger.Warn("judge failed, using fallback item", map[string]interface{}{
		"providerId": input.ProviderID,
		"testIndex":  input.TestIndex,
		"reason":     reason,
		"error":      cause.Error(),
		"fallback":   true,
	})
	metrics.JudgeFallbacks.WithLabelValues(reason).Inc()

	return &Output{
		ProviderID:     input.ProviderID,
		TestIndex:      input.TestIndex,
		Item:           judge.FallbackItem(fallbackDescriptions[reason]),
		Fallback:       true,
		FallbackReason: reason,
	}
}

// toStandardError maps domain failures onto the BPMN error catalogue.
func toStandardError(err error) *errors.StandardError {
	var stdErr *errors.StandardError
	switch {
	case stderrors.As(err, &stdErr):
		return stdErr
	case stderrors.Is(err, judge.ErrJudgeTimeout):
		return errors.NewJudgeTimeoutError(err)
	case stderrors.Is(err, judge.ErrJudgeFailed):
		return errors.NewJudgeFailedError(err)
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
