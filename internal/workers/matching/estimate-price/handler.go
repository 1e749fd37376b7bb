// internal/workers/matching/estimate-price/handler.go
package estimateprice

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"

	"delegation-workers/internal/common/errors"
	"delegation-workers/internal/common/logger"
	"delegation-workers/internal/common/metrics"
	"delegation-workers/internal/common/observability"
	"delegation-workers/internal/common/validation"
	"delegation-workers/internal/matching"
)

const (
	TaskType = "estimate-price"
)

type Handler struct {
	config       *Config
	validator    *validation.Validator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
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

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ServiceType == "" {
		return nil, errors.NewInputValidationError("serviceType is required")
	}

	hours := matching.DefaultEstimatedHours
	if input.EstimatedHours != nil && *input.EstimatedHours > 0 {
		hours = *input.EstimatedHours
	}

	price := matching.EstimatePrice(input.ServiceType, input.LegalArea, input.Urgency, input.Experience, input.EstimatedHours)

	h.logger.Debug("price estimated", map[string]interface{}{
		"serviceType": input.ServiceType,
		"urgency":     input.Urgency,
		"experience":  input.Experience,
		"hours":       hours,
		"price":       price,
	})

	return &Output{
		EstimatedPrice: price,
		Hours:          hours,
		Currency:       h.config.Currency,
	}, nil
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
	var stdErr *errors.StandardError
	if !stderrors.As(err, &stdErr) {
		stdErr = errors.NewInternalError(err)
	}
	observability.RecordError(span, stdErr)
	metrics.RecordJobFailed(TaskType, string(stdErr.Code))
	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
