// internal/workers/communication/notify-assignment/handler.go
package notifyassignment

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	awsclient "delegation-workers/internal/common/aws"
	"delegation-workers/internal/common/errors"
	"delegation-workers/internal/common/logger"
	"delegation-workers/internal/common/metrics"
	"delegation-workers/internal/common/observability"
	"delegation-workers/internal/common/validation"
	"delegation-workers/internal/models"
)

const (
	TaskType = "notify-assignment"
)

var (
	ErrNotificationSendFailed = stderrors.New("NOTIFICATION_SEND_FAILED")
	ErrProviderNotFound       = stderrors.New("provider not found")
)

// sendError keeps the failing channel for the error variables.
type sendError struct {
	channel string
	err     error
}

func (e *sendError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrNotificationSendFailed, e.channel, e.err)
}

func (e *sendError) Unwrap() error { return ErrNotificationSendFailed }

type Handler struct {
	config       *Config
	db           *sql.DB
	email        awsclient.EmailSender
	sms          awsclient.SMSPublisher
	validator    *validation.Validator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
	now          func() time.Time
}

// NewHandler takes nil senders for channels that are not configured.
func NewHandler(
	config *Config,
	db *sql.DB,
	email awsclient.EmailSender,
	sms awsclient.SMSPublisher,
	validator *validation.Validator,
	log logger.Logger,
) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
		email:        email,
		sms:          sms,
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
	if input.ProviderID == "" {
		return nil, errors.NewInputValidationError("providerId is required")
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		Channels:       []string{},
		SentAt:         h.now().UTC().Format(time.RFC3339),
	}

	emailOn := h.config.EmailEnabled && h.email != nil
	smsOn := h.config.SMSEnabled && h.sms != nil && wantsSMS(input.Urgency)
	if !emailOn && !smsOn {
		return output, nil
	}

	contact, err := h.lookupContact(ctx, input.ProviderID)
	if err != nil {
		h.logger.Warn("provider contact unavailable", map[string]interface{}{
			"providerId": input.ProviderID,
			"error":      err,
		})
		return output, nil
	}

	subject, body := renderMessage(input, contact)

	if emailOn && contact.Email != "" {
		if err := h.sendEmail(ctx, contact.Email, subject, body); err != nil {
			return h.sendFailed(output, &sendError{channel: ChannelEmail, err: err})
		}
		output.Channels = append(output.Channels, ChannelEmail)
	}

	if smsOn && contact.Phone != "" {
		if err := h.sendSMS(ctx, contact.Phone, subject); err != nil {
			return h.sendFailed(output, &sendError{channel: ChannelSMS, err: err})
		}
		output.Channels = append(output.Channels, ChannelSMS)
	}

	if len(output.Channels) > 0 {
		output.Status = StatusSent
	}

	h.logger.Info("assignment notification processed", map[string]interface{}{
		"assignmentId": input.AssignmentID,
		"providerId":   input.ProviderID,
		"status":       output.Status,
		"channels":     output.Channels,
	})

	return output, nil
}

func (h *Handler) sendFailed(output *Output, err *sendError) (*Output, error) {
	h.logger.Error("notification send failed", map[string]interface{}{
		"channel": err.channel,
		"error":   err.err,
	})
	if h.config.FailOnSendError {
		return nil, err
	}
	output.Status = StatusFailed
	return output, nil
}

// wantsSMS reports whether the urgency justifies a text message on top of e-mail.
func wantsSMS(u models.UrgencyTier) bool {
	return u == models.UrgencyHigh || u == models.UrgencyUrgent
}

func (h *Handler) lookupContact(ctx context.Context, providerID string) (*models.ProviderContact, error) {
	if h.db == nil {
		return nil, ErrProviderNotFound
	}

	contact := models.ProviderContact{ID: providerID}
	var email, phone sql.NullString
	err := h.db.QueryRowContext(ctx,
		`SELECT name, email, phone FROM providers WHERE id = $1`, providerID,
	).Scan(&contact.Name, &email, &phone)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, err
	}
	contact.Email = email.String
	contact.Phone = phone.String
	return &contact, nil
}

func renderMessage(input *Input, contact *models.ProviderContact) (string, string) {
	subject := fmt.Sprintf("Nova demanda atribuída: %s", input.WorkItemID)

	var b strings.Builder
	fmt.Fprintf(&b, "Olá %s,\n\n", contact.Name)
	fmt.Fprintf(&b, "Você foi designado(a) para a demanda %s.\n", input.WorkItemID)
	if input.ServiceType != "" {
		fmt.Fprintf(&b, "Serviço: %s\n", input.ServiceType)
	}
	if input.Urgency != "" {
		fmt.Fprintf(&b, "Urgência: %s\n", input.Urgency)
	}
	if input.EstimatedPrice > 0 {
		fmt.Fprintf(&b, "Valor estimado: R$ %.2f\n", input.EstimatedPrice)
	}
	if input.AssignmentID != "" {
		fmt.Fprintf(&b, "\nReferência: %s\n", input.AssignmentID)
	}
	return subject, b.String()
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.email.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	_, err := h.sms.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}

func toStandardError(err error) *errors.StandardError {
	var stdErr *errors.StandardError
	var sendErr *sendError
	switch {
	case stderrors.As(err, &stdErr):
		return stdErr
	case stderrors.As(err, &sendErr):
		return errors.NewNotificationSendFailedError(sendErr.channel, sendErr.err)
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
