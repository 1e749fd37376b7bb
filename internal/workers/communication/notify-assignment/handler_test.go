// internal/workers/communication/notify-assignment/handler_test.go
package notifyassignment

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delegation-workers/internal/common/errors"
	"delegation-workers/internal/common/logger"
	"delegation-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{}, nil
}

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{}, nil
}

func createTestInput(urgency models.UrgencyTier) *Input {
	return &Input{
		AssignmentID:   "asg-001",
		WorkItemID:     "case-2026-0042",
		ProviderID:     "prov-001",
		ServiceType:    "petition",
		Urgency:        urgency,
		EstimatedPrice: 1440,
	}
}

func expectContact(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT name, email, phone FROM providers").
		WithArgs("prov-001").
		WillReturnRows(sqlmock.NewRows([]string{"name", "email", "phone"}).
			AddRow("Ana Souza", "ana@example.com", "+5511999990000"))
}

func newTestHandler(t *testing.T, cfg *Config, email *fakeSES, sms *fakeSNS) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	handler := NewHandler(cfg, db, email, sms, nil, logger.NewTestLogger(t))
	handler.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return handler, mock
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_EmailOnlyForMediumUrgency(t *testing.T) {
	email, sms := &fakeSES{}, &fakeSNS{}
	handler, mock := newTestHandler(t, LoadConfig(), email, sms)
	expectContact(mock)

	output, err := handler.Execute(context.Background(), createTestInput(models.UrgencyMedium))

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, []string{ChannelEmail}, output.Channels)
	assert.Equal(t, "2026-03-10T12:00:00Z", output.SentAt)
	assert.NotEmpty(t, output.NotificationID)

	require.Len(t, email.inputs, 1)
	assert.Equal(t, []string{"ana@example.com"}, email.inputs[0].Destination.ToAddresses)
	assert.Contains(t, *email.inputs[0].Message.Subject.Data, "case-2026-0042")
	body := *email.inputs[0].Message.Body.Text.Data
	assert.True(t, strings.HasPrefix(body, "Olá Ana Souza"))
	assert.Contains(t, body, "R$ 1440.00")
	assert.Empty(t, sms.inputs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_SMSForHighUrgency(t *testing.T) {
	tests := []models.UrgencyTier{models.UrgencyHigh, models.UrgencyUrgent}
	for _, urgency := range tests {
		t.Run(string(urgency), func(t *testing.T) {
			email, sms := &fakeSES{}, &fakeSNS{}
			handler, mock := newTestHandler(t, LoadConfig(), email, sms)
			expectContact(mock)

			output, err := handler.Execute(context.Background(), createTestInput(urgency))

			require.NoError(t, err)
			assert.Equal(t, StatusSent, output.Status)
			assert.Equal(t, []string{ChannelEmail, ChannelSMS}, output.Channels)
			require.Len(t, sms.inputs, 1)
			assert.Equal(t, "+5511999990000", *sms.inputs[0].PhoneNumber)
		})
	}
}

func TestHandler_Execute_AllChannelsDisabled(t *testing.T) {
	cfg := LoadConfig()
	cfg.EmailEnabled = false
	cfg.SMSEnabled = false
	handler, mock := newTestHandler(t, cfg, &fakeSES{}, &fakeSNS{})

	output, err := handler.Execute(context.Background(), createTestInput(models.UrgencyUrgent))

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
	assert.Empty(t, output.Channels)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ProviderNotFound(t *testing.T) {
	email := &fakeSES{}
	handler, mock := newTestHandler(t, LoadConfig(), email, &fakeSNS{})
	mock.ExpectQuery("SELECT name, email, phone FROM providers").
		WithArgs("prov-001").
		WillReturnRows(sqlmock.NewRows([]string{"name", "email", "phone"}))

	output, err := handler.Execute(context.Background(), createTestInput(models.UrgencyLow))

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
	assert.Empty(t, email.inputs)
}

func TestHandler_Execute_MissingEmailAddress(t *testing.T) {
	email := &fakeSES{}
	handler, mock := newTestHandler(t, LoadConfig(), email, &fakeSNS{})
	mock.ExpectQuery("SELECT name, email, phone FROM providers").
		WithArgs("prov-001").
		WillReturnRows(sqlmock.NewRows([]string{"name", "email", "phone"}).AddRow("Ana Souza", nil, nil))

	output, err := handler.Execute(context.Background(), createTestInput(models.UrgencyLow))

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
	assert.Empty(t, email.inputs)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_EmailFailureReportsFailedStatus(t *testing.T) {
	email := &fakeSES{err: fmt.Errorf("throttled")}
	sms := &fakeSNS{}
	handler, mock := newTestHandler(t, LoadConfig(), email, sms)
	expectContact(mock)

	output, err := handler.Execute(context.Background(), createTestInput(models.UrgencyUrgent))

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, output.Status)
	assert.Empty(t, sms.inputs)
}

func TestHandler_Execute_FailOnSendError(t *testing.T) {
	cfg := LoadConfig()
	cfg.FailOnSendError = true
	handler, mock := newTestHandler(t, cfg, &fakeSES{}, &fakeSNS{err: fmt.Errorf("invalid number")})
	expectContact(mock)

	output, err := handler.Execute(context.Background(), createTestInput(models.UrgencyHigh))

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, stderrors.Is(err, ErrNotificationSendFailed))

	stdErr := toStandardError(err)
	assert.Equal(t, errors.ErrCodeNotificationSendFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "channel: sms")
}

func TestHandler_Execute_MissingProviderID(t *testing.T) {
	handler, _ := newTestHandler(t, LoadConfig(), &fakeSES{}, &fakeSNS{})

	_, err := handler.Execute(context.Background(), &Input{WorkItemID: "case-2026-0042"})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInputValidation, toStandardError(err).Code)
}
