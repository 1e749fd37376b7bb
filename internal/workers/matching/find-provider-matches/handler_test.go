// internal/workers/matching/find-provider-matches/handler_test.go
package findprovidermatches

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
	"delegation-workers/internal/matching"
	"delegation-workers/internal/models"
	"delegation-workers/internal/roster"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := testNow.AddDate(0, 0, -n)
	return &t
}

type fakeRoster struct {
	pool   []models.Candidate
	err    error
	calls  int
	filter roster.Filter
}

func (f *fakeRoster) ListCandidates(ctx context.Context, filter roster.Filter) ([]models.Candidate, error) {
	f.calls++
	f.filter = filter
	return f.pool, f.err
}

func strongProvider() models.Candidate {
	return models.Candidate{
		ID:            "prov-001",
		Name:          "Ana Souza",
		Experience:    models.ExperienceSenior,
		Specialties:   []string{"civil"},
		QualityRating: 4.8,
		TotalJobs:     20,
		CompletedJobs: 19,
		Availability:  models.AvailabilityImmediate,
		LastActive:    daysAgo(0),
	}
}

// middlingProvider scores 0.655 against civil/medium/pleno.
func middlingProvider() models.Candidate {
	return models.Candidate{
		ID:            "prov-050",
		Name:          "Bruno Lima",
		Experience:    models.ExperienceSenior,
		Specialties:   []string{"tributario"},
		QualityRating: 3.75,
		TotalJobs:     3,
		CompletedJobs: 3,
		Availability:  models.AvailabilityWeek,
		LastActive:    daysAgo(10),
	}
}

func civilCriteria() models.Criteria {
	return models.Criteria{
		LegalArea:          "civil",
		ServiceType:        "petition",
		Urgency:            models.UrgencyMedium,
		RequiredExperience: models.ExperiencePleno,
	}
}

func newTestHandler(t *testing.T, source roster.Source) *Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	return NewHandler(LoadConfig(), matching.NewEngine(log), source, nil, log)
}

func createTestInput(candidates []models.Candidate) *Input {
	now := testNow
	return &Input{
		WorkItemID: "case-2026-0042",
		Criteria:   civilCriteria(),
		Candidates: candidates,
		Now:        &now,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ExplicitCandidates(t *testing.T) {
	source := &fakeRoster{}
	handler := newTestHandler(t, source)

	output, err := handler.Execute(context.Background(),
		createTestInput([]models.Candidate{middlingProvider(), strongProvider()}))

	require.NoError(t, err)
	assert.Zero(t, source.calls)
	assert.Equal(t, roster.PoolFromVariables, output.PoolSource)
	assert.Equal(t, "case-2026-0042", output.WorkItemID)
	assert.Equal(t, 2, output.TotalCandidates)
	require.Len(t, output.Matches, 2)
	assert.Equal(t, "prov-001", output.Matches[0].ProviderID)
	assert.Equal(t, "prov-050", output.Matches[1].ProviderID)
	require.NotNil(t, output.BestMatch)
	assert.Equal(t, "prov-001", output.BestMatch.ProviderID)
	assert.True(t, output.HasMatches)
	assert.InDelta(t, (1.0+0.655)/2, output.AverageScore, 1e-9)
}

func TestHandler_Execute_FallsBackToRoster(t *testing.T) {
	source := &fakeRoster{pool: []models.Candidate{strongProvider()}}
	handler := newTestHandler(t, source)

	output, err := handler.Execute(context.Background(), createTestInput(nil))

	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, "civil", source.filter.LegalArea)
	assert.Equal(t, 70.0, source.filter.MinEvaluationScore)
	assert.Equal(t, roster.PoolFromRoster, output.PoolSource)
	require.Len(t, output.Matches, 1)
}

func TestHandler_Execute_EmptyPool(t *testing.T) {
	handler := newTestHandler(t, &fakeRoster{})

	output, err := handler.Execute(context.Background(), createTestInput([]models.Candidate{}))

	require.NoError(t, err)
	assert.Equal(t, 0, output.TotalCandidates)
	assert.Empty(t, output.Matches)
	assert.NotNil(t, output.Matches)
	assert.Nil(t, output.BestMatch)
	assert.False(t, output.HasMatches)
	assert.Equal(t, 0.0, output.AverageScore)
}

func TestHandler_Execute_SkipsInvalidCandidate(t *testing.T) {
	broken := strongProvider()
	broken.ID = "prov-002"
	broken.Experience = ""

	handler := newTestHandler(t, &fakeRoster{})
	output, err := handler.Execute(context.Background(),
		createTestInput([]models.Candidate{broken, strongProvider()}))

	require.NoError(t, err)
	assert.Equal(t, 2, output.TotalCandidates)
	assert.Equal(t, 1, output.SkippedCandidates)
	require.Len(t, output.Matches, 1)
	assert.Equal(t, "prov-001", output.Matches[0].ProviderID)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_AllCandidatesInvalid(t *testing.T) {
	broken := strongProvider()
	broken.Experience = ""
	alsoBroken := strongProvider()
	alsoBroken.ID = "prov-002"
	alsoBroken.Availability = "someday"

	handler := newTestHandler(t, &fakeRoster{})
	_, err := handler.Execute(context.Background(),
		createTestInput([]models.Candidate{broken, alsoBroken}))

	assert.ErrorIs(t, err, models.ErrInvalidCandidateData)
	stdErr := toStandardError(err)
	assert.Equal(t, errors.ErrCodeInvalidCandidateData, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestHandler_Execute_InvalidCriteria(t *testing.T) {
	source := &fakeRoster{}
	handler := newTestHandler(t, source)

	input := createTestInput(nil)
	input.Criteria.Urgency = "whenever"

	_, err := handler.Execute(context.Background(), input)

	assert.ErrorIs(t, err, models.ErrInvalidCriteria)
	assert.Zero(t, source.calls, "roster must not be queried for invalid criteria")
}

func TestHandler_Execute_RosterFailure(t *testing.T) {
	source := &fakeRoster{err: fmt.Errorf("%w: context deadline exceeded", roster.ErrRosterTimeout)}
	handler := newTestHandler(t, source)

	_, err := handler.Execute(context.Background(), createTestInput(nil))

	assert.ErrorIs(t, err, roster.ErrRosterTimeout)
}

func TestToStandardError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errors.ErrorCode
	}{
		{"invalid criteria", fmt.Errorf("%w: urgency", models.ErrInvalidCriteria), errors.ErrCodeInvalidCriteria},
		{"roster timeout", fmt.Errorf("%w: slow", roster.ErrRosterTimeout), errors.ErrCodeRosterTimeout},
		{"roster failure", fmt.Errorf("%w: refused", roster.ErrRosterQueryFailed), errors.ErrCodeRosterQueryFailed},
		{"schema failure", errors.NewInputValidationError("criteria is required"), errors.ErrCodeInputValidation},
		{"unexpected", stderrors.New("boom"), errors.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toStandardError(tt.err).Code)
		})
	}
}
