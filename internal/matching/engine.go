package matching

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"delegation-workers/internal/common/logger"
	"delegation-workers/internal/models"

	"github.com/sourcegraph/conc/iter"
)

const (
	// MinimumMatchScore is exclusive: a result must score strictly above it.
	MinimumMatchScore         = 0.3
	MaxMatches                = 10
	DefaultAutoAssignMinScore = 0.7
	DefaultParallelThreshold  = 64
)

var ErrNoQualifyingCandidate = errors.New("NO_QUALIFYING_CANDIDATE")

// QualificationError reports an auto-assignment that found no candidate at or above MinScore.
// BestMatch is nil when no candidate cleared the matching floor at all.
type QualificationError struct {
	MinScore  float64
	BestMatch *models.MatchResult
}

func (e *QualificationError) Error() string {
	if e.BestMatch == nil {
		return fmt.Sprintf("%s: no candidate scored above %.2f", ErrNoQualifyingCandidate, MinimumMatchScore)
	}
	return fmt.Sprintf("%s: best candidate %s scored %.4f, minimum is %.2f",
		ErrNoQualifyingCandidate, e.BestMatch.ProviderID, e.BestMatch.MatchScore, e.MinScore)
}

func (e *QualificationError) Unwrap() error {
	return ErrNoQualifyingCandidate
}

type Engine struct {
	logger            logger.Logger
	parallelThreshold int
}

type Option func(*Engine)

// WithParallelThreshold scores pools of at least n candidates concurrently. n <= 0 disables it.
func WithParallelThreshold(n int) Option {
	return func(e *Engine) {
		e.parallelThreshold = n
	}
}

func NewEngine(log logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		logger:            log,
		parallelThreshold: DefaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type scoredCandidate struct {
	result models.MatchResult
	err    error
}

// FindMatches ranks the pool against the criteria. Invalid candidates are skipped and logged.
func (e *Engine) FindMatches(cr models.Criteria, pool []models.Candidate, now time.Time) (*models.MatchingOutcome, error) {
	if err := cr.Validate(); err != nil {
		return nil, err
	}

	outcome := &models.MatchingOutcome{
		TotalCandidates: len(pool),
		Matches:         []models.MatchResult{},
		Criteria:        cr,
	}
	if len(pool) == 0 {
		return outcome, nil
	}

	qualifying := make([]models.MatchResult, 0, len(pool))
	for _, sc := range e.scoreAll(cr, pool, now) {
		if sc.err != nil {
			outcome.SkippedCandidates++
			e.logger.Warn("skipping invalid candidate", map[string]interface{}{
				"candidateId": sc.result.ProviderID,
				"error":       sc.err.Error(),
			})
			continue
		}
		if sc.result.MatchScore > MinimumMatchScore {
			qualifying = append(qualifying, sc.result)
		}
	}

	sort.SliceStable(qualifying, func(i, j int) bool {
		return qualifying[i].MatchScore > qualifying[j].MatchScore
	})
	if len(qualifying) > MaxMatches {
		qualifying = qualifying[:MaxMatches]
	}

	outcome.Matches = qualifying
	if len(qualifying) > 0 {
		best := qualifying[0]
		outcome.BestMatch = &best

		var sum float64
		for _, m := range qualifying {
			sum += m.MatchScore
		}
		outcome.AverageScore = sum / float64(len(qualifying))
	}

	return outcome, nil
}

// AutoAssignBestMatch returns the best match if it reaches minScore. A non-positive minScore means DefaultAutoAssignMinScore.
func (e *Engine) AutoAssignBestMatch(cr models.Criteria, pool []models.Candidate, now time.Time, minScore float64) (*models.MatchResult, error) {
	if minScore <= 0 {
		minScore = DefaultAutoAssignMinScore
	}

	outcome, err := e.FindMatches(cr, pool, now)
	if err != nil {
		return nil, err
	}

	if outcome.BestMatch == nil || outcome.BestMatch.MatchScore < minScore {
		return nil, &QualificationError{MinScore: minScore, BestMatch: outcome.BestMatch}
	}

	return outcome.BestMatch, nil
}

// scoreAll keeps pool order so the stable sort downstream sees the original sequence.
func (e *Engine) scoreAll(cr models.Criteria, pool []models.Candidate, now time.Time) []scoredCandidate {
	score := func(c *models.Candidate) scoredCandidate {
		if err := c.Validate(); err != nil {
			return scoredCandidate{result: models.MatchResult{ProviderID: c.ID, ProviderName: c.Name}, err: err}
		}
		return scoredCandidate{result: ComputeMatch(*c, cr, now)}
	}

	if e.parallelThreshold > 0 && len(pool) >= e.parallelThreshold {
		return iter.Map(pool, score)
	}

	out := make([]scoredCandidate, len(pool))
	for i := range pool {
		out[i] = score(&pool[i])
	}
	return out
}
