package roster

import (
	"context"
	"errors"
	"fmt"

	"delegation-workers/internal/models"
)

const DefaultLimit = 500

var (
	ErrRosterQueryFailed = errors.New("ROSTER_QUERY_FAILED")
	ErrRosterTimeout     = errors.New("ROSTER_TIMEOUT")
)

// Filter selects approved providers. LegalArea never excludes anyone; sources may use it for relevance only.
type Filter struct {
	LegalArea          string
	MinEvaluationScore float64
	Limit              int
}

func (f Filter) limit() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	return f.Limit
}

// Source supplies the candidate pool, ordered by provider id.
type Source interface {
	ListCandidates(ctx context.Context, f Filter) ([]models.Candidate, error)
}

func wrapQueryError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrRosterTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrRosterQueryFailed, err)
}
