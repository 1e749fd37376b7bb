package roster

import (
	"context"
	"fmt"

	"delegation-workers/internal/models"
)

const (
	PoolFromVariables = "variables"
	PoolFromRoster    = "roster"
)

// ResolvePool uses explicit when it was supplied at all, even empty, and
// falls back to src otherwise. The second result names where the pool came from.
func ResolvePool(ctx context.Context, src Source, explicit []models.Candidate, f Filter) ([]models.Candidate, string, error) {
	if explicit != nil {
		return explicit, PoolFromVariables, nil
	}
	if src == nil {
		return nil, PoolFromRoster, fmt.Errorf("%w: no roster source configured", ErrRosterQueryFailed)
	}

	pool, err := src.ListCandidates(ctx, f)
	if err != nil {
		return nil, PoolFromRoster, err
	}
	return pool, PoolFromRoster, nil
}
