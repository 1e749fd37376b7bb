package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"delegation-workers/internal/common/logger"
	"delegation-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultCacheTTL = 5 * time.Minute
	cacheKeyPrefix  = "roster:"
)

// CachedSource is a read-through Redis cache in front of another Source.
// Redis failures fall back to the wrapped source.
type CachedSource struct {
	next   Source
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSource(next Source, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedSource{next: next, client: client, ttl: ttl, logger: log}
}

func cacheKey(f Filter) string {
	return fmt.Sprintf("%s%s:%.1f:%d", cacheKeyPrefix, strings.ToLower(strings.TrimSpace(f.LegalArea)), f.MinEvaluationScore, f.limit())
}

func (s *CachedSource) ListCandidates(ctx context.Context, f Filter) ([]models.Candidate, error) {
	key := cacheKey(f)

	cached, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var candidates []models.Candidate
		if jsonErr := json.Unmarshal(cached, &candidates); jsonErr == nil {
			return candidates, nil
		}
		s.logger.Warn("discarding unreadable roster cache entry", map[string]interface{}{"key": key})
	case errors.Is(err, redis.Nil):
	default:
		s.logger.Warn("roster cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	candidates, err := s.next.ListCandidates(ctx, f)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(candidates)
	if err == nil {
		err = s.client.Set(ctx, key, payload, s.ttl).Err()
	}
	if err != nil {
		s.logger.Warn("roster cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	return candidates, nil
}

// Invalidate drops every cached roster so the next read sees fresh evaluation scores.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
