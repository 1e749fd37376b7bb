package roster

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"delegation-workers/internal/models"
)

const listCandidatesQuery = `
		SELECT id, name, experience_level, specialties, quality_rating,
		       total_jobs, completed_jobs, availability, last_active_at
		FROM providers
		WHERE status = 'approved' AND evaluation_score >= $1
		ORDER BY id
		LIMIT $2`

type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) ListCandidates(ctx context.Context, f Filter) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, listCandidatesQuery, f.MinEvaluationScore, f.limit())
	if err != nil {
		return nil, wrapQueryError(ctx, err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var (
			c            models.Candidate
			experience   string
			specialties  []byte
			availability sql.NullString
			lastActive   sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.Name, &experience, &specialties, &c.QualityRating,
			&c.TotalJobs, &c.CompletedJobs, &availability, &lastActive); err != nil {
			return nil, wrapQueryError(ctx, err)
		}

		c.Experience = models.ExperienceLevel(experience)
		c.Availability = models.AvailabilityUnspecified
		if availability.Valid && availability.String != "" {
			c.Availability = models.AvailabilityTier(availability.String)
		}
		if lastActive.Valid {
			t := lastActive.Time
			c.LastActive = &t
		}
		if len(specialties) > 0 {
			if err := json.Unmarshal(specialties, &c.Specialties); err != nil {
				return nil, fmt.Errorf("%w: provider %s specialties: %v", ErrRosterQueryFailed, c.ID, err)
			}
		}

		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError(ctx, err)
	}

	return candidates, nil
}
