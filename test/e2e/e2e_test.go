//go:build e2e

// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delegation-workers/internal/common/config"
	"delegation-workers/internal/common/database"
	"delegation-workers/internal/common/logger"
	"delegation-workers/internal/matching"
	"delegation-workers/internal/models"
	"delegation-workers/internal/roster"

	ae "delegation-workers/internal/workers/evaluation/aggregate-evaluation"
	aap "delegation-workers/internal/workers/matching/auto-assign-provider"
	fpm "delegation-workers/internal/workers/matching/find-provider-matches"
)

// Runs against the docker-compose Postgres and Redis:
//
//	go test -tags e2e ./test/e2e/...

type env struct {
	cfg    *config.Config
	db     *sql.DB
	source *roster.CachedSource
	engine *matching.Engine
	log    logger.Logger
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	cfg, err := config.LoadFromFile("../../configs/config.yaml")
	require.NoError(t, err)

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")
	t.Cleanup(func() { pg.Close() })

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "Redis client creation failed")
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")
	t.Cleanup(func() { rdb.Close() })

	ddl, err := os.ReadFile("../../migrations/001_init.sql")
	require.NoError(t, err)
	_, err = pg.DB.ExecContext(ctx, string(ddl))
	require.NoError(t, err, "migration failed")

	log := logger.NewTestLogger(t)
	e := &env{
		cfg:    cfg,
		db:     pg.DB,
		source: roster.NewCachedSource(roster.NewPostgresSource(pg.DB), rdb.Client, time.Minute, log),
		engine: matching.NewEngine(log),
		log:    log,
	}
	e.seed(t)
	require.NoError(t, e.source.Invalidate(ctx))
	return e
}

func (e *env) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	for _, stmt := range []string{
		`DELETE FROM audit_log WHERE resource_type = 'provider_assignment'`,
		`DELETE FROM provider_assignments WHERE work_item_id LIKE 'e2e-%'`,
		`DELETE FROM provider_evaluations WHERE provider_id LIKE 'e2e-%'`,
		`DELETE FROM providers WHERE id LIKE 'e2e-%'`,
	} {
		_, err := e.db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	now := time.Now().UTC()
	providers := []struct {
		id, name, experience, specialties, availability, status string
		rating, score                                           float64
		total, completed                                        int
	}{
		{"e2e-001", "Ana Souza", "senior", `["civil"]`, "immediate", "approved", 4.8, 88, 20, 19},
		{"e2e-002", "Bruno Lima", "senior", `["tributario"]`, "week", "approved", 3.75, 75, 3, 3},
		{"e2e-003", "Carla Mendes", "pleno", `["civil"]`, "flexible", "approved", 4.2, 60, 8, 8},
		{"e2e-004", "Diego Rocha", "especialista", `["civil"]`, "immediate", "pending", 4.9, 0, 0, 0},
	}
	for _, p := range providers {
		_, err := e.db.ExecContext(ctx, `
			INSERT INTO providers (id, name, email, experience_level, specialties, quality_rating,
				total_jobs, completed_jobs, availability, last_active_at, status, evaluation_score)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			p.id, p.name, p.id+"@example.com", p.experience, p.specialties, p.rating,
			p.total, p.completed, p.availability, now, p.status, p.score,
		)
		require.NoError(t, err)
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

// ==========================
// Roster-backed matching
// ==========================

func TestE2E_FindMatchesFromRoster(t *testing.T) {
	e := setup(t)
	handler := fpm.NewHandler(fpm.LoadConfig(), e.engine, e.source, nil, e.log)

	output, err := handler.Execute(context.Background(), &fpm.Input{Criteria: civilCriteria()})

	require.NoError(t, err)
	assert.Equal(t, roster.PoolFromRoster, output.PoolSource)
	ids := make([]string, 0, len(output.Matches))
	for _, m := range output.Matches {
		ids = append(ids, m.ProviderID)
	}
	assert.Contains(t, ids, "e2e-001")
	assert.Contains(t, ids, "e2e-002")
	assert.NotContains(t, ids, "e2e-003", "below the evaluation minimum")
	assert.NotContains(t, ids, "e2e-004", "not approved")
	assert.Equal(t, "e2e-001", output.BestMatch.ProviderID)
}

func TestE2E_AutoAssignPersistsOnce(t *testing.T) {
	e := setup(t)
	handler := aap.NewHandler(aap.LoadConfig(), e.engine, e.source, e.db, nil, e.log)
	input := &aap.Input{WorkItemID: "e2e-case-1", Criteria: civilCriteria()}

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "e2e-001", output.ProviderID)

	var stored string
	require.NoError(t, e.db.QueryRow(
		`SELECT provider_id FROM provider_assignments WHERE id = $1`, output.AssignmentID,
	).Scan(&stored))
	assert.Equal(t, "e2e-001", stored)

	_, err = handler.Execute(context.Background(), input)
	require.Error(t, err)
	assert.ErrorIs(t, err, aap.ErrDuplicateAssignment)
}

func TestE2E_EvaluationPromotesProviderIntoRoster(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	filter := roster.Filter{LegalArea: "civil", MinEvaluationScore: 70}

	before, err := e.source.ListCandidates(ctx, filter)
	require.NoError(t, err)
	assert.NotContains(t, candidateIDs(before), "e2e-003")

	handler := ae.NewHandler(ae.LoadConfig(), e.db, e.source, nil, e.log)
	output, err := handler.Execute(ctx, &ae.Input{
		ProviderID: "e2e-003",
		Items: []models.EvaluationItem{
			{Technical: 85, Argumentation: 80, Formatting: 90},
			{Technical: 78, Argumentation: 82, Formatting: 88},
		},
	})
	require.NoError(t, err)
	assert.True(t, output.Approved)
	assert.True(t, output.Persisted)

	after, err := e.source.ListCandidates(ctx, filter)
	require.NoError(t, err)
	assert.Contains(t, candidateIDs(after), "e2e-003")
}

func TestE2E_PassingEvaluationApprovesPendingProvider(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	filter := roster.Filter{LegalArea: "civil", MinEvaluationScore: 70}

	handler := ae.NewHandler(ae.LoadConfig(), e.db, e.source, nil, e.log)
	_, err := handler.Execute(ctx, &ae.Input{
		ProviderID: "e2e-004",
		Items:      []models.EvaluationItem{{Technical: 90, Argumentation: 85, Formatting: 95}},
	})
	require.NoError(t, err)

	var status string
	require.NoError(t, e.db.QueryRowContext(ctx, `SELECT status FROM providers WHERE id = $1`, "e2e-004").Scan(&status))
	assert.Equal(t, models.ProviderStatusApproved, status)

	after, err := e.source.ListCandidates(ctx, filter)
	require.NoError(t, err)
	assert.Contains(t, candidateIDs(after), "e2e-004")
}

func candidateIDs(pool []models.Candidate) []string {
	ids := make([]string, 0, len(pool))
	for _, c := range pool {
		ids = append(ids, c.ID)
	}
	return ids
}
