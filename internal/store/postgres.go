// File: internal/store/postgres.go
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/probeworks/aidi/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DBPool abstracts the pgxpool.Pool so tests can substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists evaluations, dimension scores, and recommendations
// in PostgreSQL. Dimension scores use upsert semantics keyed by
// (evaluation_id, dimension_name).
type PostgresStore struct {
	pool DBPool
	log  *zap.Logger
}

// NewPostgresStore creates a store instance and verifies the connection.
func NewPostgresStore(ctx context.Context, pool DBPool, logger *zap.Logger) (*PostgresStore, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// Migrate creates the evaluation tables when they do not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id TEXT PRIMARY KEY,
			brand_id TEXT NOT NULL,
			status TEXT NOT NULL,
			overall_score INT NOT NULL DEFAULT 0,
			grade TEXT NOT NULL DEFAULT '',
			verdict TEXT NOT NULL DEFAULT '',
			strongest_dimension TEXT NOT NULL DEFAULT '',
			weakest_dimension TEXT NOT NULL DEFAULT '',
			biggest_opportunity TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS dimension_scores (
			evaluation_id TEXT NOT NULL,
			dimension_name TEXT NOT NULL,
			score INT NOT NULL,
			explanation TEXT NOT NULL DEFAULT '',
			recommendations JSONB NOT NULL DEFAULT '[]',
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (evaluation_id, dimension_name)
		);`,
		`CREATE TABLE IF NOT EXISTS recommendations (
			evaluation_id TEXT NOT NULL,
			priority INT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			impact TEXT NOT NULL DEFAULT '',
			effort TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		);`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// CreateEvaluation inserts a new evaluation row.
func (s *PostgresStore) CreateEvaluation(ctx context.Context, eval schemas.Evaluation) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO evaluations (id, brand_id, status, overall_score, grade, verdict,
			strongest_dimension, weakest_dimension, biggest_opportunity, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`, eval.ID, eval.BrandID, string(eval.Status), eval.OverallScore, string(eval.Grade),
		eval.Verdict, eval.StrongestDimension, eval.WeakestDimension, eval.BiggestOpportunity,
		eval.StartedAt.UTC(), nullableTime(eval.CompletedAt))
	if err != nil {
		return fmt.Errorf("failed to insert evaluation: %w", err)
	}
	return nil
}

// GetEvaluation fetches an evaluation by ID.
func (s *PostgresStore) GetEvaluation(ctx context.Context, id string) (schemas.Evaluation, error) {
	var (
		eval        schemas.Evaluation
		status      string
		grade       string
		completedAt *time.Time
	)

	err := s.pool.QueryRow(ctx, `
		SELECT id, brand_id, status, overall_score, grade, verdict,
			strongest_dimension, weakest_dimension, biggest_opportunity, started_at, completed_at
		FROM evaluations WHERE id = $1;
	`, id).Scan(&eval.ID, &eval.BrandID, &status, &eval.OverallScore, &grade, &eval.Verdict,
		&eval.StrongestDimension, &eval.WeakestDimension, &eval.BiggestOpportunity,
		&eval.StartedAt, &completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schemas.Evaluation{}, fmt.Errorf("evaluation with id '%s' not found", id)
		}
		return schemas.Evaluation{}, err
	}

	eval.Status = schemas.EvaluationStatus(status)
	eval.Grade = schemas.Grade(grade)
	eval.CompletedAt = completedAt
	return eval, nil
}

// UpdateEvaluation applies the non-nil fields of the patch.
func (s *PostgresStore) UpdateEvaluation(ctx context.Context, id string, patch schemas.EvaluationPatch) error {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.OverallScore != nil {
		add("overall_score", *patch.OverallScore)
	}
	if patch.Grade != nil {
		add("grade", string(*patch.Grade))
	}
	if patch.Verdict != nil {
		add("verdict", *patch.Verdict)
	}
	if patch.StrongestDimension != nil {
		add("strongest_dimension", *patch.StrongestDimension)
	}
	if patch.WeakestDimension != nil {
		add("weakest_dimension", *patch.WeakestDimension)
	}
	if patch.BiggestOpportunity != nil {
		add("biggest_opportunity", *patch.BiggestOpportunity)
	}
	if patch.CompletedAt != nil {
		add("completed_at", patch.CompletedAt.UTC())
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE evaluations SET %s WHERE id = $%d;", strings.Join(sets, ", "), len(args))

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update evaluation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("evaluation with id '%s' not found", id)
	}
	return nil
}

// UpsertDimensionScore inserts or overwrites the score for
// (evaluation_id, dimension_name).
func (s *PostgresStore) UpsertDimensionScore(ctx context.Context, score schemas.DimensionScore) error {
	recs, err := json.Marshal(score.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal dimension recommendations: %w", err)
	}
	if score.Recommendations == nil {
		recs = []byte("[]")
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO dimension_scores (evaluation_id, dimension_name, score, explanation, recommendations, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (evaluation_id, dimension_name) DO UPDATE SET
			score = EXCLUDED.score,
			explanation = EXCLUDED.explanation,
			recommendations = EXCLUDED.recommendations,
			updated_at = EXCLUDED.updated_at;
	`, score.EvaluationID, score.DimensionName, score.Score, score.Explanation, recs, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert dimension score: %w", err)
	}
	return nil
}

// CreateRecommendation inserts one remediation suggestion.
func (s *PostgresStore) CreateRecommendation(ctx context.Context, rec schemas.Recommendation) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO recommendations (evaluation_id, priority, title, description, category, impact, effort, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`, rec.EvaluationID, rec.Priority, rec.Title, rec.Description, rec.Category, rec.Impact, rec.Effort, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert recommendation: %w", err)
	}
	return nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

var _ schemas.Store = (*PostgresStore)(nil)
