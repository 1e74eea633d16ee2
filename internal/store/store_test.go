// File: internal/store/store_test.go
package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/probeworks/aidi/api/schemas"
)

// flexibleSQLMatcher builds a whitespace-insensitive regex for SQL mock
// expectations.
func flexibleSQLMatcher(sql string) string {
	trimmed := strings.TrimSpace(sql)
	return regexp.MustCompile(`\s+`).ReplaceAllString(regexp.QuoteMeta(trimmed), `\s+`)
}

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mock.ExpectPing()
	s, err := NewPostgresStore(context.Background(), mock, zap.NewNop())
	require.NoError(t, err)
	return s, mock
}

func TestNewPostgresStore_PingFailure(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	_, err = NewPostgresStore(context.Background(), mock, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping database")
}

func TestPostgresStore_CreateEvaluation(t *testing.T) {
	s, mock := newMockStore(t)

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(flexibleSQLMatcher("INSERT INTO evaluations")).
		WithArgs("eval-1", "brand-1", "running", 0, "", "", "", "", "", started, nil).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.CreateEvaluation(context.Background(), schemas.Evaluation{
		ID:        "eval-1",
		BrandID:   "brand-1",
		Status:    schemas.StatusRunning,
		StartedAt: started,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetEvaluation(t *testing.T) {
	s, mock := newMockStore(t)

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	completed := started.Add(40 * time.Second)
	rows := pgxmock.NewRows([]string{
		"id", "brand_id", "status", "overall_score", "grade", "verdict",
		"strongest_dimension", "weakest_dimension", "biggest_opportunity", "started_at", "completed_at",
	}).AddRow("eval-1", "brand-1", "completed", 74, "C", "Acme has average AI visibility with significant improvement potential",
		"Knowledge Graphs", "Shipping & Freight", "Shipping & Freight", started, &completed)

	mock.ExpectQuery(flexibleSQLMatcher("SELECT id, brand_id, status")).
		WithArgs("eval-1").
		WillReturnRows(rows)

	eval, err := s.GetEvaluation(context.Background(), "eval-1")
	require.NoError(t, err)
	assert.Equal(t, schemas.StatusCompleted, eval.Status)
	assert.Equal(t, schemas.GradeC, eval.Grade)
	assert.Equal(t, 74, eval.OverallScore)
	require.NotNil(t, eval.CompletedAt)
	assert.Equal(t, completed, *eval.CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetEvaluation_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(flexibleSQLMatcher("SELECT id, brand_id, status")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetEvaluation(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPostgresStore_UpdateEvaluation_PartialPatch(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(flexibleSQLMatcher("UPDATE evaluations SET status = $1, overall_score = $2 WHERE id = $3")).
		WithArgs("completed", 88, "eval-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	status := schemas.StatusCompleted
	score := 88
	err := s.UpdateEvaluation(context.Background(), "eval-1", schemas.EvaluationPatch{
		Status:       &status,
		OverallScore: &score,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateEvaluation_EmptyPatchIsNoop(t *testing.T) {
	s, mock := newMockStore(t)

	err := s.UpdateEvaluation(context.Background(), "eval-1", schemas.EvaluationPatch{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateEvaluation_MissingRow(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(flexibleSQLMatcher("UPDATE evaluations SET status = $1 WHERE id = $2")).
		WithArgs("failed", "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	status := schemas.StatusFailed
	err := s.UpdateEvaluation(context.Background(), "missing", schemas.EvaluationPatch{Status: &status})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPostgresStore_UpsertDimensionScore(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(flexibleSQLMatcher("INSERT INTO dimension_scores")).
		WithArgs("eval-1", "knowledge_graphs", 63, "KG probe succeeded. Confidence: 100%.", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.UpsertDimensionScore(context.Background(), schemas.DimensionScore{
		EvaluationID:  "eval-1",
		DimensionName: "knowledge_graphs",
		Score:         63,
		Explanation:   "KG probe succeeded. Confidence: 100%.",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateRecommendation(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(flexibleSQLMatcher("INSERT INTO recommendations")).
		WithArgs("eval-1", 1, "Implement Schema.org Markup", "Add structured data markup to your website to help AI models understand your content better.",
			"technical", "high", "medium", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.CreateRecommendation(context.Background(), schemas.Recommendation{
		EvaluationID: "eval-1",
		Priority:     1,
		Title:        "Implement Schema.org Markup",
		Description:  "Add structured data markup to your website to help AI models understand your content better.",
		Category:     "technical",
		Impact:       "high",
		Effort:       "medium",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(flexibleSQLMatcher("CREATE TABLE IF NOT EXISTS evaluations")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(flexibleSQLMatcher("CREATE TABLE IF NOT EXISTS dimension_scores")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(flexibleSQLMatcher("CREATE TABLE IF NOT EXISTS recommendations")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	eval := schemas.Evaluation{
		ID:        "eval-1",
		BrandID:   "brand-1",
		Status:    schemas.StatusRunning,
		StartedAt: time.Now(),
	}
	require.NoError(t, m.CreateEvaluation(ctx, eval))
	assert.Error(t, m.CreateEvaluation(ctx, eval), "duplicate IDs are rejected")

	status := schemas.StatusCompleted
	score := 81
	grade := schemas.GradeB
	completedAt := time.Now()
	require.NoError(t, m.UpdateEvaluation(ctx, "eval-1", schemas.EvaluationPatch{
		Status:       &status,
		OverallScore: &score,
		Grade:        &grade,
		CompletedAt:  &completedAt,
	}))

	got, err := m.GetEvaluation(ctx, "eval-1")
	require.NoError(t, err)
	assert.Equal(t, schemas.StatusCompleted, got.Status)
	assert.Equal(t, 81, got.OverallScore)
	assert.Equal(t, schemas.GradeB, got.Grade)
	assert.Equal(t, "brand-1", got.BrandID, "patch leaves untouched fields alone")
	require.NotNil(t, got.CompletedAt)

	_, err = m.GetEvaluation(ctx, "missing")
	assert.Error(t, err)
	assert.Error(t, m.UpdateEvaluation(ctx, "missing", schemas.EvaluationPatch{Status: &status}))
}

func TestMemoryStore_DimensionScoreUpsert(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	first := schemas.DimensionScore{EvaluationID: "eval-1", DimensionName: "semantic_clarity", Score: 45}
	require.NoError(t, m.UpsertDimensionScore(ctx, first))

	second := first
	second.Score = 65
	require.NoError(t, m.UpsertDimensionScore(ctx, second))

	scores := m.DimensionScores("eval-1")
	require.Len(t, scores, 1)
	assert.Equal(t, 65, scores[0].Score)
}

func TestMemoryStore_RecommendationsKeepOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	for i, title := range []string{"first", "second", "third"} {
		require.NoError(t, m.CreateRecommendation(ctx, schemas.Recommendation{
			EvaluationID: "eval-1",
			Priority:     i + 1,
			Title:        title,
		}))
	}

	recs := m.Recommendations("eval-1")
	require.Len(t, recs, 3)
	assert.Equal(t, "first", recs[0].Title)
	assert.Equal(t, "third", recs[2].Title)
	assert.Empty(t, m.Recommendations("other"))
}
