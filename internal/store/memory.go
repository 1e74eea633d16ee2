// File: internal/store/memory.go
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/probeworks/aidi/api/schemas"
)

// MemoryStore is an in-process Store for tests and keyless CLI runs. All
// methods are safe for concurrent use.
type MemoryStore struct {
	mu              sync.RWMutex
	evaluations     map[string]schemas.Evaluation
	dimensionScores map[string]map[string]schemas.DimensionScore
	recommendations map[string][]schemas.Recommendation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		evaluations:     make(map[string]schemas.Evaluation),
		dimensionScores: make(map[string]map[string]schemas.DimensionScore),
		recommendations: make(map[string][]schemas.Recommendation),
	}
}

func (m *MemoryStore) CreateEvaluation(_ context.Context, eval schemas.Evaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.evaluations[eval.ID]; exists {
		return fmt.Errorf("evaluation with id '%s' already exists", eval.ID)
	}
	m.evaluations[eval.ID] = eval
	return nil
}

func (m *MemoryStore) GetEvaluation(_ context.Context, id string) (schemas.Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	eval, ok := m.evaluations[id]
	if !ok {
		return schemas.Evaluation{}, fmt.Errorf("evaluation with id '%s' not found", id)
	}
	return eval, nil
}

func (m *MemoryStore) UpdateEvaluation(_ context.Context, id string, patch schemas.EvaluationPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	eval, ok := m.evaluations[id]
	if !ok {
		return fmt.Errorf("evaluation with id '%s' not found", id)
	}

	if patch.Status != nil {
		eval.Status = *patch.Status
	}
	if patch.OverallScore != nil {
		eval.OverallScore = *patch.OverallScore
	}
	if patch.Grade != nil {
		eval.Grade = *patch.Grade
	}
	if patch.Verdict != nil {
		eval.Verdict = *patch.Verdict
	}
	if patch.StrongestDimension != nil {
		eval.StrongestDimension = *patch.StrongestDimension
	}
	if patch.WeakestDimension != nil {
		eval.WeakestDimension = *patch.WeakestDimension
	}
	if patch.BiggestOpportunity != nil {
		eval.BiggestOpportunity = *patch.BiggestOpportunity
	}
	if patch.CompletedAt != nil {
		completedAt := *patch.CompletedAt
		eval.CompletedAt = &completedAt
	}

	m.evaluations[id] = eval
	return nil
}

func (m *MemoryStore) UpsertDimensionScore(_ context.Context, score schemas.DimensionScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	scores, ok := m.dimensionScores[score.EvaluationID]
	if !ok {
		scores = make(map[string]schemas.DimensionScore)
		m.dimensionScores[score.EvaluationID] = scores
	}
	scores[score.DimensionName] = score
	return nil
}

func (m *MemoryStore) CreateRecommendation(_ context.Context, rec schemas.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recommendations[rec.EvaluationID] = append(m.recommendations[rec.EvaluationID], rec)
	return nil
}

// DimensionScores returns the stored scores for an evaluation, in no
// particular order.
func (m *MemoryStore) DimensionScores(evaluationID string) []schemas.DimensionScore {
	m.mu.RLock()
	defer m.mu.RUnlock()
	scores := make([]schemas.DimensionScore, 0, len(m.dimensionScores[evaluationID]))
	for _, s := range m.dimensionScores[evaluationID] {
		scores = append(scores, s)
	}
	return scores
}

// Recommendations returns the stored recommendations for an evaluation in
// insertion order.
func (m *MemoryStore) Recommendations(evaluationID string) []schemas.Recommendation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := make([]schemas.Recommendation, len(m.recommendations[evaluationID]))
	copy(recs, m.recommendations[evaluationID])
	return recs
}

var _ schemas.Store = (*MemoryStore)(nil)
