package schemas

import "time"

// EvaluationStatus is the lifecycle state of an evaluation run.
type EvaluationStatus string

const (
	StatusPending   EvaluationStatus = "pending"
	StatusRunning   EvaluationStatus = "running"
	StatusCompleted EvaluationStatus = "completed"
	StatusFailed    EvaluationStatus = "failed"
)

// Grade is the letter grade derived from the overall score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// ProbeResult is the outcome of running a single probe across all
// configured AI providers. Confidence is the percentage of providers that
// produced schema-valid output, expressed 0-100.
type ProbeResult struct {
	ProbeName  string           `json:"probe_name"`
	Model      string           `json:"model,omitempty"`
	WasValid   bool             `json:"was_valid"`
	IsTrusted  bool             `json:"is_trusted"`
	Confidence int              `json:"confidence"`
	Output     map[string]any   `json:"output"`
	AllOutputs []map[string]any `json:"all_outputs"`
}

// DimensionScore is one scored axis of AI discoverability for an
// evaluation. Persisted with upsert semantics keyed by
// (EvaluationID, DimensionName).
type DimensionScore struct {
	EvaluationID    string   `json:"evaluation_id"`
	DimensionName   string   `json:"dimension_name"`
	Score           int      `json:"score"`
	Explanation     string   `json:"explanation"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// PillarScores are the three aggregate pillar scores.
type PillarScores struct {
	Infrastructure int `json:"infrastructure"`
	Perception     int `json:"perception"`
	Commerce       int `json:"commerce"`
}

// Recommendation is one prioritized remediation suggestion generated from a
// low-scoring dimension.
type Recommendation struct {
	EvaluationID string `json:"evaluation_id"`
	Priority     int    `json:"priority"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Impact       string `json:"impact"`
	Effort       string `json:"effort"`
}

// Evaluation is the top-level record for one evaluation run. It is created
// in StatusRunning and mutated in place until it reaches a terminal state.
type Evaluation struct {
	ID                 string           `json:"id"`
	BrandID            string           `json:"brand_id"`
	Status             EvaluationStatus `json:"status"`
	OverallScore       int              `json:"overall_score"`
	Grade              Grade            `json:"grade"`
	Verdict            string           `json:"verdict"`
	StrongestDimension string           `json:"strongest_dimension"`
	WeakestDimension   string           `json:"weakest_dimension"`
	BiggestOpportunity string           `json:"biggest_opportunity"`
	StartedAt          time.Time        `json:"started_at"`
	CompletedAt        *time.Time       `json:"completed_at,omitempty"`
}

// EvaluationPatch carries the mutable fields for UpdateEvaluation. Nil
// pointers leave the stored value untouched.
type EvaluationPatch struct {
	Status             *EvaluationStatus
	OverallScore       *int
	Grade              *Grade
	Verdict            *string
	StrongestDimension *string
	WeakestDimension   *string
	BiggestOpportunity *string
	CompletedAt        *time.Time
}
