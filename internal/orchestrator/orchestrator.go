// File: internal/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/probeworks/aidi/api/schemas"
	"github.com/probeworks/aidi/internal/probe"
	"github.com/probeworks/aidi/internal/scoring"
)

// Progress is one evaluation progress update.
type Progress struct {
	Step       string
	Completed  int
	Total      int
	Percentage int
}

// ProgressFunc receives progress updates during an evaluation run.
type ProgressFunc func(Progress)

// ProbeRunner abstracts the probe harness.
type ProbeRunner interface {
	Run(ctx context.Context, pctx probe.Context) []schemas.ProbeResult
}

// Deps are the collaborators an Orchestrator coordinates.
type Deps struct {
	Fetch schemas.FetchAgent
	Crawl schemas.CrawlAgent
	Probe ProbeRunner
	Store schemas.Store

	// PlaybookBoost is added to the overall score before clamping. Zero
	// for brands without a playbook.
	PlaybookBoost float64

	// Progress is optional.
	Progress ProgressFunc
}

// Orchestrator runs one complete evaluation: evidence gathering, probes,
// scoring, and persistence.
type Orchestrator struct {
	deps   Deps
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func New(deps Deps, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		deps:   deps,
		logger: logger.Named("orchestrator"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

const totalSteps = 6

func (o *Orchestrator) reportProgress(step string, completed int) {
	if o.deps.Progress == nil {
		return
	}
	o.deps.Progress(Progress{
		Step:       step,
		Completed:  completed,
		Total:      totalSteps,
		Percentage: completed * 100 / totalSteps,
	})
}

// Evaluate runs the full pipeline for a brand and returns the finished
// evaluation record. The evaluation row is created up front in running
// state; any failure past that point marks it failed before returning.
func (o *Orchestrator) Evaluate(ctx context.Context, brand schemas.Brand) (schemas.Evaluation, error) {
	eval := schemas.Evaluation{
		ID:        o.newID(),
		BrandID:   brand.ID,
		Status:    schemas.StatusRunning,
		StartedAt: o.now(),
	}
	if err := o.deps.Store.CreateEvaluation(ctx, eval); err != nil {
		return schemas.Evaluation{}, fmt.Errorf("failed to create evaluation: %w", err)
	}

	o.logger.Info("Evaluation started",
		zap.String("evaluation_id", eval.ID),
		zap.String("brand", brand.Name),
		zap.String("url", brand.WebsiteURL),
	)
	o.reportProgress("Initializing evaluation", 0)

	result, err := o.run(ctx, eval.ID, brand)
	if err != nil {
		o.markFailed(ctx, eval.ID)
		return schemas.Evaluation{}, err
	}

	o.reportProgress("Evaluation completed", totalSteps)
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, evaluationID string, brand schemas.Brand) (schemas.Evaluation, error) {
	// Page fetching and the hybrid crawl are independent network fan-outs.
	o.reportProgress("Gathering evidence", 1)
	var (
		pages    []schemas.PageFetchResult
		crawlOut schemas.AgentOutput
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pages = o.deps.Fetch.Run(gctx, map[schemas.PageType]string{
			schemas.PageHomepage: brand.WebsiteURL,
		})
		return nil
	})
	g.Go(func() error {
		crawlOut = o.deps.Crawl.Execute(gctx, schemas.AgentInput{
			BrandName:  brand.Name,
			WebsiteURL: brand.WebsiteURL,
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return schemas.Evaluation{}, err
	}

	o.logger.Info("Evidence gathered",
		zap.String("evaluation_id", evaluationID),
		zap.Int("pages", len(pages)),
		zap.Int("evidence_quality", crawlOut.Evidence.QualityScore),
		zap.Bool("evidence_cached", crawlOut.Cached),
	)

	o.reportProgress("Executing probes", 2)
	probeResults := o.deps.Probe.Run(ctx, probe.Context{
		Brand:    brand,
		Pages:    pages,
		Evidence: crawlOut.Evidence,
	})

	o.reportProgress("Scoring dimensions", 3)
	dimensionScores := scoring.MapProbesToDimensionScores(evaluationID, probeResults)
	for _, score := range dimensionScores {
		if err := o.deps.Store.UpsertDimensionScore(ctx, score); err != nil {
			return schemas.Evaluation{}, fmt.Errorf("failed to persist dimension score %s: %w", score.DimensionName, err)
		}
	}

	o.reportProgress("Calculating final scores", 4)
	overall := scoring.CalculateOverallScore(dimensionScores, o.deps.PlaybookBoost)
	grade := scoring.GradeFromScore(overall)
	verdict := scoring.GenerateVerdict(overall, brand.Name)
	extremes := scoring.IdentifyDimensionExtremes(dimensionScores)
	pillars := scoring.CalculatePillarScores(dimensionScores)

	o.logger.Info("Scores calculated",
		zap.String("evaluation_id", evaluationID),
		zap.Int("overall", overall),
		zap.String("grade", string(grade)),
		zap.Int("infrastructure", pillars.Infrastructure),
		zap.Int("perception", pillars.Perception),
		zap.Int("commerce", pillars.Commerce),
	)

	// A recommendation that fails to save is logged and skipped; the
	// evaluation still completes.
	o.reportProgress("Generating recommendations", 5)
	for _, rec := range scoring.GenerateRecommendations(evaluationID, dimensionScores) {
		if err := o.deps.Store.CreateRecommendation(ctx, rec); err != nil {
			o.logger.Warn("Failed to save recommendation",
				zap.String("evaluation_id", evaluationID),
				zap.String("title", rec.Title),
				zap.Error(err),
			)
		}
	}

	completedAt := o.now()
	status := schemas.StatusCompleted
	patch := schemas.EvaluationPatch{
		Status:             &status,
		OverallScore:       &overall,
		Grade:              &grade,
		Verdict:            &verdict,
		StrongestDimension: &extremes.Strongest,
		WeakestDimension:   &extremes.Weakest,
		BiggestOpportunity: &extremes.BiggestOpportunity,
		CompletedAt:        &completedAt,
	}
	if err := o.deps.Store.UpdateEvaluation(ctx, evaluationID, patch); err != nil {
		return schemas.Evaluation{}, fmt.Errorf("failed to finalize evaluation: %w", err)
	}

	return o.deps.Store.GetEvaluation(ctx, evaluationID)
}

func (o *Orchestrator) markFailed(ctx context.Context, evaluationID string) {
	completedAt := o.now()
	status := schemas.StatusFailed
	err := o.deps.Store.UpdateEvaluation(ctx, evaluationID, schemas.EvaluationPatch{
		Status:      &status,
		CompletedAt: &completedAt,
	})
	if err != nil {
		o.logger.Error("Failed to mark evaluation as failed",
			zap.String("evaluation_id", evaluationID),
			zap.Error(err),
		)
	}
}
