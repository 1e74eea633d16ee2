// File: internal/probe/harness.go
package probe

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/probeworks/aidi/api/schemas"
	"github.com/probeworks/aidi/internal/llmutil"
)

// maxRepairAttempts is the number of additional tries a provider gets after
// its first output fails schema validation. The repair prompt carries the
// serialized validation errors back to the model.
const maxRepairAttempts = 1

// Harness runs a fixed probe set against every configured AI provider.
// Probes execute sequentially; within one probe all providers run in
// parallel. Run never returns an error: a probe that cannot produce valid
// output anywhere yields a zero-confidence result.
type Harness struct {
	probes  []Probe
	clients []schemas.AIClient
	logger  *zap.Logger
}

// NewHarness builds a harness over the given probes and provider clients.
// Client order matters: the first schema-valid output in client order
// becomes the probe's final output.
func NewHarness(probes []Probe, clients []schemas.AIClient, logger *zap.Logger) *Harness {
	return &Harness{
		probes:  probes,
		clients: clients,
		logger:  logger.Named("probe_harness"),
	}
}

// attemptOutcome is one provider's terminal outcome for one probe.
type attemptOutcome struct {
	success  bool
	data     map[string]any
	provider string
}

// Run executes every probe and returns one result per probe, in probe
// order. A panic inside a single probe is contained to that probe.
func (h *Harness) Run(ctx context.Context, pctx Context) []schemas.ProbeResult {
	h.logger.Info("Starting probe run",
		zap.Int("probes", len(h.probes)),
		zap.Int("clients", len(h.clients)),
		zap.String("brand", pctx.Brand.Name),
	)

	results := make([]schemas.ProbeResult, 0, len(h.probes))
	for _, p := range h.probes {
		result := h.executeProbe(ctx, p, pctx)
		h.logger.Info("Probe completed",
			zap.String("probe", p.Name),
			zap.Bool("valid", result.WasValid),
			zap.Int("confidence", result.Confidence),
		)
		results = append(results, result)
	}
	return results
}

func (h *Harness) executeProbe(ctx context.Context, p Probe, pctx Context) (result schemas.ProbeResult) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Probe panicked",
				zap.String("probe", p.Name),
				zap.Any("panic", r),
			)
			result = h.failedResult(p.Name)
		}
	}()

	if len(h.clients) == 0 {
		h.logger.Warn("No AI clients available for probe", zap.String("probe", p.Name))
		return h.failedResult(p.Name)
	}

	prompt := p.Prompt(pctx)

	outcomes := make([]attemptOutcome, len(h.clients))
	var wg sync.WaitGroup
	for i, client := range h.clients {
		wg.Add(1)
		go func(i int, client schemas.AIClient) {
			defer wg.Done()
			outcomes[i] = h.runOnModel(ctx, client, p, prompt)
		}(i, client)
	}
	wg.Wait()

	validCount := 0
	final := attemptOutcome{provider: h.clients[0].Provider()}
	allOutputs := make([]map[string]any, len(outcomes))
	for i, o := range outcomes {
		allOutputs[i] = o.data
		if o.success {
			if validCount == 0 {
				final = o
			}
			validCount++
		}
	}

	confidence := int(math.Round(float64(validCount) / float64(len(h.clients)) * 100))

	var output map[string]any
	if final.success {
		output = final.data
	}

	return schemas.ProbeResult{
		ProbeName:  p.Name,
		Model:      final.provider,
		WasValid:   final.success,
		IsTrusted:  final.success,
		Confidence: confidence,
		Output:     output,
		AllOutputs: allOutputs,
	}
}

// runOnModel queries one provider for one probe. A provider gets the
// original prompt plus at most one repair attempt; an API error, a
// non-object completion, or a second validation failure all mark the
// provider as failed for this probe.
func (h *Harness) runOnModel(ctx context.Context, client schemas.AIClient, p Probe, prompt string) attemptOutcome {
	provider := client.Provider()
	currentPrompt := prompt

	for attempt := 0; attempt <= maxRepairAttempts; attempt++ {
		resp, err := client.Query(ctx, currentPrompt)
		if err != nil {
			h.logger.Warn("Provider query failed",
				zap.String("probe", p.Name),
				zap.String("provider", provider),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		obj, err := llmutil.ParseJSONObject(resp.Content)
		if err != nil {
			h.logger.Warn("Provider returned non-object output",
				zap.String("probe", p.Name),
				zap.String("provider", provider),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		if err := p.Schema.Validate(obj); err != nil {
			h.logger.Debug("Probe output failed validation",
				zap.String("probe", p.Name),
				zap.String("provider", provider),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			if attempt < maxRepairAttempts {
				currentPrompt = prompt +
					"\n\nThe previous attempt failed validation. Please correct the JSON output to match the schema. Errors: " +
					err.Error()
			}
			continue
		}

		return attemptOutcome{success: true, data: obj, provider: provider}
	}

	h.logger.Warn("Provider exhausted all attempts",
		zap.String("probe", p.Name),
		zap.String("provider", provider),
	)
	return attemptOutcome{provider: provider}
}

func (h *Harness) failedResult(probeName string) schemas.ProbeResult {
	model := ""
	if len(h.clients) > 0 {
		model = h.clients[0].Provider()
	}
	return schemas.ProbeResult{
		ProbeName:  probeName,
		Model:      model,
		WasValid:   false,
		IsTrusted:  false,
		Confidence: 0,
		Output:     nil,
		AllOutputs: []map[string]any{},
	}
}
