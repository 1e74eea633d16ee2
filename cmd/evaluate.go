// File: cmd/evaluate.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/probeworks/aidi/api/schemas"
	"github.com/probeworks/aidi/internal/config"
	"github.com/probeworks/aidi/internal/crawl"
	"github.com/probeworks/aidi/internal/fetch"
	"github.com/probeworks/aidi/internal/llmclient"
	"github.com/probeworks/aidi/internal/netutil"
	"github.com/probeworks/aidi/internal/observability"
	"github.com/probeworks/aidi/internal/orchestrator"
	"github.com/probeworks/aidi/internal/probe"
	"github.com/probeworks/aidi/internal/scoring"
	"github.com/probeworks/aidi/internal/search"
	"github.com/probeworks/aidi/internal/store"
)

func newEvaluateCommand() *cobra.Command {
	var (
		websiteURL string
		brandName  string
	)

	evaluateCmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run a full AI discoverability evaluation for a brand.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}
			return runEvaluate(cmd.Context(), cmd.OutOrStdout(), cfg, websiteURL, brandName)
		},
	}

	evaluateCmd.Flags().StringVarP(&websiteURL, "url", "u", "", "brand website URL (required)")
	evaluateCmd.Flags().StringVarP(&brandName, "brand", "b", "", "brand name (derived from the URL when omitted)")
	evaluateCmd.MarkFlagRequired("url")

	return evaluateCmd
}

func runEvaluate(ctx context.Context, out io.Writer, cfg *config.Config, websiteURL, brandName string) error {
	logger := observability.GetLogger()

	netCfg := netutil.NewDefaultClientConfig()
	if cfg.Network.RequestTimeout > 0 {
		netCfg.RequestTimeout = cfg.Network.RequestTimeout
	}
	netCfg.IgnoreTLSErrors = cfg.Network.IgnoreTLSErrors
	httpClient := netutil.NewClient(netCfg).Client

	brave := search.NewLimited(
		search.NewBraveAdapter(cfg.Search.BraveAPIKey, httpClient, logger).
			WithTimeout(cfg.Search.Timeout),
		cfg.Search.RateLimit, cfg.Search.RateBurst, logger)
	google := search.NewLimited(
		search.NewGoogleCSEAdapter(cfg.Search.GoogleAPIKey, cfg.Search.GoogleCSEID, httpClient, logger).
			WithTimeout(cfg.Search.Timeout),
		cfg.Search.RateLimit, cfg.Search.RateBurst, logger)

	fetchAgent := fetch.NewAgent(brave, google, httpClient, cfg.Fetch, logger)
	crawlAgent := crawl.NewHybridAgent(brave, google, httpClient, cfg.Crawl, logger)

	clients, err := llmclient.NewAvailableClients(cfg.LLM, httpClient, logger)
	if err != nil {
		return fmt.Errorf("no usable AI providers: %w", err)
	}
	harness := probe.NewHarness(probe.CoreProbes(cfg.Probe), clients, logger)

	var st schemas.Store
	var mem *store.MemoryStore
	if cfg.Database.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		pg, err := store.NewPostgresStore(ctx, pool, logger)
		if err != nil {
			return err
		}
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		st = pg
	} else {
		logger.Info("No database configured, results stay in memory")
		mem = store.NewMemoryStore()
		st = mem
	}

	brand := schemas.Brand{
		ID:         uuid.NewString(),
		Name:       brandName,
		WebsiteURL: websiteURL,
	}
	if brand.Name == "" {
		brand.Name = crawl.BrandNameFromURL(websiteURL)
	}

	orch := orchestrator.New(orchestrator.Deps{
		Fetch:         fetchAgent,
		Crawl:         crawlAgent,
		Probe:         harness,
		Store:         st,
		PlaybookBoost: cfg.Scoring.PlaybookBoost,
		Progress: func(p orchestrator.Progress) {
			fmt.Fprintf(out, "[%3d%%] %s\n", p.Percentage, p.Step)
		},
	}, logger)

	eval, err := orch.Evaluate(ctx, brand)
	if err != nil {
		return err
	}

	printEvaluation(out, brand, eval, mem)
	return nil
}

func printEvaluation(out io.Writer, brand schemas.Brand, eval schemas.Evaluation, mem *store.MemoryStore) {
	fmt.Fprintf(out, "\nEvaluation %s for %s (%s)\n", eval.ID, brand.Name, brand.WebsiteURL)
	fmt.Fprintf(out, "  Overall score:       %d/100 (grade %s)\n", eval.OverallScore, eval.Grade)
	fmt.Fprintf(out, "  Verdict:             %s\n", eval.Verdict)
	fmt.Fprintf(out, "  Strongest dimension: %s\n", eval.StrongestDimension)
	fmt.Fprintf(out, "  Weakest dimension:   %s\n", eval.WeakestDimension)
	fmt.Fprintf(out, "  Biggest opportunity: %s\n", eval.BiggestOpportunity)

	if mem == nil {
		return
	}

	scores := mem.DimensionScores(eval.ID)
	sort.Slice(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	if len(scores) > 0 {
		fmt.Fprintln(out, "\nDimension scores:")
		for _, s := range scores {
			fmt.Fprintf(out, "  %-28s %3d  %s\n", scoring.DisplayName(s.DimensionName), s.Score, s.Explanation)
		}
	}

	recs := mem.Recommendations(eval.ID)
	if len(recs) > 0 {
		fmt.Fprintln(out, "\nRecommendations:")
		for _, r := range recs {
			fmt.Fprintf(out, "  [P%d] %s (%s, impact %s, effort %s)\n", r.Priority, r.Title, r.Category, r.Impact, r.Effort)
		}
	}
}
