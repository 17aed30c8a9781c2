package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"researchdesk/internal/document"
	"researchdesk/internal/gatekeeper"
	"researchdesk/internal/llm"
	"researchdesk/internal/store"
)

var (
	scoreAllFlag      bool
	scoreValidateFlag bool
)

var scoreCmd = &cobra.Command{
	Use:   "score [seed-id]",
	Short: "Run the gatekeeper assessment on seeds",
	Long: `Scores a seed through the configured LLM backend and writes the outcome
into its frontmatter and assessment section. With --all-captured, every
unscored seed is assessed in paced batches.`,
	Args: cobra.ArbitraryArgs,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreAllFlag, "all-captured", false, "score every seed still in captured status")
	scoreCmd.Flags().BoolVar(&scoreValidateFlag, "validate", false, "cross-check each assessment against the rubric")
}

func newGatekeeper(cmd *cobra.Command) (*gatekeeper.Service, error) {
	client, err := llm.New(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	return gatekeeper.NewService(client, cache, cfg.Gatekeeper, logger)
}

func runScore(cmd *cobra.Command, args []string) error {
	svc, err := newGatekeeper(cmd)
	if err != nil {
		return err
	}

	if scoreAllFlag {
		return scoreAllCaptured(cmd, svc)
	}
	if len(args) == 0 {
		return fmt.Errorf("give one or more seed ids, or --all-captured")
	}

	for _, arg := range args {
		seed, err := resolveSeed(arg)
		if err != nil {
			return err
		}
		a, err := svc.ScoreAndRecord(cmd.Context(), seed.Meta.ID)
		if err != nil {
			return err
		}
		printAssessment(svc, seed, a)
	}
	return nil
}

func scoreAllCaptured(cmd *cobra.Command, svc *gatekeeper.Service) error {
	seeds := cache.Seeds(store.Filter{Status: string(document.SeedCaptured)})
	if len(seeds) == 0 {
		fmt.Println(dimStyle.Render("nothing to score"))
		return nil
	}
	fmt.Printf("scoring %d seeds\n", len(seeds))

	results := svc.ScoreMany(cmd.Context(), seeds)
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Printf("%s  %s  %s\n",
				dimStyle.Render(shortID(res.Seed.Meta.ID)),
				errStyle.Render("failed"),
				res.Seed.Title)
			continue
		}
		if err := cache.RecordAssessment(res.Seed.Meta.ID, res.Assessment.Note()); err != nil {
			return err
		}
		fmt.Printf("%s  %s  %s  %s\n",
			dimStyle.Render(shortID(res.Seed.Meta.ID)),
			renderScore(res.Assessment.Score, res.Assessment.Verdict),
			renderVerdict(res.Assessment.Verdict),
			res.Seed.Title)
	}
	if failed > 0 {
		fmt.Println(errStyle.Render(fmt.Sprintf("%d seeds failed; re-run score for them individually", failed)))
	}

	stats := svc.Summarize(cache.Seeds(store.Filter{}))
	fmt.Printf("\n%d/%d scored, %d qualifying, mean %.1f\n",
		stats.Scored, stats.Total, stats.Qualifying, stats.MeanScore)

	if batch := svc.SummarizeBatch(results); len(batch.CommonSubTopics) > 0 {
		fmt.Println("recurring sub-topics:")
		for _, topic := range batch.CommonSubTopics {
			fmt.Println("  - " + topic)
		}
	}
	return nil
}

func printAssessment(svc *gatekeeper.Service, seed *document.Seed, a gatekeeper.Assessment) {
	fmt.Println(titleStyle.Render(seed.Title))
	fmt.Printf("  score:   %d\n", a.Score)
	fmt.Println("  verdict: " + renderVerdict(a.Verdict))
	if a.Rationale != "" {
		fmt.Println("  " + a.Rationale)
	}
	if len(a.SubTopics) > 0 {
		fmt.Println("  sub-topics:")
		for _, topic := range a.SubTopics {
			fmt.Println("    - " + topic)
		}
	}
	if scoreValidateFlag {
		for _, issue := range svc.Validate(a) {
			fmt.Println(errStyle.Render("  ! ") + issue)
		}
	}
}
