package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"researchdesk/internal/document"
)

var promoteForceFlag bool

var promoteCmd = &cobra.Command{
	Use:   "promote [seed-id]",
	Short: "Promote a scored seed into a research plan",
	Long: `Creates a research plan from a seed and marks the seed promoted. The plan's
sub-questions come from the LLM backend when one is reachable, otherwise from
the seed's own initial questions.

Seeds below the promote threshold need --force.`,
	Args: cobra.ExactArgs(1),
	RunE: runPromote,
}

func init() {
	promoteCmd.Flags().BoolVarP(&promoteForceFlag, "force", "f", false, "promote even below the threshold")
}

func runPromote(cmd *cobra.Command, args []string) error {
	seed, err := resolveSeed(args[0])
	if err != nil {
		return err
	}
	if seed.Meta.Verdict == document.VerdictNone && !promoteForceFlag {
		return fmt.Errorf("seed %s is unscored; score it first or use --force", shortID(seed.Meta.ID))
	}
	if seed.Meta.Score < cfg.Gatekeeper.PromoteThreshold && !promoteForceFlag {
		return fmt.Errorf("seed %s scored %d, below threshold %d; use --force to promote anyway",
			shortID(seed.Meta.ID), seed.Meta.Score, cfg.Gatekeeper.PromoteThreshold)
	}

	var subQuestions []string
	if svc, err := newGatekeeper(cmd); err == nil {
		if qs, err := svc.SubQuestions(cmd.Context(), seed); err == nil {
			subQuestions = qs
		} else if logger != nil {
			logger.Warn("sub-question generation failed, using seed questions")
		}
	}

	plan, err := cache.PromoteSeed(seed.Meta.ID, subQuestions)
	if err != nil {
		return err
	}

	fmt.Println(okStyle.Render("seed promoted"))
	fmt.Println("  plan: " + plan.Meta.ID)
	fmt.Println("  file: " + plan.FilePath)
	for _, q := range plan.SubQuestions {
		fmt.Println("    - " + q)
	}
	return nil
}
