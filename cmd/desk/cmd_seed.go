package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"researchdesk/internal/document"
	"researchdesk/internal/store"
)

var (
	seedTopicFlag    string
	seedPriorityFlag string
	seedSummaryFlag  string
	seedQuestionFlag []string
	seedStatusFlag   string
	seedMinScoreFlag int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Capture and inspect research seeds",
}

var seedNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Capture a new research seed",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSeedNew,
}

var seedLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List seeds, newest first",
	RunE:  runSeedLs,
}

var seedShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one seed in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeedShow,
}

func init() {
	seedNewCmd.Flags().StringVarP(&seedTopicFlag, "topic", "t", "", "topic slug to file the seed under")
	seedNewCmd.Flags().StringVarP(&seedPriorityFlag, "priority", "p", "medium", "priority: low, medium, high")
	seedNewCmd.Flags().StringVarP(&seedSummaryFlag, "summary", "s", "", "what sparked this idea")
	seedNewCmd.Flags().StringArrayVarP(&seedQuestionFlag, "question", "q", nil, "initial question (repeatable)")

	seedLsCmd.Flags().StringVarP(&seedTopicFlag, "topic", "t", "", "filter by topic slug")
	seedLsCmd.Flags().StringVar(&seedStatusFlag, "status", "", "filter by status")
	seedLsCmd.Flags().IntVar(&seedMinScoreFlag, "min-score", 0, "filter by minimum score")

	seedCmd.AddCommand(seedNewCmd)
	seedCmd.AddCommand(seedLsCmd)
	seedCmd.AddCommand(seedShowCmd)
}

func runSeedNew(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")
	seed, err := cache.CreateSeed(title, seedSummaryFlag, seedQuestionFlag,
		seedTopicFlag, document.Priority(seedPriorityFlag))
	if err != nil {
		return err
	}

	fmt.Println(okStyle.Render("seed captured"))
	fmt.Println("  id:   " + seed.Meta.ID)
	fmt.Println("  file: " + seed.FilePath)
	return nil
}

func runSeedLs(cmd *cobra.Command, args []string) error {
	seeds := cache.Seeds(store.Filter{
		Topic:    seedTopicFlag,
		Status:   seedStatusFlag,
		MinScore: seedMinScoreFlag,
	})
	if len(seeds) == 0 {
		fmt.Println(dimStyle.Render("no seeds"))
		return nil
	}

	for _, seed := range seeds {
		fmt.Printf("%s  %s  %s  %s  %s\n",
			dimStyle.Render(shortID(seed.Meta.ID)),
			renderScore(seed.Meta.Score, seed.Meta.Verdict),
			renderVerdict(seed.Meta.Verdict),
			renderStatus(seed.Meta.Status),
			titleStyle.Render(seed.Title))
	}
	return nil
}

func runSeedShow(cmd *cobra.Command, args []string) error {
	seed, err := resolveSeed(args[0])
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(seed.Title))
	fmt.Println("  id:       " + seed.Meta.ID)
	fmt.Println("  file:     " + seed.FilePath)
	fmt.Println("  status:   " + renderStatus(seed.Meta.Status))
	if seed.Meta.Topic != "" {
		fmt.Println("  topic:    " + seed.Meta.Topic)
	}
	fmt.Println("  priority: " + string(seed.Meta.Priority))
	if seed.Meta.Created != "" {
		fmt.Println("  created:  " + seed.Meta.Created)
	}
	if seed.Meta.Verdict != document.VerdictNone {
		fmt.Printf("  score:    %d (%s)\n", seed.Meta.Score, renderVerdict(seed.Meta.Verdict))
	}
	if seed.Summary != "" {
		fmt.Println("\n" + seed.Summary)
	}
	for _, q := range seed.Questions {
		fmt.Println("  - " + q)
	}
	return nil
}

// resolveSeed accepts a full id or an unambiguous prefix.
func resolveSeed(id string) (*document.Seed, error) {
	if seed, err := cache.Seed(id); err == nil {
		return seed, nil
	}

	var matches []*document.Seed
	for _, seed := range cache.Seeds(store.Filter{}) {
		if strings.HasPrefix(seed.Meta.ID, id) {
			matches = append(matches, seed)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, fmt.Errorf("no seed matches %q", id)
	default:
		return nil, fmt.Errorf("seed id %q is ambiguous (%d matches)", id, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
