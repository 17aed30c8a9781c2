package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"researchdesk/internal/store"
)

var (
	planTopicFlag  string
	planStatusFlag string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Inspect research plans",
}

var planLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List research plans, newest first",
	RunE:  runPlanLs,
}

func init() {
	planLsCmd.Flags().StringVarP(&planTopicFlag, "topic", "t", "", "filter by topic slug")
	planLsCmd.Flags().StringVar(&planStatusFlag, "status", "", "filter by status")

	planCmd.AddCommand(planLsCmd)
}

func runPlanLs(cmd *cobra.Command, args []string) error {
	plans := cache.Plans(store.Filter{Topic: planTopicFlag, Status: planStatusFlag})
	if len(plans) == 0 {
		fmt.Println(dimStyle.Render("no plans"))
		return nil
	}

	for _, plan := range plans {
		fmt.Printf("%s  %-9s  %s\n",
			dimStyle.Render(shortID(plan.Meta.ID)),
			plan.Meta.Status,
			titleStyle.Render(plan.Title))
		if plan.Thesis != "" {
			fmt.Println("          " + dimStyle.Render(plan.Thesis))
		}
	}
	return nil
}
