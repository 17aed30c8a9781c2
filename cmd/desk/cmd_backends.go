package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"researchdesk/internal/llm"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "Show which generation backends are reachable",
	RunE:  runBackends,
}

func runBackends(cmd *cobra.Command, args []string) error {
	for _, client := range llm.All(cmd.Context(), cfg) {
		marker := errStyle.Render("unavailable")
		if client.IsAvailable(cmd.Context()) {
			marker = okStyle.Render("available")
		}
		selected := "  "
		if client.Name() == cfg.Provider {
			selected = okStyle.Render("* ")
		}
		fmt.Printf("%s%-10s %s\n", selected, client.Name(), marker)
	}
	return nil
}
