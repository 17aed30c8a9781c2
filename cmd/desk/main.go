package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"researchdesk/internal/config"
	"researchdesk/internal/logging"
	"researchdesk/internal/store"
	"researchdesk/internal/vault"
)

var (
	// Global flags
	workspaceFlag string
	debugFlag     bool

	// Shared state, initialized in PersistentPreRunE
	logger *zap.Logger
	cfg    *config.Config
	files  *vault.OS
	cache  *store.Store
)

var rootCmd = &cobra.Command{
	Use:   "desk",
	Short: "researchdesk - personal research workflow over a markdown workspace",
	Long: `researchdesk manages a research workflow in plain markdown files:
capture ideas as seeds, score them with an LLM gatekeeper, and promote the
winners into structured research plans.

The files are the source of truth. An in-memory cache is rebuilt from their
frontmatter on startup and kept current while watching.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ws := workspaceFlag
		if ws == "" {
			var err error
			if ws, err = os.Getwd(); err != nil {
				return err
			}
		}

		var err error
		cfg, err = config.Load(ws)
		if err != nil {
			return err
		}
		if debugFlag {
			cfg.Debug = true
		}
		logger = logging.New(cfg.Debug)

		files = vault.NewOS(ws)
		cache = store.New(files, cfg, logger)
		return cache.RebuildAll()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace root (default: current directory)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(topicCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(backendsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}
