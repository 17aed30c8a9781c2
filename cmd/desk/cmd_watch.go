package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"researchdesk/internal/document"
	"researchdesk/internal/vault"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the cache from the files and report what was indexed",
	RunE: func(cmd *cobra.Command, args []string) error {
		// PersistentPreRunE already rebuilt; report the counts.
		counts := cache.Counts()
		for _, kind := range document.Kinds() {
			fmt.Printf("  %-10s %d\n", kind, counts[kind])
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the document folders and keep the cache current",
	Long: `Follows external edits (your editor, sync tools) to the document folders
and applies them to the cache as they settle. Runs until interrupted.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	watcher, err := vault.NewWatcher(cfg.Workspace, cfg.DocumentFolders(), func(ev vault.Event) {
		cache.HandleEvent(ev)
		fmt.Printf("%s %s\n", dimStyle.Render(ev.Op.String()), ev.Path)
	}, logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(cmd.Context()); err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Println("watching; ctrl-c to stop")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-cmd.Context().Done():
	}
	fmt.Println()
	return nil
}
