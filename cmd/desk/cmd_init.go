package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"researchdesk/internal/document"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the workspace folder layout, templates and config",
	Long: `Creates the document folders, writes the built-in templates into the
templates folder for editing, and saves a default config file. Existing files
are never overwritten.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	for _, folder := range cfg.DocumentFolders() {
		if err := files.MkdirAll(folder); err != nil {
			return err
		}
		fmt.Println("  " + folder + "/")
	}
	if err := files.MkdirAll(cfg.Paths.Templates); err != nil {
		return err
	}

	for name, body := range document.Builtin() {
		path := cfg.Paths.Templates + "/" + name
		if _, err := files.Read(path); err == nil {
			fmt.Println(dimStyle.Render("  " + path + " (kept)"))
			continue
		}
		if err := files.Write(path, body); err != nil {
			return err
		}
		fmt.Println("  " + path)
	}

	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Println(okStyle.Render("workspace initialized"))
	return nil
}
