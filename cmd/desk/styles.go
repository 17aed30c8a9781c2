package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"researchdesk/internal/document"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	deepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	lightStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	archiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func renderVerdict(v document.Verdict) string {
	switch v {
	case document.VerdictDeepResearch:
		return deepStyle.Render(string(v))
	case document.VerdictLightScan:
		return lightStyle.Render(string(v))
	case document.VerdictArchive:
		return archiveStyle.Render(string(v))
	}
	return dimStyle.Render("unscored")
}

func renderStatus(s document.SeedStatus) string {
	switch s {
	case document.SeedPromoted:
		return okStyle.Render(string(s))
	case document.SeedArchived:
		return archiveStyle.Render(string(s))
	default:
		return string(s)
	}
}

func renderScore(score int, verdict document.Verdict) string {
	if verdict == document.VerdictNone {
		return dimStyle.Render("--")
	}
	return fmt.Sprintf("%3d", score)
}
