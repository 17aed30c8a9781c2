package document

import (
	"regexp"
	"strings"
)

// Landmark headings recognized in document bodies. These are anchors for
// lenient extraction, not enforced structure: humans reorder and half-fill
// sections, and parsing must still succeed.
const (
	seedTitlePrefix   = "# Seed:"
	seedSparkHeading  = "## Spark"
	seedQuestionsHead = "## Initial Questions"

	planTitlePrefix  = "# Deep Research Plan:"
	planThesisLabel  = "**Refined Thesis**:"
	planSubQsHeading = "## Sub-Questions"

	topicOverviewHeading = "## Overview"

	reportTitlePrefix = "# Deep Research Report:"
	reportBriefHead   = "## Executive Brief"

	sourceTLDRHeading = "## TL;DR"
)

var (
	bulletRe   = regexp.MustCompile(`^\s*[-*]\s+(.*)$`)
	numberedRe = regexp.MustCompile(`^\s*\d+\.\s+(.*)$`)
)

// ParseSeed extracts a seed's body fields. Missing sections produce defaults,
// never an error.
func ParseSeed(meta SeedMeta, body, path string) *Seed {
	return &Seed{
		Meta:      meta,
		Title:     titleAfter(body, seedTitlePrefix, "Untitled Seed"),
		Summary:   strings.TrimSpace(section(body, seedSparkHeading)),
		Questions: bullets(section(body, seedQuestionsHead)),
		FilePath:  path,
	}
}

// ParsePlan extracts a plan's body fields.
func ParsePlan(meta PlanMeta, body, path string) *Plan {
	return &Plan{
		Meta:         meta,
		Title:        titleAfter(body, planTitlePrefix, "Untitled Plan"),
		Thesis:       labelValue(body, planThesisLabel),
		SubQuestions: numbered(section(body, planSubQsHeading)),
		FilePath:     path,
	}
}

// ParseTopic extracts a topic. Title and description live in frontmatter; the
// body Overview section backfills an empty description.
func ParseTopic(meta TopicMeta, body, path string) *Topic {
	if meta.Description == "" {
		meta.Description = strings.TrimSpace(section(body, topicOverviewHeading))
	}
	return &Topic{Meta: meta, FilePath: path}
}

// ParseReport extracts a report's body fields.
func ParseReport(meta ReportMeta, body, path string) *Report {
	return &Report{
		Meta:     meta,
		Title:    titleAfter(body, reportTitlePrefix, "Untitled Report"),
		Brief:    strings.TrimSpace(section(body, reportBriefHead)),
		FilePath: path,
	}
}

// ParseSource extracts a source note's body fields.
func ParseSource(meta SourceMeta, body, path string) *Source {
	title := meta.Title
	if title == "" {
		title = "Untitled Source"
	}
	oneSentence := labelValue(body, "**One Sentence**:")
	if oneSentence == "" {
		oneSentence = firstLine(section(body, sourceTLDRHeading))
	}
	return &Source{
		Meta:        meta,
		Title:       title,
		OneSentence: oneSentence,
		FilePath:    path,
	}
}

// titleAfter returns the trimmed remainder of the first line starting with
// prefix, or fallback when no such line exists.
func titleAfter(body, prefix, fallback string) string {
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, prefix) {
			if title := strings.TrimSpace(strings.TrimPrefix(line, prefix)); title != "" {
				return title
			}
		}
	}
	return fallback
}

// section returns the raw content under a heading: every line after the
// heading until the next heading of equal or higher level, or end of text.
// Headings match exactly or by prefix. Returns "" when the heading is absent.
func section(body, heading string) string {
	level := headingLevel(heading)
	lines := strings.Split(body, "\n")

	start := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == heading || strings.HasPrefix(trimmed, heading) {
			start = i + 1
			break
		}
	}
	if start == -1 {
		return ""
	}

	end := len(lines)
	for i := start; i < len(lines); i++ {
		if l := headingLevel(strings.TrimSpace(lines[i])); l > 0 && l <= level {
			end = i
			break
		}
	}
	return strings.Join(lines[start:end], "\n")
}

// headingLevel counts leading '#' characters followed by a space; 0 means not
// a heading.
func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}

// bullets collects the text of dash/star bullet lines, dropping empties.
func bullets(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			if item := strings.TrimSpace(m[1]); item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}

// numbered collects the text of "1." style list lines, dropping empties.
func numbered(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		if m := numberedRe.FindStringSubmatch(line); m != nil {
			if item := strings.TrimSpace(m[1]); item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}

// labelValue returns the trimmed text after an inline label such as
// "**Refined Thesis**:" on the first line containing it.
func labelValue(body, label string) string {
	for _, line := range strings.Split(body, "\n") {
		if idx := strings.Index(line, label); idx >= 0 {
			return strings.TrimSpace(line[idx+len(label):])
		}
	}
	return ""
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return strings.TrimPrefix(strings.TrimPrefix(trimmed, "- "), "* ")
		}
	}
	return ""
}
