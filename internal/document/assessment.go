package document

import (
	"fmt"
	"strings"
)

const assessmentHeading = "## Gatekeeper Assessment"

// AssessmentNote is a gatekeeper outcome destined for a seed document body.
type AssessmentNote struct {
	Score     int
	Verdict   Verdict
	Rationale string
	SubTopics []string
}

// WriteAssessment fills the seed body's assessment section with the outcome,
// replacing whatever the section held (including the template placeholder
// bullets). Every other line of the body is preserved byte-identically. A
// body without the section gets one appended.
func WriteAssessment(body string, note AssessmentNote) string {
	block := renderAssessment(note)

	lines := strings.Split(body, "\n")
	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == assessmentHeading {
			start = i
			break
		}
	}
	if start == -1 {
		out := strings.TrimRight(body, "\n")
		if out != "" {
			out += "\n"
		}
		return out + "\n" + assessmentHeading + "\n\n" + strings.Join(block, "\n") + "\n"
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if l := headingLevel(strings.TrimSpace(lines[i])); l > 0 && l <= headingLevel(assessmentHeading) {
			end = i
			break
		}
	}

	var out []string
	out = append(out, lines[:start+1]...)
	out = append(out, "")
	out = append(out, block...)
	out = append(out, "")
	out = append(out, lines[end:]...)
	return strings.Join(out, "\n")
}

func renderAssessment(note AssessmentNote) []string {
	block := []string{
		fmt.Sprintf("- **Score**: %d", note.Score),
		fmt.Sprintf("- **Verdict**: %s", note.Verdict),
		fmt.Sprintf("- **Rationale**: %s", note.Rationale),
	}
	if len(note.SubTopics) == 0 {
		return block
	}
	block = append(block, "- **Top Sub-topics**:")
	for i, topic := range note.SubTopics {
		block = append(block, fmt.Sprintf("  %d. %s", i+1, topic))
	}
	return block
}
