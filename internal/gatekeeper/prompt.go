package gatekeeper

import (
	"fmt"
	"strings"

	"researchdesk/internal/document"
)

// BuildPrompt renders the assessment prompt for a seed. The reply format is
// spelled out line by line; the parser still tolerates deviations.
func (s *Service) BuildPrompt(seed *document.Seed) string {
	var b strings.Builder

	b.WriteString("You are a research gatekeeper deciding whether a captured research idea (a \"seed\") deserves deep research investment.\n\n")
	b.WriteString("Evaluate this seed:\n\n")
	fmt.Fprintf(&b, "Title: %s\n", seed.Title)
	if seed.Meta.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", seed.Meta.Topic)
	}
	if seed.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", seed.Summary)
	}
	if len(seed.Questions) > 0 {
		b.WriteString("Initial Questions:\n")
		for _, q := range seed.Questions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	if seed.Meta.Priority != "" {
		fmt.Fprintf(&b, "Priority: %s\n", seed.Meta.Priority)
	}

	fmt.Fprintf(&b, "\nScore the seed on %d criteria, 0-%d points each:\n\n", len(s.rubric.Criteria), MaxPerCriterion)
	for i, c := range s.rubric.Criteria {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, c.Label, c.Hint)
	}

	b.WriteString("\nRespond in exactly this format:\n\n")
	for _, c := range s.rubric.Criteria {
		fmt.Fprintf(&b, "%s (0-%d): <points>\n", c.Label, MaxPerCriterion)
	}
	fmt.Fprintf(&b, "Score: <total 0-%d>\n", MaxScore)
	b.WriteString("Verdict: <deep-research|light-scan|archive>\n")
	b.WriteString("Rationale: <2-3 sentences explaining the verdict>\n")
	b.WriteString("Top Sub-topics:\n")
	b.WriteString("1. <most promising research sub-topic>\n")
	b.WriteString("2. <next sub-topic>\n")
	b.WriteString("3. <next sub-topic>\n")

	return b.String()
}

// BuildSubQuestionsPrompt asks for research sub-questions for a seed being
// promoted into a plan.
func (s *Service) BuildSubQuestionsPrompt(seed *document.Seed) string {
	var b strings.Builder
	b.WriteString("Decompose this research idea into specific, answerable sub-questions for a structured literature review.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", seed.Title)
	if seed.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", seed.Summary)
	}
	if len(seed.Questions) > 0 {
		b.WriteString("Starting questions:\n")
		for _, q := range seed.Questions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	fmt.Fprintf(&b, "\nProduce between %d and %d sub-questions as a numbered list, one per line, nothing else.\n", minSubQuestions, maxSubQuestions)
	return b.String()
}
