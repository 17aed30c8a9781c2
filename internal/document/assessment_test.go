package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const assessedBody = `# Seed: Filled In

## Spark

The original spark text.

## Gatekeeper Assessment

- **Score**:
- **Verdict**:
- **Rationale**:
- **Top Sub-topics**:

## Next Steps

- [ ] Run gatekeeper assessment
`

func TestWriteAssessmentReplacesSection(t *testing.T) {
	note := AssessmentNote{
		Score:     82,
		Verdict:   VerdictDeepResearch,
		Rationale: "Strong idea with open questions.",
		SubTopics: []string{"mechanisms", "dosage"},
	}
	out := WriteAssessment(assessedBody, note)

	assert.Contains(t, out, "- **Score**: 82")
	assert.Contains(t, out, "- **Verdict**: deep-research")
	assert.Contains(t, out, "- **Rationale**: Strong idea with open questions.")
	assert.Contains(t, out, "  1. mechanisms")
	assert.Contains(t, out, "  2. dosage")
	assert.NotContains(t, out, "- **Score**:\n", "placeholder bullets are replaced")

	// Surrounding sections survive untouched.
	assert.Contains(t, out, "The original spark text.")
	assert.Contains(t, out, "## Next Steps\n\n- [ ] Run gatekeeper assessment")

	seed := ParseSeed(SeedMeta{}, out, "")
	assert.Equal(t, "The original spark text.", seed.Summary)
}

func TestWriteAssessmentIsIdempotentPerOutcome(t *testing.T) {
	note := AssessmentNote{Score: 40, Verdict: VerdictArchive, Rationale: "Not yet."}

	once := WriteAssessment(assessedBody, note)
	twice := WriteAssessment(once, note)
	assert.Equal(t, once, twice)
	assert.Equal(t, 1, strings.Count(twice, "- **Score**: 40"))
}

func TestWriteAssessmentAppendsWhenSectionMissing(t *testing.T) {
	body := "# Seed: Bare\n\n## Spark\n\ntext\n"
	note := AssessmentNote{Score: 55, Verdict: VerdictLightScan, Rationale: "Scan the field first."}

	out := WriteAssessment(body, note)
	require.Contains(t, out, "## Gatekeeper Assessment")
	assert.Contains(t, out, "- **Score**: 55")
	assert.True(t, strings.HasPrefix(out, "# Seed: Bare"))
}
