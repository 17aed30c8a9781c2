package gatekeeper

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"researchdesk/internal/document"
)

//go:embed rubric.yaml
var rubricYAML []byte

// Criterion is one scored dimension of the rubric.
type Criterion struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
	Hint  string `yaml:"hint"`
}

// Bands holds the score floors for each verdict. Scores below the light-scan
// floor are archived.
type Bands struct {
	DeepResearch int `yaml:"deep_research"`
	LightScan    int `yaml:"light_scan"`
}

// Rubric is the full assessment rubric, loaded from the embedded yaml.
type Rubric struct {
	Criteria       []Criterion         `yaml:"criteria"`
	Bands          Bands               `yaml:"bands"`
	ScoreTolerance int                 `yaml:"score_tolerance"`
	VerdictMargin  int                 `yaml:"verdict_margin"`
	FallbackTopics map[string][]string `yaml:"fallback_topics"`
}

// LoadRubric parses the embedded rubric.
func LoadRubric() (*Rubric, error) {
	var r Rubric
	if err := yaml.Unmarshal(rubricYAML, &r); err != nil {
		return nil, fmt.Errorf("gatekeeper: parse rubric: %w", err)
	}
	if len(r.Criteria) == 0 {
		return nil, fmt.Errorf("gatekeeper: rubric has no criteria")
	}
	return &r, nil
}

// VerdictFor maps a score to its band verdict.
func (r *Rubric) VerdictFor(score int) document.Verdict {
	switch {
	case score >= r.Bands.DeepResearch:
		return document.VerdictDeepResearch
	case score >= r.Bands.LightScan:
		return document.VerdictLightScan
	default:
		return document.VerdictArchive
	}
}

// VerdictPlausible reports whether a verdict is defensible for a score. Each
// verdict is valid within VerdictMargin of its band edges, so a model that
// overrides the arithmetic near a boundary is not flagged.
func (r *Rubric) VerdictPlausible(verdict document.Verdict, score int) bool {
	switch verdict {
	case document.VerdictDeepResearch:
		return score >= r.Bands.DeepResearch-r.VerdictMargin
	case document.VerdictLightScan:
		return score >= r.Bands.LightScan-r.VerdictMargin && score < r.Bands.DeepResearch
	case document.VerdictArchive:
		return score <= r.Bands.LightScan+r.VerdictMargin
	default:
		return false
	}
}

// Fallback returns the catalog sub-topics for a verdict, used when the model
// reply names none.
func (r *Rubric) Fallback(verdict document.Verdict) []string {
	topics := r.FallbackTopics[string(verdict)]
	out := make([]string, len(topics))
	copy(out, topics)
	return out
}

// MaxPerCriterion is the score ceiling of one rubric criterion.
const MaxPerCriterion = 20

// MaxScore is the overall score ceiling.
const MaxScore = 100
