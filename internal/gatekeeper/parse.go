package gatekeeper

import (
	"regexp"
	"strconv"
	"strings"

	"researchdesk/internal/document"
)

// Assessment is the parsed outcome of one gatekeeper run.
type Assessment struct {
	// Score is the overall score, clamped to 0-100.
	Score int
	// Verdict is the three-way routing decision.
	Verdict document.Verdict
	// Rationale explains the verdict in the model's words.
	Rationale string
	// SubTopics lists up to five research sub-topics worth pursuing.
	SubTopics []string
	// Breakdown holds per-criterion points keyed by rubric criterion key.
	// Criteria absent from the reply are absent from the map.
	Breakdown map[string]int
}

// Note converts the assessment to the form recorded in a seed document.
func (a Assessment) Note() document.AssessmentNote {
	return document.AssessmentNote{
		Score:     a.Score,
		Verdict:   a.Verdict,
		Rationale: a.Rationale,
		SubTopics: a.SubTopics,
	}
}

const maxSubTopics = 5

var (
	scoreRe     = regexp.MustCompile(`(?im)^[\s*#]*(?:total\s+)?score[\s*]*:[\s*]*(\d+)`)
	verdictRe   = regexp.MustCompile(`(?im)^[\s*#]*verdict[\s*]*:[\s*]*_?\*?\*?(deep[- ]research|light[- ]scan|archive)`)
	rationaleRe = regexp.MustCompile(`(?im)^[\s*#]*rationale[\s*]*:[\s*]*(.+)$`)
	numberedRe  = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+(.+)$`)
)

// parseReply extracts an assessment from a free-form model reply. It never
// fails: missing pieces are derived or filled from the rubric, and clamping
// happens last so derived values obey the same bounds as explicit ones.
func (s *Service) parseReply(reply string) Assessment {
	a := Assessment{Breakdown: make(map[string]int)}

	for _, c := range s.rubric.Criteria {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(c.Label) + `[\s*]*\(0-\d+\)[\s*]*:[\s*]*(\d+)`)
		if m := re.FindStringSubmatch(reply); m != nil {
			points, _ := strconv.Atoi(m[1])
			a.Breakdown[c.Key] = points
		}
	}

	if m := scoreRe.FindStringSubmatch(reply); m != nil {
		a.Score, _ = strconv.Atoi(m[1])
	} else {
		for _, points := range a.Breakdown {
			a.Score += points
		}
	}

	if m := verdictRe.FindStringSubmatch(reply); m != nil {
		a.Verdict, _ = document.ParseVerdict(strings.ReplaceAll(m[1], " ", "-"))
	}

	a.Rationale = rationale(reply)

	a.SubTopics = subTopics(reply)

	// Clamp after derivation.
	for key, points := range a.Breakdown {
		a.Breakdown[key] = clamp(points, 0, MaxPerCriterion)
	}
	a.Score = clamp(a.Score, 0, MaxScore)

	if a.Verdict == document.VerdictNone {
		a.Verdict = s.rubric.VerdictFor(a.Score)
	}
	if len(a.SubTopics) == 0 {
		a.SubTopics = s.rubric.Fallback(a.Verdict)
	}
	if a.Rationale == "" {
		a.Rationale = "No rationale provided by the model."
	}
	return a
}

// rationale captures the labeled line plus any continuation lines: models
// asked for "2-3 sentences" regularly wrap them. The capture stops at a blank
// line, a bullet or numbered item, or the sub-topics label.
func rationale(reply string) string {
	m := rationaleRe.FindStringSubmatchIndex(reply)
	if m == nil {
		return ""
	}

	parts := []string{cleanLine(reply[m[2]:m[3]])}
	rest := strings.Split(reply[m[3]:], "\n")
	for _, line := range rest[1:] {
		if !rationaleContinues(line) {
			break
		}
		parts = append(parts, strings.TrimSpace(line))
	}
	return strings.Join(parts, " ")
}

func rationaleContinues(line string) bool {
	t := strings.TrimSpace(line)
	if t == "" {
		return false
	}
	if strings.HasPrefix(t, "-") || strings.HasPrefix(t, "*") || strings.HasPrefix(t, "#") {
		return false
	}
	if numberedRe.MatchString(line) {
		return false
	}
	label := strings.ToLower(strings.Trim(t, "*_ "))
	return !strings.HasPrefix(label, "top sub-topic") && !strings.HasPrefix(label, "sub-topic")
}

// subTopics collects the numbered list following a "sub-topic" heading. A
// reply with no such heading yields nothing; the rubric fallback fills in.
func subTopics(reply string) []string {
	idx := strings.Index(strings.ToLower(reply), "sub-topic")
	if idx < 0 {
		return nil
	}
	var out []string
	for _, m := range numberedRe.FindAllStringSubmatch(reply[idx:], -1) {
		item := cleanLine(m[1])
		if item == "" {
			continue
		}
		out = append(out, item)
		if len(out) == maxSubTopics {
			break
		}
	}
	return out
}

// cleanLine strips markdown emphasis and placeholder brackets from a value.
func cleanLine(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_")
	return strings.TrimSpace(s)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
