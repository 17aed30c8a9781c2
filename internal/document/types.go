// Package document defines the research document model: kinds, metadata
// records, body parsing, and content templates. Documents are markdown files
// with a frontmatter block; the body is free-form and parsed by landmark
// headings only.
package document

import "strings"

// Kind identifies a document kind. The values double as the frontmatter
// `type` field.
type Kind string

const (
	KindTopic  Kind = "topic"
	KindSeed   Kind = "seed"
	KindPlan   Kind = "dr-plan"
	KindReport Kind = "dr-report"
	KindSource Kind = "source"
)

// Kinds lists every managed kind.
func Kinds() []Kind {
	return []Kind{KindTopic, KindSeed, KindPlan, KindReport, KindSource}
}

// KindOf maps a frontmatter `type` value to a Kind. ok=false means the
// document is not managed by this system.
func KindOf(typeValue string) (Kind, bool) {
	switch Kind(typeValue) {
	case KindTopic, KindSeed, KindPlan, KindReport, KindSource:
		return Kind(typeValue), true
	}
	return "", false
}

// SeedStatus is the seed lifecycle: captured -> scored -> promoted, with
// archived as the terminal state.
type SeedStatus string

const (
	SeedCaptured SeedStatus = "captured"
	SeedScored   SeedStatus = "scored"
	SeedPromoted SeedStatus = "promoted"
	SeedArchived SeedStatus = "archived"
)

// Priority is the seed triage priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Verdict is the three-way assessment outcome. VerdictNone marks a seed that
// has not been assessed yet.
type Verdict string

const (
	VerdictDeepResearch Verdict = "deep-research"
	VerdictLightScan    Verdict = "light-scan"
	VerdictArchive      Verdict = "archive"
	VerdictNone         Verdict = ""
)

// ParseVerdict recognizes a verdict label, case-insensitively.
func ParseVerdict(s string) (Verdict, bool) {
	switch v := Verdict(strings.ToLower(s)); v {
	case VerdictDeepResearch, VerdictLightScan, VerdictArchive:
		return v, true
	}
	return VerdictNone, false
}

// PlanStatus is the plan lifecycle. Transitions are driven by the (external)
// execution subsystem.
type PlanStatus string

const (
	PlanPlanned   PlanStatus = "planned"
	PlanRunning   PlanStatus = "running"
	PlanCompleted PlanStatus = "completed"
	PlanFailed    PlanStatus = "failed"
)

// TopicStatus is the topic lifecycle.
type TopicStatus string

const (
	TopicActive   TopicStatus = "active"
	TopicArchived TopicStatus = "archived"
	TopicPaused   TopicStatus = "paused"
)

// ReportStatus marks how completely a research run finished.
type ReportStatus string

const (
	ReportComplete ReportStatus = "complete"
	ReportPartial  ReportStatus = "partial"
	ReportFailed   ReportStatus = "failed"
)

// Quality is the evidence quality rating of a source.
type Quality string

const (
	QualityStrong Quality = "strong"
	QualityMixed  Quality = "mixed"
	QualityWeak   Quality = "weak"
)

// Document is the common view over all cached document kinds. Concrete
// entities (*Seed, *Plan, ...) implement it.
type Document interface {
	Kind() Kind
	ID() string
	Path() string
	// Created returns the creation date as YYYY-MM-DD, or "" when unknown.
	Created() string
}

// SeedMeta is the frontmatter of a captured research idea.
type SeedMeta struct {
	ID       string
	Topic    string
	Status   SeedStatus
	Priority Priority
	Score    int
	Verdict  Verdict
	Created  string
}

// Seed is a captured research idea plus its parsed body fields.
type Seed struct {
	Meta      SeedMeta
	Title     string
	Summary   string
	Questions []string
	FilePath  string
}

func (s *Seed) Kind() Kind      { return KindSeed }
func (s *Seed) ID() string      { return s.Meta.ID }
func (s *Seed) Path() string    { return s.FilePath }
func (s *Seed) Created() string { return s.Meta.Created }

// PlanMeta is the frontmatter of a research plan.
type PlanMeta struct {
	ID           string
	Topic        string
	Seed         string
	Status       PlanStatus
	Deliverables []string
	RunID        string
	Created      string
}

// Plan is a structured research program.
type Plan struct {
	Meta         PlanMeta
	Title        string
	Thesis       string
	SubQuestions []string
	FilePath     string
}

func (p *Plan) Kind() Kind      { return KindPlan }
func (p *Plan) ID() string      { return p.Meta.ID }
func (p *Plan) Path() string    { return p.FilePath }
func (p *Plan) Created() string { return p.Meta.Created }

// TopicMeta is the frontmatter of a topic hub. The slug is the identifier.
type TopicMeta struct {
	Slug        string
	Title       string
	Status      TopicStatus
	Tags        []string
	Description string
	Created     string
}

// Topic is a named aggregation hub. The aggregated seed/plan/report/source
// references are computed by the cache engine, not stored.
type Topic struct {
	Meta     TopicMeta
	FilePath string
}

func (t *Topic) Kind() Kind      { return KindTopic }
func (t *Topic) ID() string      { return t.Meta.Slug }
func (t *Topic) Path() string    { return t.FilePath }
func (t *Topic) Created() string { return t.Meta.Created }

// ReportMeta is the frontmatter of a finished research report.
type ReportMeta struct {
	ID      string
	Topic   string
	Plan    string
	RunID   string
	Status  ReportStatus
	Sources []string
	Created string
}

// Report is a research report with its executive brief extracted.
type Report struct {
	Meta     ReportMeta
	Title    string
	Brief    string
	FilePath string
}

func (r *Report) Kind() Kind      { return KindReport }
func (r *Report) ID() string      { return r.Meta.ID }
func (r *Report) Path() string    { return r.FilePath }
func (r *Report) Created() string { return r.Meta.Created }

// SourceMeta is the frontmatter of a source note.
type SourceMeta struct {
	ID      string
	Title   string
	Authors []string
	Year    int
	URL     string
	Quality Quality
	Created string
}

// Source is a source note with its one-sentence TL;DR extracted.
type Source struct {
	Meta        SourceMeta
	Title       string
	OneSentence string
	FilePath    string
}

func (s *Source) Kind() Kind      { return KindSource }
func (s *Source) ID() string      { return s.Meta.ID }
func (s *Source) Path() string    { return s.FilePath }
func (s *Source) Created() string { return s.Meta.Created }
