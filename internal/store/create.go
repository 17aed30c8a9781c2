package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"researchdesk/internal/document"
	"researchdesk/internal/frontmatter"
)

// CreateSeed captures a new research idea as a file and caches it.
func (s *Store) CreateSeed(title, summary string, questions []string, topic string, priority document.Priority) (*document.Seed, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("create seed: empty title")
	}
	if priority == "" {
		priority = document.PriorityMedium
	}

	meta := document.SeedMeta{
		ID:       uuid.NewString(),
		Topic:    topic,
		Status:   document.SeedCaptured,
		Priority: priority,
		Created:  s.today(),
	}

	body, err := s.renderer.Render(document.TemplateSeed, map[string]string{
		"title":     title,
		"summary":   summary,
		"questions": bulletList(questions),
	})
	if err != nil {
		return nil, fmt.Errorf("create seed: %w", err)
	}

	path := s.cfg.Paths.Seeds + "/" + fileName(title, meta.ID)
	if err := s.createDocument(path, meta.Fields(), body); err != nil {
		return nil, fmt.Errorf("create seed: %w", err)
	}
	return s.Seed(meta.ID)
}

// CreateTopic creates a new topic hub. The slug is derived from the title and
// doubles as the identifier and file name.
func (s *Store) CreateTopic(title, description string, tags []string) (*document.Topic, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("create topic: empty title")
	}
	slug := Slugify(title)
	if _, err := s.Topic(slug); err == nil {
		return nil, fmt.Errorf("create topic: %s already exists", slug)
	}

	meta := document.TopicMeta{
		Slug:        slug,
		Title:       title,
		Status:      document.TopicActive,
		Tags:        tags,
		Description: description,
		Created:     s.today(),
	}

	body, err := s.renderer.Render(document.TemplateTopic, map[string]string{
		"title":       title,
		"description": description,
	})
	if err != nil {
		return nil, fmt.Errorf("create topic: %w", err)
	}

	path := s.cfg.Paths.Topics + "/" + slug + ".md"
	if err := s.createDocument(path, meta.Fields(), body); err != nil {
		return nil, fmt.Errorf("create topic: %w", err)
	}
	return s.Topic(slug)
}

// CreatePlan creates a research plan derived from a seed. The seed itself is
// not modified; PromoteSeed handles the full transition.
func (s *Store) CreatePlan(seed *document.Seed, thesis string, subQuestions []string) (*document.Plan, error) {
	meta := document.PlanMeta{
		ID:      uuid.NewString(),
		Topic:   seed.Meta.Topic,
		Seed:    seed.Meta.ID,
		Status:  document.PlanPlanned,
		Created: s.today(),
	}
	if thesis == "" {
		thesis = seed.Summary
	}
	if len(subQuestions) == 0 {
		subQuestions = seed.Questions
	}

	body, err := s.renderer.Render(document.TemplatePlan, map[string]string{
		"title":            seed.Title,
		"primary_question": seed.Title,
		"thesis":           thesis,
		"sub_questions":    numberedList(subQuestions),
		"deliverables":     bulletList(meta.Deliverables),
	})
	if err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	path := s.cfg.Paths.Plans + "/" + fileName(seed.Title, meta.ID)
	if err := s.createDocument(path, meta.Fields(), body); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	return s.Plan(meta.ID)
}

// PromoteSeed turns a seed into a research plan and marks the seed promoted.
// subQuestions seeds the plan's question list; empty falls back to the seed's
// own initial questions.
func (s *Store) PromoteSeed(id string, subQuestions []string) (*document.Plan, error) {
	seed, err := s.Seed(id)
	if err != nil {
		return nil, err
	}
	if seed.Meta.Status == document.SeedPromoted {
		return nil, fmt.Errorf("promote: seed %s already promoted", id)
	}

	plan, err := s.CreatePlan(seed, "", subQuestions)
	if err != nil {
		return nil, err
	}

	patch := frontmatter.NewFields()
	patch.Set("status", frontmatter.String(string(document.SeedPromoted)))
	if err := s.Update(document.KindSeed, id, patch); err != nil {
		return nil, fmt.Errorf("promote: %w", err)
	}
	s.log.Info("seed promoted",
		zap.String("seed", id),
		zap.String("plan", plan.Meta.ID))
	return plan, nil
}

// Update patches the frontmatter of a cached document on disk and re-caches
// it. The body is left byte-identical; only the listed keys change.
func (s *Store) Update(kind document.Kind, id string, patch *frontmatter.Fields) error {
	doc, err := s.Get(kind, id)
	if err != nil {
		return err
	}

	content, err := s.vault.Read(doc.Path())
	if err != nil {
		return fmt.Errorf("update %s %s: %w", kind, id, err)
	}
	updated, ok := frontmatter.Update(content, patch)
	if !ok {
		return fmt.Errorf("update %s %s: %w", kind, id, ErrMalformedDocument)
	}
	if err := s.vault.Write(doc.Path(), updated); err != nil {
		return fmt.Errorf("update %s %s: %w", kind, id, err)
	}
	return s.loadPath(doc.Path())
}

// RecordAssessment writes a gatekeeper outcome onto a seed. The frontmatter
// gains status=scored plus the score and verdict, and the body's assessment
// section is rewritten with the full result, rationale and sub-topics
// included. Every other line of the body survives unchanged.
func (s *Store) RecordAssessment(id string, note document.AssessmentNote) error {
	seed, err := s.Seed(id)
	if err != nil {
		return err
	}

	content, err := s.vault.Read(seed.FilePath)
	if err != nil {
		return fmt.Errorf("record assessment %s: %w", id, err)
	}
	fields, body, ok := frontmatter.Parse(content)
	if !ok {
		return fmt.Errorf("record assessment %s: %w", id, ErrMalformedDocument)
	}

	fields.Set("status", frontmatter.String(string(document.SeedScored)))
	fields.Set("score", frontmatter.Int(note.Score))
	fields.Set("verdict", frontmatter.String(string(note.Verdict)))
	body = document.WriteAssessment(body, note)

	if err := s.vault.Write(seed.FilePath, frontmatter.Join(fields, body)); err != nil {
		return fmt.Errorf("record assessment %s: %w", id, err)
	}
	return s.loadPath(seed.FilePath)
}

// createDocument renders and writes a new file, then caches it.
func (s *Store) createDocument(path string, fields *frontmatter.Fields, body string) error {
	if err := s.vault.Create(path, frontmatter.Render(fields, body)); err != nil {
		return err
	}
	return s.loadPath(path)
}

func (s *Store) today() string {
	return s.now().Format("2006-01-02")
}

// Slugify lowercases a title into a dash-separated identifier.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// fileName builds a readable, collision-free file name from a title and a
// uuid: the sanitized title plus the first id segment.
func fileName(title, id string) string {
	stem := Slugify(title)
	if stem == "" {
		stem = "untitled"
	}
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return stem + "_" + short + ".md"
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- " + item)
	}
	return b.String()
}

func numberedList(items []string) string {
	if len(items) == 0 {
		return "1."
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, item)
	}
	return b.String()
}
