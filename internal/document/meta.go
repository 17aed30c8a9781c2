package document

import (
	"strconv"

	"researchdesk/internal/frontmatter"
)

// Frontmatter keys shared across kinds.
const (
	keyType    = "type"
	keyID      = "id"
	keyCreated = "created"
)

// SeedMetaFromFields builds seed metadata from a parsed frontmatter block.
// Unknown or missing values fall back to zero defaults; the caller has
// already verified type=seed.
func SeedMetaFromFields(f *frontmatter.Fields) SeedMeta {
	verdict, _ := ParseVerdict(f.Str("verdict"))
	return SeedMeta{
		ID:       f.Str(keyID),
		Topic:    f.Str("topic"),
		Status:   SeedStatus(f.Str("status")),
		Priority: Priority(f.Str("priority")),
		Score:    f.Int("score", 0),
		Verdict:  verdict,
		Created:  f.Str(keyCreated),
	}
}

// Fields renders seed metadata in its canonical key order.
func (m SeedMeta) Fields() *frontmatter.Fields {
	f := frontmatter.NewFields()
	f.Set(keyType, frontmatter.String(string(KindSeed)))
	f.Set(keyID, frontmatter.String(m.ID))
	f.Set("topic", frontmatter.String(m.Topic))
	f.Set("status", frontmatter.String(string(m.Status)))
	f.Set("priority", frontmatter.String(string(m.Priority)))
	f.Set(keyCreated, frontmatter.String(m.Created))
	f.Set("score", frontmatter.Int(m.Score))
	f.Set("verdict", frontmatter.String(string(m.Verdict)))
	return f
}

// PlanMetaFromFields builds plan metadata from a parsed frontmatter block.
func PlanMetaFromFields(f *frontmatter.Fields) PlanMeta {
	return PlanMeta{
		ID:           f.Str(keyID),
		Topic:        f.Str("topic"),
		Seed:         f.Str("seed"),
		Status:       PlanStatus(f.Str("status")),
		Deliverables: f.StrList("deliverables"),
		RunID:        f.Str("run_id"),
		Created:      f.Str(keyCreated),
	}
}

// Fields renders plan metadata in its canonical key order.
func (m PlanMeta) Fields() *frontmatter.Fields {
	f := frontmatter.NewFields()
	f.Set(keyType, frontmatter.String(string(KindPlan)))
	f.Set(keyID, frontmatter.String(m.ID))
	f.Set("topic", frontmatter.String(m.Topic))
	f.Set("seed", frontmatter.String(m.Seed))
	f.Set("status", frontmatter.String(string(m.Status)))
	f.Set(keyCreated, frontmatter.String(m.Created))
	f.Set("deliverables", frontmatter.List(m.Deliverables...))
	f.Set("run_id", frontmatter.String(m.RunID))
	return f
}

// TopicMetaFromFields builds topic metadata from a parsed frontmatter block.
func TopicMetaFromFields(f *frontmatter.Fields) TopicMeta {
	return TopicMeta{
		Slug:        f.Str("slug"),
		Title:       f.Str("title"),
		Status:      TopicStatus(f.Str("status")),
		Tags:        f.StrList("tags"),
		Description: f.Str("description"),
		Created:     f.Str(keyCreated),
	}
}

// Fields renders topic metadata in its canonical key order.
func (m TopicMeta) Fields() *frontmatter.Fields {
	f := frontmatter.NewFields()
	f.Set(keyType, frontmatter.String(string(KindTopic)))
	f.Set("slug", frontmatter.String(m.Slug))
	f.Set("title", frontmatter.String(m.Title))
	f.Set("status", frontmatter.String(string(m.Status)))
	f.Set(keyCreated, frontmatter.String(m.Created))
	if len(m.Tags) > 0 {
		f.Set("tags", frontmatter.List(m.Tags...))
	}
	f.Set("description", frontmatter.String(m.Description))
	return f
}

// ReportMetaFromFields builds report metadata from a parsed frontmatter block.
func ReportMetaFromFields(f *frontmatter.Fields) ReportMeta {
	return ReportMeta{
		ID:      f.Str(keyID),
		Topic:   f.Str("topic"),
		Plan:    f.Str("plan"),
		RunID:   f.Str("run_id"),
		Status:  ReportStatus(f.Str("status")),
		Sources: f.StrList("sources"),
		Created: f.Str(keyCreated),
	}
}

// Fields renders report metadata in its canonical key order.
func (m ReportMeta) Fields() *frontmatter.Fields {
	f := frontmatter.NewFields()
	f.Set(keyType, frontmatter.String(string(KindReport)))
	f.Set(keyID, frontmatter.String(m.ID))
	f.Set("topic", frontmatter.String(m.Topic))
	f.Set("plan", frontmatter.String(m.Plan))
	f.Set("run_id", frontmatter.String(m.RunID))
	f.Set("status", frontmatter.String(string(m.Status)))
	f.Set(keyCreated, frontmatter.String(m.Created))
	f.Set("sources", frontmatter.List(m.Sources...))
	return f
}

// SourceMetaFromFields builds source metadata from a parsed frontmatter block.
func SourceMetaFromFields(f *frontmatter.Fields) SourceMeta {
	year, _ := strconv.Atoi(f.Str("year"))
	return SourceMeta{
		ID:      f.Str(keyID),
		Title:   f.Str("title"),
		Authors: f.StrList("authors"),
		Year:    year,
		URL:     f.Str("url"),
		Quality: Quality(f.Str("quality")),
		Created: f.Str(keyCreated),
	}
}

// Fields renders source metadata in its canonical key order.
func (m SourceMeta) Fields() *frontmatter.Fields {
	f := frontmatter.NewFields()
	f.Set(keyType, frontmatter.String(string(KindSource)))
	f.Set(keyID, frontmatter.String(m.ID))
	f.Set("title", frontmatter.String(m.Title))
	if len(m.Authors) > 0 {
		f.Set("authors", frontmatter.List(m.Authors...))
	}
	if m.Year > 0 {
		f.Set("year", frontmatter.Int(m.Year))
	}
	if m.URL != "" {
		f.Set("url", frontmatter.String(m.URL))
	}
	f.Set("quality", frontmatter.String(string(m.Quality)))
	f.Set(keyCreated, frontmatter.String(m.Created))
	return f
}
