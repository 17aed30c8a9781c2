package store

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"researchdesk/internal/config"
	"researchdesk/internal/document"
	"researchdesk/internal/frontmatter"
	"researchdesk/internal/vault"
)

func newTestStore(t *testing.T) (*Store, vault.Store) {
	t.Helper()
	ws := t.TempDir()
	cfg := config.Default(ws)
	v := vault.NewOS(ws)
	s := New(v, cfg, zap.NewNop())
	require.NoError(t, s.RebuildAll())
	return s, v
}

func TestCreateSeedCachesImmediately(t *testing.T) {
	s, v := newTestStore(t)

	seed, err := s.CreateSeed("Self-Trust in Therapy", "Clients recover faster.",
		[]string{"How is it measured?"}, "self-trust", document.PriorityHigh)
	require.NoError(t, err)

	assert.NotEmpty(t, seed.Meta.ID)
	assert.Equal(t, document.SeedCaptured, seed.Meta.Status)
	assert.Equal(t, "Self-Trust in Therapy", seed.Title)
	assert.Equal(t, []string{"How is it measured?"}, seed.Questions)

	content, err := v.Read(seed.FilePath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(content, "---\n"))
	assert.Contains(t, content, `type: "seed"`)
	assert.Contains(t, content, "# Seed: Self-Trust in Therapy")
}

func TestRebuildIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.CreateTopic("Sleep Research", "Sleep and memory.", []string{"sleep"})
	require.NoError(t, err)
	_, err = s.CreateSeed("Dream Recall", "spark", nil, "sleep-research", "")
	require.NoError(t, err)

	first := s.Counts()
	require.NoError(t, s.RebuildAll())
	second := s.Counts()
	require.NoError(t, s.RebuildAll())
	third := s.Counts()

	assert.Empty(t, cmp.Diff(first, second))
	assert.Empty(t, cmp.Diff(second, third))
}

func TestRebuildSkipsMalformedFiles(t *testing.T) {
	s, v := newTestStore(t)

	_, err := s.CreateSeed("Good Seed", "x", nil, "", "")
	require.NoError(t, err)
	require.NoError(t, v.Write("01_Inbox/Seeds/scratch.md", "just notes, no frontmatter\n"))
	require.NoError(t, v.Write("01_Inbox/Seeds/alien.md", "---\ntype: \"journal\"\n---\n\nbody\n"))

	require.NoError(t, s.RebuildAll())
	assert.Equal(t, 1, s.Counts()[document.KindSeed])
}

func TestUpdatePreservesBody(t *testing.T) {
	s, v := newTestStore(t)

	seed, err := s.CreateSeed("Update Target", "summary text", []string{"q1"}, "", "")
	require.NoError(t, err)

	before, err := v.Read(seed.FilePath)
	require.NoError(t, err)
	_, bodyBefore, ok := frontmatter.Parse(before)
	require.True(t, ok)

	patch := frontmatter.NewFields()
	patch.Set("status", frontmatter.String(string(document.SeedArchived)))
	patch.Set("score", frontmatter.Int(12))
	require.NoError(t, s.Update(document.KindSeed, seed.Meta.ID, patch))

	after, err := v.Read(seed.FilePath)
	require.NoError(t, err)
	fields, bodyAfter, ok := frontmatter.Parse(after)
	require.True(t, ok)

	assert.Equal(t, bodyBefore, bodyAfter, "frontmatter update must not touch the body")
	assert.Equal(t, "archived", fields.Str("status"))
	assert.Equal(t, "12", fields.Str("score"))

	cached, err := s.Seed(seed.Meta.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, cached.Meta.Score)
	assert.Equal(t, document.SeedArchived, cached.Meta.Status)
}

func TestRecordAssessmentWritesBody(t *testing.T) {
	s, v := newTestStore(t)

	seed, err := s.CreateSeed("Assessed Seed", "spark text", []string{"q1"}, "", "")
	require.NoError(t, err)

	before, err := v.Read(seed.FilePath)
	require.NoError(t, err)
	require.Contains(t, before, "- **Score**:\n", "template ships placeholder bullets")

	note := document.AssessmentNote{
		Score:     82,
		Verdict:   document.VerdictDeepResearch,
		Rationale: "Well grounded and directly actionable.",
		SubTopics: []string{"measurement", "interventions"},
	}
	require.NoError(t, s.RecordAssessment(seed.Meta.ID, note))

	after, err := v.Read(seed.FilePath)
	require.NoError(t, err)
	fields, body, ok := frontmatter.Parse(after)
	require.True(t, ok)

	assert.Equal(t, "scored", fields.Str("status"))
	assert.Equal(t, "82", fields.Str("score"))
	assert.Equal(t, "deep-research", fields.Str("verdict"))

	assert.Contains(t, body, "- **Score**: 82")
	assert.Contains(t, body, "- **Rationale**: Well grounded and directly actionable.")
	assert.Contains(t, body, "  1. measurement")
	assert.Contains(t, body, "  2. interventions")
	assert.NotContains(t, body, "- **Score**:\n", "placeholders are replaced")

	// Sections outside the assessment survive byte-for-byte.
	assert.Contains(t, body, "spark text")
	assert.Contains(t, body, "## Initial Questions")

	cached, err := s.Seed(seed.Meta.ID)
	require.NoError(t, err)
	assert.Equal(t, 82, cached.Meta.Score)
	assert.Equal(t, document.VerdictDeepResearch, cached.Meta.Verdict)
	assert.Equal(t, document.SeedScored, cached.Meta.Status)
	assert.Equal(t, "spark text", cached.Summary, "spark section still parses")
}

func TestHandleEventLifecycle(t *testing.T) {
	s, v := newTestStore(t)

	meta := document.SeedMeta{ID: "ev-1", Status: document.SeedCaptured, Created: "2026-01-05"}
	path := "01_Inbox/Seeds/external.md"
	require.NoError(t, v.Write(path, frontmatter.Render(meta.Fields(), "# Seed: External\n")))

	s.HandleEvent(vault.Event{Op: vault.OpCreated, Path: path})
	seed, err := s.Seed("ev-1")
	require.NoError(t, err)
	assert.Equal(t, "External", seed.Title)

	meta.Status = document.SeedArchived
	require.NoError(t, v.Write(path, frontmatter.Render(meta.Fields(), "# Seed: External\n")))
	s.HandleEvent(vault.Event{Op: vault.OpModified, Path: path})
	seed, err = s.Seed("ev-1")
	require.NoError(t, err)
	assert.Equal(t, document.SeedArchived, seed.Meta.Status)

	s.HandleEvent(vault.Event{Op: vault.OpDeleted, Path: path})
	_, err = s.Seed("ev-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeedsFilterAndOrder(t *testing.T) {
	s, v := newTestStore(t)

	write := func(id, topic, status, created string, score int) {
		meta := document.SeedMeta{
			ID: id, Topic: topic, Status: document.SeedStatus(status),
			Score: score, Created: created,
		}
		path := "01_Inbox/Seeds/" + id + ".md"
		require.NoError(t, v.Write(path, frontmatter.Render(meta.Fields(), "# Seed: "+id+"\n")))
	}
	write("a", "sleep", "captured", "2026-01-01", 0)
	write("b", "sleep", "scored", "2026-01-03", 85)
	write("c", "focus", "scored", "2026-01-02", 40)
	write("d", "sleep", "scored", "", 90)
	require.NoError(t, s.RebuildAll())

	all := s.Seeds(Filter{})
	require.Len(t, all, 4)
	assert.Equal(t, "b", all[0].Meta.ID)
	assert.Equal(t, "d", all[3].Meta.ID, "undated documents sort last")

	sleep := s.Seeds(Filter{Topic: "sleep", Status: "scored"})
	require.Len(t, sleep, 2)

	high := s.Seeds(Filter{MinScore: 80})
	require.Len(t, high, 2)

	window := s.Seeds(Filter{From: "2026-01-02", To: "2026-01-03"})
	require.Len(t, window, 2)
}

func TestSnapshotsDoNotAliasCache(t *testing.T) {
	s, _ := newTestStore(t)

	seed, err := s.CreateSeed("Alias Check", "x", nil, "", "")
	require.NoError(t, err)

	seed.Meta.Score = 99
	fresh, err := s.Seed(seed.Meta.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.Meta.Score)
}

func TestPromoteSeed(t *testing.T) {
	s, _ := newTestStore(t)

	seed, err := s.CreateSeed("Promotable", "thesis material", []string{"q1", "q2"}, "sleep", "")
	require.NoError(t, err)
	require.NoError(t, s.RecordAssessment(seed.Meta.ID, document.AssessmentNote{
		Score: 85, Verdict: document.VerdictDeepResearch, Rationale: "Ready to plan.",
	}))

	plan, err := s.PromoteSeed(seed.Meta.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, seed.Meta.ID, plan.Meta.Seed)
	assert.Equal(t, "sleep", plan.Meta.Topic)
	assert.Equal(t, document.PlanPlanned, plan.Meta.Status)
	assert.Equal(t, []string{"q1", "q2"}, plan.SubQuestions)

	promoted, err := s.Seed(seed.Meta.ID)
	require.NoError(t, err)
	assert.Equal(t, document.SeedPromoted, promoted.Meta.Status)

	_, err = s.PromoteSeed(seed.Meta.ID, nil)
	assert.Error(t, err, "double promotion must fail")
}

func TestTopicView(t *testing.T) {
	s, v := newTestStore(t)

	topic, err := s.CreateTopic("Sleep", "Sleep research hub.", nil)
	require.NoError(t, err)
	_, err = s.CreateSeed("Seeded", "x", nil, topic.Meta.Slug, "")
	require.NoError(t, err)

	srcMeta := document.SourceMeta{ID: "src-1", Title: "Paper", Quality: document.QualityStrong, Created: "2026-01-01"}
	require.NoError(t, v.Write("02_Research/Sources/src-1.md",
		frontmatter.Render(srcMeta.Fields(), "# Paper\n")))
	repMeta := document.ReportMeta{
		ID: "rep-1", Topic: topic.Meta.Slug, Status: document.ReportComplete,
		Sources: []string{"src-1"}, Created: "2026-01-02",
	}
	require.NoError(t, v.Write("02_Research/Reports/rep-1.md",
		frontmatter.Render(repMeta.Fields(), "# Deep Research Report: R\n")))
	require.NoError(t, s.RebuildAll())

	view, err := s.View(topic.Meta.Slug)
	require.NoError(t, err)
	assert.Len(t, view.Seeds, 1)
	assert.Len(t, view.Reports, 1)
	require.Len(t, view.Sources, 1)
	assert.Equal(t, "src-1", view.Sources[0].Meta.ID)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "self-trust-in-therapy", Slugify("Self-Trust in Therapy!"))
	assert.Equal(t, "a-b", Slugify("  A -- b  "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestCreatedDateUsesClock(t *testing.T) {
	s, _ := newTestStore(t)
	s.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }

	seed, err := s.CreateSeed("Clocked", "x", nil, "", "")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14", seed.Meta.Created)
}
