package gatekeeper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"researchdesk/internal/config"
	"researchdesk/internal/document"
	"researchdesk/internal/llm"
	"researchdesk/internal/store"
	"researchdesk/internal/vault"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// go.opencensus.io starts a background stats worker in its package
		// init; it is a transitive dependency, not a leak in this package.
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

func testGatekeeperConfig() config.Gatekeeper {
	return config.Gatekeeper{PromoteThreshold: 70}
}

// fakeClient scripts replies per prompt and records concurrency.
type fakeClient struct {
	available bool
	reply     func(prompt string) (string, error)

	mu          sync.Mutex
	calls       int
	inFlight    int
	maxInFlight int
}

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	return f.reply(prompt)
}

func (f *fakeClient) IsAvailable(ctx context.Context) bool { return f.available }

func newServiceWithStore(t *testing.T, client llm.Client, gk config.Gatekeeper) (*Service, *store.Store, vault.Store) {
	t.Helper()
	ws := t.TempDir()
	cfg := config.Default(ws)
	cfg.Gatekeeper = gk
	v := vault.NewOS(ws)
	st := store.New(v, cfg, zap.NewNop())
	require.NoError(t, st.RebuildAll())

	svc, err := NewService(client, st, gk, zap.NewNop())
	require.NoError(t, err)
	svc.batchPause = time.Millisecond
	return svc, st, v
}

func TestScoreUnavailableBackend(t *testing.T) {
	svc, _, _ := newServiceWithStore(t, &fakeClient{available: false}, testGatekeeperConfig())

	_, err := svc.Score(context.Background(), &document.Seed{Title: "x"})
	assert.ErrorIs(t, err, llm.ErrBackendUnavailable)
}

func TestScorePromptCarriesSeed(t *testing.T) {
	var gotPrompt string
	client := &fakeClient{available: true, reply: func(p string) (string, error) {
		gotPrompt = p
		return "Score: 50\nRationale: fine.", nil
	}}
	svc, _, _ := newServiceWithStore(t, client, testGatekeeperConfig())

	seed := &document.Seed{
		Meta:      document.SeedMeta{ID: "s1", Topic: "sleep", Priority: document.PriorityHigh},
		Title:     "Dream Recall",
		Summary:   "Recall varies with sleep stage.",
		Questions: []string{"What drives recall?"},
	}
	a, err := svc.Score(context.Background(), seed)
	require.NoError(t, err)

	assert.Equal(t, 50, a.Score)
	assert.Contains(t, gotPrompt, "Dream Recall")
	assert.Contains(t, gotPrompt, "Topic: sleep")
	assert.Contains(t, gotPrompt, "- What drives recall?")
	assert.Contains(t, gotPrompt, "Priority: high")
	assert.Contains(t, gotPrompt, "Novelty")
}

func TestScoreManyResilience(t *testing.T) {
	client := &fakeClient{available: true, reply: func(p string) (string, error) {
		if strings.Contains(p, "Title: seed-3") {
			return "", errors.New("boom")
		}
		return "Score: 60\nRationale: fine for a light pass over the evidence.", nil
	}}
	svc, _, _ := newServiceWithStore(t, client, testGatekeeperConfig())

	seeds := make([]*document.Seed, 7)
	for i := range seeds {
		seeds[i] = &document.Seed{
			Meta:  document.SeedMeta{ID: fmt.Sprintf("id-%d", i)},
			Title: fmt.Sprintf("seed-%d", i),
		}
	}

	results := svc.ScoreMany(context.Background(), seeds)
	require.Len(t, results, 7, "every seed gets a result")

	failed := 0
	for i, res := range results {
		require.NotNil(t, res.Seed, "result %d", i)
		if res.Err != nil {
			failed++
			assert.Equal(t, 0, res.Assessment.Score)
			assert.Equal(t, document.VerdictArchive, res.Assessment.Verdict)
			assert.Equal(t, fallbackRationale, res.Assessment.Rationale)
		} else {
			assert.Equal(t, 60, res.Assessment.Score)
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 7, client.calls)
	assert.LessOrEqual(t, client.maxInFlight, 3, "groups run at most three wide")
}

func TestScoreManyCancelledContext(t *testing.T) {
	client := &fakeClient{available: true, reply: func(p string) (string, error) {
		return "Score: 60\nRationale: ok.", nil
	}}
	svc, _, _ := newServiceWithStore(t, client, testGatekeeperConfig())
	svc.batchPause = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	seeds := []*document.Seed{
		{Meta: document.SeedMeta{ID: "a"}, Title: "a"},
		{Meta: document.SeedMeta{ID: "b"}, Title: "b"},
		{Meta: document.SeedMeta{ID: "c"}, Title: "c"},
		{Meta: document.SeedMeta{ID: "d"}, Title: "d"},
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	results := svc.ScoreMany(ctx, seeds)
	require.Len(t, results, 4)
	assert.ErrorIs(t, results[3].Err, context.Canceled)
}

func TestScoreAndRecord(t *testing.T) {
	client := &fakeClient{available: true, reply: func(p string) (string, error) {
		return "Score: 82\nVerdict: deep-research\nRationale: Worth the full treatment given the open questions.", nil
	}}
	svc, st, v := newServiceWithStore(t, client, testGatekeeperConfig())

	seed, err := st.CreateSeed("Recorded Seed", "summary", nil, "", "")
	require.NoError(t, err)

	a, err := svc.ScoreAndRecord(context.Background(), seed.Meta.ID)
	require.NoError(t, err)
	assert.Equal(t, 82, a.Score)

	cached, err := st.Seed(seed.Meta.ID)
	require.NoError(t, err)
	assert.Equal(t, document.SeedScored, cached.Meta.Status)
	assert.Equal(t, 82, cached.Meta.Score)
	assert.Equal(t, document.VerdictDeepResearch, cached.Meta.Verdict)

	// The outcome lands in the document body, not just the metadata.
	content, err := v.Read(seed.FilePath)
	require.NoError(t, err)
	assert.Contains(t, content, "- **Score**: 82")
	assert.Contains(t, content, "- **Verdict**: deep-research")
	assert.Contains(t, content, "- **Rationale**: Worth the full treatment given the open questions.")
}

func TestScoreAndRecordAutoPromote(t *testing.T) {
	client := &fakeClient{available: true, reply: func(p string) (string, error) {
		return `Score: 88
Verdict: deep-research
Rationale: Clearly qualifies for promotion on every criterion.
Top Sub-topics:
1. Mechanisms
2. Interventions`, nil
	}}
	gk := config.Gatekeeper{PromoteThreshold: 70, AutoPromote: true}
	svc, st, _ := newServiceWithStore(t, client, gk)

	seed, err := st.CreateSeed("Auto Promoted", "summary", nil, "sleep", "")
	require.NoError(t, err)

	_, err = svc.ScoreAndRecord(context.Background(), seed.Meta.ID)
	require.NoError(t, err)

	promoted, err := st.Seed(seed.Meta.ID)
	require.NoError(t, err)
	assert.Equal(t, document.SeedPromoted, promoted.Meta.Status)

	plans := st.Plans(store.Filter{Topic: "sleep"})
	require.Len(t, plans, 1)
	assert.Equal(t, seed.Meta.ID, plans[0].Meta.Seed)
	assert.Equal(t, []string{"Mechanisms", "Interventions"}, plans[0].SubQuestions)
}

func TestSubQuestionsPadding(t *testing.T) {
	client := &fakeClient{available: true, reply: func(p string) (string, error) {
		return "1. First question?\n2. Second question?", nil
	}}
	svc, _, _ := newServiceWithStore(t, client, testGatekeeperConfig())

	seed := &document.Seed{
		Meta:      document.SeedMeta{ID: "s"},
		Title:     "Padding",
		Questions: []string{"From the seed?"},
	}
	qs, err := svc.SubQuestions(context.Background(), seed)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(qs), minSubQuestions)
	assert.LessOrEqual(t, len(qs), maxSubQuestions)
	assert.Equal(t, "First question?", qs[0])
	assert.Contains(t, qs, "From the seed?")
}

func TestValidate(t *testing.T) {
	svc, _, _ := newServiceWithStore(t, &fakeClient{}, testGatekeeperConfig())

	good := Assessment{
		Score:     82,
		Verdict:   document.VerdictDeepResearch,
		Rationale: "A full, meaningful explanation of the verdict.",
		SubTopics: []string{"one"},
		Breakdown: map[string]int{"novelty": 16, "clinical_value": 16, "research_readiness": 17, "synthesis_potential": 16, "personal_relevance": 17},
	}
	assert.Empty(t, svc.Validate(good))

	bad := good
	bad.Breakdown = map[string]int{"novelty": 5}
	bad.Verdict = document.VerdictArchive
	bad.Rationale = "short"
	bad.SubTopics = nil
	issues := svc.Validate(bad)
	assert.Len(t, issues, 4)
}

func TestValidateVerdictWindows(t *testing.T) {
	svc, _, _ := newServiceWithStore(t, &fakeClient{}, testGatekeeperConfig())

	base := Assessment{
		Rationale: "A full, meaningful explanation of the verdict.",
		SubTopics: []string{"one"},
	}
	cases := []struct {
		name    string
		verdict document.Verdict
		score   int
		ok      bool
	}{
		{"deep just under band", document.VerdictDeepResearch, 75, true},
		{"deep at margin floor", document.VerdictDeepResearch, 70, true},
		{"deep far below band", document.VerdictDeepResearch, 65, false},
		{"light just under band", document.VerdictLightScan, 45, true},
		{"light above deep band", document.VerdictLightScan, 85, false},
		{"archive just over band", document.VerdictArchive, 55, true},
		{"archive far over band", document.VerdictArchive, 70, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := base
			a.Verdict = tc.verdict
			a.Score = tc.score
			issues := svc.Validate(a)
			if tc.ok {
				assert.Empty(t, issues)
			} else {
				assert.Len(t, issues, 1)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	svc, _, _ := newServiceWithStore(t, &fakeClient{}, testGatekeeperConfig())

	seeds := []*document.Seed{
		{Meta: document.SeedMeta{Score: 85, Verdict: document.VerdictDeepResearch}},
		{Meta: document.SeedMeta{Score: 55, Verdict: document.VerdictLightScan}},
		{Meta: document.SeedMeta{Score: 20, Verdict: document.VerdictArchive}},
		{Meta: document.SeedMeta{}},
	}
	st := svc.Summarize(seeds)

	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 3, st.Scored)
	assert.Equal(t, 1, st.Qualifying)
	assert.InDelta(t, 53.3, st.MeanScore, 0.1)
	assert.Equal(t, 1, st.ByVerdict[document.VerdictDeepResearch])
}

func TestSummarizeBatch(t *testing.T) {
	svc, _, _ := newServiceWithStore(t, &fakeClient{}, testGatekeeperConfig())

	results := []Result{
		{Assessment: Assessment{
			Breakdown: map[string]int{"novelty": 10, "clinical_value": 20},
			SubTopics: []string{"mechanisms", "dosage"},
		}},
		{Assessment: Assessment{
			Breakdown: map[string]int{"novelty": 20},
			SubTopics: []string{"mechanisms"},
		}},
		{Err: errors.New("failed"), Assessment: Assessment{Breakdown: map[string]int{"novelty": 99}}},
	}
	bs := svc.SummarizeBatch(results)

	assert.InDelta(t, 15.0, bs.CriterionMeans["novelty"], 0.001)
	assert.InDelta(t, 20.0, bs.CriterionMeans["clinical_value"], 0.001)
	assert.Equal(t, []string{"mechanisms"}, bs.CommonSubTopics)
}
