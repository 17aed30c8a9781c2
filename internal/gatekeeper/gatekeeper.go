// Package gatekeeper scores captured seeds through an LLM backend and routes
// them by verdict. Replies are parsed defensively: the pipeline degrades to
// derived scores and catalog sub-topics rather than failing a batch.
package gatekeeper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"researchdesk/internal/config"
	"researchdesk/internal/document"
	"researchdesk/internal/llm"
	"researchdesk/internal/store"
)

const (
	scoringTemperature = 0.3
	scoringMaxTokens   = 500

	minSubQuestions = 6
	maxSubQuestions = 9
)

// fallbackRationale marks assessments produced without a model reply.
const fallbackRationale = "Scoring failed - manual review required"

// Service runs gatekeeper assessments against a generation backend.
type Service struct {
	client llm.Client
	store  *store.Store
	rubric *Rubric
	log    *zap.Logger

	threshold   int
	autoPromote bool

	// Batch pacing; tests shrink these.
	groupSize  int
	batchPause time.Duration
}

// NewService creates a scoring service.
func NewService(client llm.Client, st *store.Store, gk config.Gatekeeper, log *zap.Logger) (*Service, error) {
	rubric, err := LoadRubric()
	if err != nil {
		return nil, err
	}
	return &Service{
		client:      client,
		store:       st,
		rubric:      rubric,
		log:         log.Named("gatekeeper"),
		threshold:   gk.PromoteThreshold,
		autoPromote: gk.AutoPromote,
		groupSize:   3,
		batchPause:  time.Second,
	}, nil
}

// Rubric exposes the loaded rubric.
func (s *Service) Rubric() *Rubric { return s.rubric }

// Score assesses a single seed. The only error cases are an unavailable
// backend and a failed generation; a garbled reply still yields an
// assessment.
func (s *Service) Score(ctx context.Context, seed *document.Seed) (Assessment, error) {
	if !s.client.IsAvailable(ctx) {
		return Assessment{}, fmt.Errorf("%w: %s", llm.ErrBackendUnavailable, s.client.Name())
	}

	reply, err := s.client.Generate(ctx, s.BuildPrompt(seed), llm.Options{
		Temperature: scoringTemperature,
		MaxTokens:   scoringMaxTokens,
	})
	if err != nil {
		return Assessment{}, fmt.Errorf("score seed %s: %w", seed.Meta.ID, err)
	}

	a := s.parseReply(reply)
	s.log.Info("seed assessed",
		zap.String("seed", seed.Meta.ID),
		zap.Int("score", a.Score),
		zap.String("verdict", string(a.Verdict)))
	return a, nil
}

// Result pairs a seed with its assessment outcome. Err is set when the
// backend call failed; Assessment then holds the fallback.
type Result struct {
	Seed       *document.Seed
	Assessment Assessment
	Err        error
}

// ScoreMany assesses seeds in small concurrent groups with a pause between
// groups, so a large batch does not hammer the backend. Every input seed gets
// exactly one result, failures included.
func (s *Service) ScoreMany(ctx context.Context, seeds []*document.Seed) []Result {
	results := make([]Result, len(seeds))

	for start := 0; start < len(seeds); start += s.groupSize {
		end := start + s.groupSize
		if end > len(seeds) {
			end = len(seeds)
		}

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				a, err := s.Score(ctx, seeds[i])
				if err != nil {
					s.log.Warn("seed scoring failed",
						zap.String("seed", seeds[i].Meta.ID), zap.Error(err))
					a = s.fallbackAssessment()
				}
				results[i] = Result{Seed: seeds[i], Assessment: a, Err: err}
				return nil
			})
		}
		g.Wait()

		if end < len(seeds) {
			select {
			case <-ctx.Done():
				for i := end; i < len(seeds); i++ {
					results[i] = Result{Seed: seeds[i], Assessment: s.fallbackAssessment(), Err: ctx.Err()}
				}
				return results
			case <-time.After(s.batchPause):
			}
		}
	}
	return results
}

// fallbackAssessment is recorded when a seed cannot be scored at all.
func (s *Service) fallbackAssessment() Assessment {
	return Assessment{
		Score:     0,
		Verdict:   document.VerdictArchive,
		Rationale: fallbackRationale,
		SubTopics: s.rubric.Fallback(document.VerdictArchive),
		Breakdown: map[string]int{},
	}
}

// ScoreAndRecord assesses the seed and writes the outcome back to its file:
// status becomes scored, the score and verdict fields are set, and the body's
// assessment section gets the rationale and sub-topics. With auto-promotion
// enabled, a qualifying seed is promoted immediately, seeded with the
// assessment's sub-topics.
func (s *Service) ScoreAndRecord(ctx context.Context, id string) (Assessment, error) {
	seed, err := s.store.Seed(id)
	if err != nil {
		return Assessment{}, err
	}

	a, err := s.Score(ctx, seed)
	if err != nil {
		return Assessment{}, err
	}
	if err := s.store.RecordAssessment(id, a.Note()); err != nil {
		return Assessment{}, err
	}

	if s.autoPromote && a.Score >= s.threshold {
		if _, err := s.store.PromoteSeed(id, a.SubTopics); err != nil {
			return a, fmt.Errorf("auto-promote seed %s: %w", id, err)
		}
	}
	return a, nil
}

// SubQuestions asks the backend to decompose a seed into research
// sub-questions, padded from the seed's own questions when the reply falls
// short of the minimum.
func (s *Service) SubQuestions(ctx context.Context, seed *document.Seed) ([]string, error) {
	if !s.client.IsAvailable(ctx) {
		return nil, fmt.Errorf("%w: %s", llm.ErrBackendUnavailable, s.client.Name())
	}

	reply, err := s.client.Generate(ctx, s.BuildSubQuestionsPrompt(seed), llm.Options{
		Temperature: scoringTemperature,
		MaxTokens:   scoringMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("sub-questions for seed %s: %w", seed.Meta.ID, err)
	}

	var out []string
	for _, m := range numberedRe.FindAllStringSubmatch(reply, -1) {
		if q := cleanLine(m[1]); q != "" {
			out = append(out, q)
		}
		if len(out) == maxSubQuestions {
			break
		}
	}
	for _, q := range seed.Questions {
		if len(out) >= minSubQuestions {
			break
		}
		out = append(out, q)
	}
	for len(out) < minSubQuestions {
		out = append(out, fmt.Sprintf("What does current evidence say about %s?", seed.Title))
	}
	return out, nil
}

// Validate cross-checks an assessment against the rubric and returns
// human-readable issues. An empty slice means the assessment is coherent.
func (s *Service) Validate(a Assessment) []string {
	var issues []string

	if len(a.Breakdown) > 0 {
		sum := 0
		for _, points := range a.Breakdown {
			sum += points
		}
		if diff := sum - a.Score; diff > s.rubric.ScoreTolerance || diff < -s.rubric.ScoreTolerance {
			issues = append(issues, fmt.Sprintf("criteria sum %d disagrees with score %d beyond tolerance %d", sum, a.Score, s.rubric.ScoreTolerance))
		}
	}
	if !s.rubric.VerdictPlausible(a.Verdict, a.Score) {
		issues = append(issues, fmt.Sprintf("verdict %s is implausible for score %d (band verdict %s, margin %d)", a.Verdict, a.Score, s.rubric.VerdictFor(a.Score), s.rubric.VerdictMargin))
	}
	if len(a.Rationale) < 20 {
		issues = append(issues, "rationale is too short to be meaningful")
	}
	if len(a.SubTopics) == 0 {
		issues = append(issues, "no sub-topics")
	}
	return issues
}

// Stats summarizes assessment outcomes over a set of seeds.
type Stats struct {
	Total      int
	Scored     int
	Qualifying int
	MeanScore  float64
	ByVerdict  map[document.Verdict]int
}

// Summarize computes assessment statistics for the given seeds. Unscored
// seeds count toward Total only.
func (s *Service) Summarize(seeds []*document.Seed) Stats {
	st := Stats{Total: len(seeds), ByVerdict: make(map[document.Verdict]int)}
	sum := 0
	for _, seed := range seeds {
		if seed.Meta.Verdict == document.VerdictNone {
			continue
		}
		st.Scored++
		sum += seed.Meta.Score
		st.ByVerdict[seed.Meta.Verdict]++
		if seed.Meta.Score >= s.threshold {
			st.Qualifying++
		}
	}
	if st.Scored > 0 {
		st.MeanScore = float64(sum) / float64(st.Scored)
	}
	return st
}

// BatchStats summarizes one scoring run: mean points per rubric criterion and
// the sub-topics the model proposed most often. Failed results are skipped.
type BatchStats struct {
	CriterionMeans  map[string]float64
	CommonSubTopics []string
}

// SummarizeBatch computes batch statistics over ScoreMany results.
func (s *Service) SummarizeBatch(results []Result) BatchStats {
	bs := BatchStats{CriterionMeans: make(map[string]float64)}

	counts := make(map[string]int)
	topicCounts := make(map[string]int)
	var topicOrder []string
	scored := 0
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		scored++
		for key, points := range res.Assessment.Breakdown {
			bs.CriterionMeans[key] += float64(points)
			counts[key]++
		}
		for _, topic := range res.Assessment.SubTopics {
			if topicCounts[topic] == 0 {
				topicOrder = append(topicOrder, topic)
			}
			topicCounts[topic]++
		}
	}
	for key := range bs.CriterionMeans {
		bs.CriterionMeans[key] /= float64(counts[key])
	}
	for _, topic := range topicOrder {
		if topicCounts[topic] > 1 {
			bs.CommonSubTopics = append(bs.CommonSubTopics, topic)
		}
	}
	return bs
}
