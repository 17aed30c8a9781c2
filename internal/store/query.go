package store

import (
	"fmt"
	"sort"

	"researchdesk/internal/document"
)

// Filter narrows a query. Zero-value fields do not constrain; all set fields
// must match (conjunction). Dates are YYYY-MM-DD strings, inclusive.
type Filter struct {
	Topic    string
	Status   string
	MinScore int
	From     string
	To       string
}

func (f Filter) matchDates(created string) bool {
	if f.From != "" && (created == "" || created < f.From) {
		return false
	}
	if f.To != "" && (created == "" || created > f.To) {
		return false
	}
	return true
}

// sortDocs orders newest first; documents without a creation date sort last.
// Path breaks ties so ordering is stable across rebuilds.
func sortDocs[T document.Document](docs []T) {
	sort.SliceStable(docs, func(i, j int) bool {
		ci, cj := docs[i].Created(), docs[j].Created()
		if ci != cj {
			if ci == "" {
				return false
			}
			if cj == "" {
				return true
			}
			return ci > cj
		}
		return docs[i].Path() < docs[j].Path()
	})
}

// Seeds returns the cached seeds matching f, newest first.
func (s *Store) Seeds(f Filter) []*document.Seed {
	s.mu.RLock()
	var out []*document.Seed
	for _, seed := range s.seeds {
		if f.Topic != "" && seed.Meta.Topic != f.Topic {
			continue
		}
		if f.Status != "" && string(seed.Meta.Status) != f.Status {
			continue
		}
		if f.MinScore > 0 && seed.Meta.Score < f.MinScore {
			continue
		}
		if !f.matchDates(seed.Meta.Created) {
			continue
		}
		copied := *seed
		out = append(out, &copied)
	}
	s.mu.RUnlock()

	sortDocs(out)
	return out
}

// Plans returns the cached plans matching f, newest first.
func (s *Store) Plans(f Filter) []*document.Plan {
	s.mu.RLock()
	var out []*document.Plan
	for _, plan := range s.plans {
		if f.Topic != "" && plan.Meta.Topic != f.Topic {
			continue
		}
		if f.Status != "" && string(plan.Meta.Status) != f.Status {
			continue
		}
		if !f.matchDates(plan.Meta.Created) {
			continue
		}
		copied := *plan
		out = append(out, &copied)
	}
	s.mu.RUnlock()

	sortDocs(out)
	return out
}

// Topics returns the cached topic hubs matching f, newest first.
func (s *Store) Topics(f Filter) []*document.Topic {
	s.mu.RLock()
	var out []*document.Topic
	for _, topic := range s.topics {
		if f.Status != "" && string(topic.Meta.Status) != f.Status {
			continue
		}
		if !f.matchDates(topic.Meta.Created) {
			continue
		}
		copied := *topic
		out = append(out, &copied)
	}
	s.mu.RUnlock()

	sortDocs(out)
	return out
}

// Reports returns the cached reports matching f, newest first.
func (s *Store) Reports(f Filter) []*document.Report {
	s.mu.RLock()
	var out []*document.Report
	for _, report := range s.reports {
		if f.Topic != "" && report.Meta.Topic != f.Topic {
			continue
		}
		if f.Status != "" && string(report.Meta.Status) != f.Status {
			continue
		}
		if !f.matchDates(report.Meta.Created) {
			continue
		}
		copied := *report
		out = append(out, &copied)
	}
	s.mu.RUnlock()

	sortDocs(out)
	return out
}

// Sources returns the cached source notes matching f, newest first.
func (s *Store) Sources(f Filter) []*document.Source {
	s.mu.RLock()
	var out []*document.Source
	for _, source := range s.sources {
		if f.Status != "" && string(source.Meta.Quality) != f.Status {
			continue
		}
		if !f.matchDates(source.Meta.Created) {
			continue
		}
		copied := *source
		out = append(out, &copied)
	}
	s.mu.RUnlock()

	sortDocs(out)
	return out
}

// Seed returns the cached seed with the given id.
func (s *Store) Seed(id string) (*document.Seed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seed, ok := s.seeds[id]
	if !ok {
		return nil, fmt.Errorf("%w: seed %s", ErrNotFound, id)
	}
	copied := *seed
	return &copied, nil
}

// Plan returns the cached plan with the given id.
func (s *Store) Plan(id string) (*document.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plan, ok := s.plans[id]
	if !ok {
		return nil, fmt.Errorf("%w: plan %s", ErrNotFound, id)
	}
	copied := *plan
	return &copied, nil
}

// Topic returns the cached topic hub with the given slug.
func (s *Store) Topic(slug string) (*document.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	topic, ok := s.topics[slug]
	if !ok {
		return nil, fmt.Errorf("%w: topic %s", ErrNotFound, slug)
	}
	copied := *topic
	return &copied, nil
}

// Get returns any cached document by kind and identifier.
func (s *Store) Get(kind document.Kind, id string) (document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch kind {
	case document.KindSeed:
		if seed, ok := s.seeds[id]; ok {
			copied := *seed
			return &copied, nil
		}
	case document.KindPlan:
		if plan, ok := s.plans[id]; ok {
			copied := *plan
			return &copied, nil
		}
	case document.KindTopic:
		if topic, ok := s.topics[id]; ok {
			copied := *topic
			return &copied, nil
		}
	case document.KindReport:
		if report, ok := s.reports[id]; ok {
			copied := *report
			return &copied, nil
		}
	case document.KindSource:
		if source, ok := s.sources[id]; ok {
			copied := *source
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
}

// Counts reports how many documents of each kind are cached.
func (s *Store) Counts() map[document.Kind]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[document.Kind]int{
		document.KindSeed:   len(s.seeds),
		document.KindPlan:   len(s.plans),
		document.KindTopic:  len(s.topics),
		document.KindReport: len(s.reports),
		document.KindSource: len(s.sources),
	}
}

// TopicView is a topic hub with everything filed under it.
type TopicView struct {
	Topic   *document.Topic
	Seeds   []*document.Seed
	Plans   []*document.Plan
	Reports []*document.Report
	Sources []*document.Source
}

// View aggregates all documents referencing the topic slug.
func (s *Store) View(slug string) (*TopicView, error) {
	topic, err := s.Topic(slug)
	if err != nil {
		return nil, err
	}

	view := &TopicView{
		Topic:   topic,
		Seeds:   s.Seeds(Filter{Topic: slug}),
		Plans:   s.Plans(Filter{Topic: slug}),
		Reports: s.Reports(Filter{Topic: slug}),
	}

	// Sources are linked through reports rather than tagged with a topic.
	linked := make(map[string]bool)
	for _, report := range view.Reports {
		for _, id := range report.Meta.Sources {
			linked[id] = true
		}
	}
	for _, source := range s.Sources(Filter{}) {
		if linked[source.Meta.ID] {
			view.Sources = append(view.Sources, source)
		}
	}
	return view, nil
}
