// Package store is the in-memory cache engine over the document file store.
// The files are the source of truth; the cache is rebuilt from them at any
// time and kept current through vault events. All returned entities are
// snapshots, never aliases into the cache.
package store

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"researchdesk/internal/config"
	"researchdesk/internal/document"
	"researchdesk/internal/frontmatter"
	"researchdesk/internal/vault"
)

// ErrNotFound marks a lookup for a document the cache does not hold.
var ErrNotFound = errors.New("store: document not found")

// ErrMalformedDocument marks a file whose frontmatter cannot be managed.
var ErrMalformedDocument = errors.New("store: malformed document")

// pathRef locates a cached entity from its file path.
type pathRef struct {
	kind document.Kind
	id   string
}

// Store caches every managed document by kind and identifier.
type Store struct {
	vault    vault.Store
	cfg      *config.Config
	renderer *document.Renderer
	log      *zap.Logger

	mu      sync.RWMutex
	seeds   map[string]*document.Seed
	plans   map[string]*document.Plan
	topics  map[string]*document.Topic
	reports map[string]*document.Report
	sources map[string]*document.Source
	byPath  map[string]pathRef

	now func() time.Time
}

// New creates an empty store. Call RebuildAll before serving queries.
func New(v vault.Store, cfg *config.Config, log *zap.Logger) *Store {
	return &Store{
		vault:    v,
		cfg:      cfg,
		renderer: document.NewRenderer(v, cfg.Paths.Templates),
		log:      log.Named("store"),
		seeds:    make(map[string]*document.Seed),
		plans:    make(map[string]*document.Plan),
		topics:   make(map[string]*document.Topic),
		reports:  make(map[string]*document.Report),
		sources:  make(map[string]*document.Source),
		byPath:   make(map[string]pathRef),
		now:      time.Now,
	}
}

// Renderer exposes the template renderer, shared so callers render bodies
// with the same override rules the store uses.
func (s *Store) Renderer() *document.Renderer { return s.renderer }

// RebuildAll drops the cache and reloads every document folder. Malformed
// files are logged and skipped; they never abort the rebuild.
func (s *Store) RebuildAll() error {
	s.mu.Lock()
	s.seeds = make(map[string]*document.Seed)
	s.plans = make(map[string]*document.Plan)
	s.topics = make(map[string]*document.Topic)
	s.reports = make(map[string]*document.Report)
	s.sources = make(map[string]*document.Source)
	s.byPath = make(map[string]pathRef)
	s.mu.Unlock()

	total := 0
	for _, folder := range s.cfg.DocumentFolders() {
		paths, err := s.vault.List(folder)
		if err != nil {
			return fmt.Errorf("rebuild: %w", err)
		}
		for _, path := range paths {
			if err := s.loadPath(path); err != nil {
				s.log.Warn("skipping unreadable document", zap.String("path", path), zap.Error(err))
				continue
			}
			total++
		}
	}
	s.log.Info("cache rebuilt", zap.Int("documents", total))
	return nil
}

// HandleEvent applies one file-store change to the cache.
func (s *Store) HandleEvent(ev vault.Event) {
	switch ev.Op {
	case vault.OpCreated, vault.OpModified:
		if err := s.loadPath(ev.Path); err != nil {
			s.log.Warn("ignoring changed document", zap.String("path", ev.Path), zap.Error(err))
		}
	case vault.OpDeleted:
		s.evictPath(ev.Path)
	}
}

// loadPath reads, parses and caches the document at path, replacing any
// earlier entry for the same path.
func (s *Store) loadPath(path string) error {
	content, err := s.vault.Read(path)
	if err != nil {
		return err
	}

	fields, body, ok := frontmatter.Parse(content)
	if !ok {
		return fmt.Errorf("%w: %s: no frontmatter block", ErrMalformedDocument, path)
	}
	kind, ok := document.KindOf(fields.Str("type"))
	if !ok {
		return fmt.Errorf("%w: %s: unmanaged type %q", ErrMalformedDocument, path, fields.Str("type"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A re-parse may change the identifier; drop the old entry first.
	s.evictPathLocked(path)

	switch kind {
	case document.KindSeed:
		seed := document.ParseSeed(document.SeedMetaFromFields(fields), body, path)
		if seed.Meta.ID == "" {
			seed.Meta.ID = stemOf(path)
		}
		s.seeds[seed.Meta.ID] = seed
		s.byPath[path] = pathRef{document.KindSeed, seed.Meta.ID}
	case document.KindPlan:
		plan := document.ParsePlan(document.PlanMetaFromFields(fields), body, path)
		if plan.Meta.ID == "" {
			plan.Meta.ID = stemOf(path)
		}
		s.plans[plan.Meta.ID] = plan
		s.byPath[path] = pathRef{document.KindPlan, plan.Meta.ID}
	case document.KindTopic:
		topic := document.ParseTopic(document.TopicMetaFromFields(fields), body, path)
		if topic.Meta.Slug == "" {
			topic.Meta.Slug = stemOf(path)
		}
		s.topics[topic.Meta.Slug] = topic
		s.byPath[path] = pathRef{document.KindTopic, topic.Meta.Slug}
	case document.KindReport:
		report := document.ParseReport(document.ReportMetaFromFields(fields), body, path)
		if report.Meta.ID == "" {
			report.Meta.ID = stemOf(path)
		}
		s.reports[report.Meta.ID] = report
		s.byPath[path] = pathRef{document.KindReport, report.Meta.ID}
	case document.KindSource:
		source := document.ParseSource(document.SourceMetaFromFields(fields), body, path)
		if source.Meta.ID == "" {
			source.Meta.ID = stemOf(path)
		}
		s.sources[source.Meta.ID] = source
		s.byPath[path] = pathRef{document.KindSource, source.Meta.ID}
	}
	return nil
}

func (s *Store) evictPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictPathLocked(path)
}

func (s *Store) evictPathLocked(path string) {
	ref, ok := s.byPath[path]
	if !ok {
		return
	}
	delete(s.byPath, path)
	switch ref.kind {
	case document.KindSeed:
		delete(s.seeds, ref.id)
	case document.KindPlan:
		delete(s.plans, ref.id)
	case document.KindTopic:
		delete(s.topics, ref.id)
	case document.KindReport:
		delete(s.reports, ref.id)
	case document.KindSource:
		delete(s.sources, ref.id)
	}
}

// stemOf is the identity fallback for files without an id field.
func stemOf(p string) string {
	return strings.TrimSuffix(path.Base(p), ".md")
}
