package document

import (
	"fmt"
	"path"
	"strings"
	"sync"
	"time"
)

// Template file names. A file with the same name in the configured templates
// folder overrides the built-in body.
const (
	TemplateSeed   = "DR_Seed.md"
	TemplatePlan   = "DR_Plan.md"
	TemplateReport = "DR_Report.md"
	TemplateSource = "DR_SourceNote.md"
	TemplateTopic  = "Topic_Hub.md"
)

// FileReader is the slice of the file store the renderer needs for user
// template overrides.
type FileReader interface {
	Read(path string) (string, error)
}

// Renderer produces document bodies from templates. Variables appear as
// {{name}}; {{date}} is always available. The frontmatter block is NOT part
// of a template: metadata is rendered by the codec so the two can never
// disagree.
type Renderer struct {
	fs  FileReader
	dir string

	mu    sync.Mutex
	cache map[string]string

	now func() time.Time
}

// NewRenderer creates a renderer reading overrides from dir via fs. fs may be
// nil, in which case only built-in templates are used.
func NewRenderer(fs FileReader, dir string) *Renderer {
	return &Renderer{
		fs:    fs,
		dir:   dir,
		cache: make(map[string]string),
		now:   time.Now,
	}
}

// Render loads the named template and substitutes vars.
func (r *Renderer) Render(name string, vars map[string]string) (string, error) {
	tmpl, err := r.load(name)
	if err != nil {
		return "", err
	}

	out := tmpl
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	out = strings.ReplaceAll(out, "{{date}}", r.now().Format("2006-01-02"))
	return out, nil
}

func (r *Renderer) load(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, ok := r.cache[name]; ok {
		return tmpl, nil
	}
	if r.fs != nil {
		if content, err := r.fs.Read(path.Join(r.dir, name)); err == nil {
			r.cache[name] = content
			return content, nil
		}
	}
	tmpl, ok := builtinTemplates[name]
	if !ok {
		return "", fmt.Errorf("template %s not found", name)
	}
	r.cache[name] = tmpl
	return tmpl, nil
}

// ClearCache drops cached templates so edited override files are picked up.
func (r *Renderer) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]string)
}

// Builtin lists the built-in template names and bodies, for seeding a
// templates folder the user can then edit.
func Builtin() map[string]string {
	out := make(map[string]string, len(builtinTemplates))
	for name, tmpl := range builtinTemplates {
		out[name] = tmpl
	}
	return out
}

var builtinTemplates = map[string]string{
	TemplateSeed: `# Seed: {{title}}

## Spark

{{summary}}

## Initial Questions

{{questions}}

## Context & Relevance

- Why is this important now?
- How does this connect to existing work?

## Gatekeeper Assessment

- **Score**:
- **Verdict**:
- **Rationale**:
- **Top Sub-topics**:

## Next Steps

- [ ] Run gatekeeper assessment
- [ ] Promote to research plan
- [ ] Link to relevant topic hub
`,

	TemplatePlan: `# Deep Research Plan: {{title}}

## Research Question

**Primary Question**: {{primary_question}}

**Refined Thesis**: {{thesis}}

## Sub-Questions

{{sub_questions}}

## Search Strategy

### Priority Source Types

- peer-reviewed journals
- meta-analyses
- systematic reviews

### Quality Filters

- minimum sample size > 50
- effect sizes reported
- limitations acknowledged

## Deliverables

{{deliverables}}

## Execution Plan

- [ ] Literature search phase
- [ ] Source evaluation and quality assessment
- [ ] Synthesis and analysis
- [ ] Output generation
`,

	TemplateReport: `# Deep Research Report: {{title}}

## Executive Brief

{{brief}}

## Key Claims

{{claims}}

## Sources

{{sources}}
`,

	TemplateSource: `# {{title}}

## TL;DR

- **One Sentence**: {{one_sentence}}
- **Key Points**: {{key_points}}

## Methods

{{methods}}

## Findings

{{findings}}

## Quotes

{{quotes}}
`,

	TemplateTopic: `# Topic Hub: {{title}}

## Overview

{{description}}

## Research Questions

### Primary Questions

-

### Secondary Questions

-

## Active Research

### Current Plans

### Recent Reports

## Research Gaps

-

## Next Steps

- [ ] Review pending seeds
- [ ] Execute planned research
`,
}
