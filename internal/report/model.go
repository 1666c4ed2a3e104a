package report

import (
	"github.com/dejo1307/viewbindmigrate/internal/binding"
	"github.com/dejo1307/viewbindmigrate/internal/classify"
	"github.com/dejo1307/viewbindmigrate/internal/migrate"
	"github.com/dejo1307/viewbindmigrate/internal/notify"
)

// Status is the outcome of converting one file.
type Status string

const (
	StatusConverted Status = "converted" // bindings inserted and references rewritten
	StatusUnhandled Status = "unhandled" // synthetic imports removed only
	StatusUnchanged Status = "unchanged"
	StatusFailed    Status = "failed"
)

// Result is the record of one file in a run.
type Result struct {
	File           string           `json:"file"` // relative to the repository root
	Status         Status           `json:"status"`
	Class          string           `json:"class,omitempty"`
	Kind           classify.Kind    `json:"kind,omitempty"`
	Handler        string           `json:"handler,omitempty"`
	Bindings       []string         `json:"bindings,omitempty"`
	Includes       int              `json:"includes,omitempty"` // bindings reached through a parent binding
	References     int              `json:"references,omitempty"`
	AddedImports   []string         `json:"added_imports,omitempty"`
	RemovedImports []string         `json:"removed_imports,omitempty"`
	Messages       []notify.Message `json:"messages,omitempty"`
	Error          string           `json:"error,omitempty"`
	Diff           string           `json:"diff,omitempty"`
}

// Warnings returns the number of warning messages of the result.
func (r Result) Warnings() int {
	n := 0
	for _, m := range r.Messages {
		if m.Level == notify.Warn {
			n++
		}
	}
	return n
}

// NewResult summarizes the plan of file. A non-nil err marks the file as
// failed; p may be nil in that case.
func NewResult(file string, p *migrate.Plan, err error) Result {
	r := Result{File: file}
	if p != nil {
		r.Class = p.Class
		r.Kind = p.Classification.Kind
		r.Handler = p.Classification.Handler
		for _, b := range p.Bindings {
			r.Bindings = append(r.Bindings, b.Name)
		}
		for _, d := range p.Descriptors {
			if d.Kind == binding.Include {
				r.Includes++
			}
		}
		r.References = len(p.References)
		r.AddedImports = p.AddedImports
		r.RemovedImports = p.RemovedImports
		r.Messages = p.Messages
	}
	switch {
	case err != nil:
		r.Status = StatusFailed
		r.Error = err.Error()
	case p == nil || !p.Changed:
		r.Status = StatusUnchanged
	case r.Kind == classify.Unhandled:
		r.Status = StatusUnhandled
	default:
		r.Status = StatusConverted
	}
	return r
}

// Artifact represents a generated output file.
type Artifact struct {
	Name    string `json:"name"` // e.g. "summary.md"
	Content []byte `json:"-"`
	Type    string `json:"type"` // MIME type hint
}

// Report holds the complete result of a conversion run.
type Report struct {
	Meta      Meta       `json:"meta"`
	Results   []Result   `json:"results"`
	Artifacts []Artifact `json:"artifacts"`
}

// Meta contains metadata about a conversion run.
type Meta struct {
	RepoPath    string         `json:"repo_path"`
	GeneratedAt string         `json:"generated_at"`
	Duration    string         `json:"duration"`
	DryRun      bool           `json:"dry_run"`
	Candidates  int            `json:"candidates"` // files holding the synthetic prefix
	Counts      map[Status]int `json:"counts"`
	Handlers    []string       `json:"handlers"`
	Renderers   []string       `json:"renderers"`
}
