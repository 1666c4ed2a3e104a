package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar"

	"github.com/dejo1307/viewbindmigrate/internal/config"
	"github.com/dejo1307/viewbindmigrate/internal/hierarchy"
	"github.com/dejo1307/viewbindmigrate/internal/migrate"
	"github.com/dejo1307/viewbindmigrate/internal/naming"
	"github.com/dejo1307/viewbindmigrate/internal/notify"
	"github.com/dejo1307/viewbindmigrate/internal/renderers"
	"github.com/dejo1307/viewbindmigrate/internal/renderers/summary"
	"github.com/dejo1307/viewbindmigrate/internal/report"
)

// Artifact file names written next to the renderer outputs.
const (
	ReportFile  = "report.json"
	ResultsFile = "results.jsonl"
)

// Engine orchestrates a repository conversion: walk, select, convert,
// report.
type Engine struct {
	mu        sync.Mutex
	cfg       *config.Config
	renderers *renderers.Registry
	store     *report.Store
	report    *report.Report
}

// New creates a new Engine with the given config.
// Renderers must be registered after creation.
func New(cfg *config.Config) (*Engine, error) {
	return &Engine{
		cfg:       cfg,
		renderers: renderers.NewRegistry(),
		store:     report.NewStore(),
	}, nil
}

// RegisterRenderer adds a renderer to the engine.
func (e *Engine) RegisterRenderer(rnd renderers.Renderer) {
	e.renderers.Register(rnd)
}

// Store returns the result store of the last run.
func (e *Engine) Store() *report.Store {
	return e.store
}

// Report returns the last run report, or nil.
func (e *Engine) Report() *report.Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.report
}

// Config returns the engine config.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Options controls one Run.
type Options struct {
	// DryRun records unified diffs instead of writing files.
	DryRun bool
	// Files restricts the run to these paths (absolute or relative to the
	// repository). Empty means every candidate file of the repository.
	Files []string
	// Index is the class hierarchy to classify with. Nil builds one from
	// the repository sources.
	Index *hierarchy.Index
	// Notifier receives the conversion messages. Nil logs them.
	Notifier notify.Notifier
}

// Run converts the selected files of a repository one after another. A
// file that fails is recorded and the run continues.
func (e *Engine) Run(ctx context.Context, repoPath string, opts Options) (*report.Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	start := time.Now()

	if repoPath == "" {
		repoPath = e.cfg.Repo
	}
	absRepo, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolving repo path: %w", err)
	}

	e.store.Clear()

	files := opts.Files
	if len(files) == 0 {
		files, err = e.candidates(absRepo)
		if err != nil {
			return nil, fmt.Errorf("walking repo: %w", err)
		}
	}
	log.Printf("[engine] %d candidate files in %s", len(files), absRepo)

	idx := opts.Index
	if idx == nil {
		idx, err = hierarchy.Build(ctx, absRepo, e.HierarchyOptions())
		if err != nil {
			return nil, fmt.Errorf("indexing classes: %w", err)
		}
	}

	cfg := *e.cfg
	cfg.Repo = absRepo
	conv := migrate.New(&cfg, idx, opts.Notifier)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		abs, rel := resolve(absRepo, file)

		var tx migrate.Transaction = migrate.FileTransaction{}
		dry := &migrate.DryRunTransaction{}
		if opts.DryRun {
			tx = dry
		}
		plan, err := conv.Convert(abs, tx)
		res := report.NewResult(rel, plan, err)
		if diffs := dry.Diffs(); len(diffs) > 0 {
			res.Diff = diffs[0].Unified
		}
		if err != nil {
			log.Printf("[engine] %s: %v", rel, err)
		}
		e.store.Add(res)
	}

	duration := time.Since(start)
	rep := &report.Report{
		Meta: report.Meta{
			RepoPath:    absRepo,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			Duration:    duration.String(),
			DryRun:      opts.DryRun,
			Candidates:  len(files),
			Counts:      e.store.Counts(),
			Handlers:    e.cfg.Handlers,
			Renderers:   []string{},
		},
		Results: e.store.All(),
	}

	usedRenderers, err := e.runRenderers(ctx, rep)
	if err != nil {
		return nil, fmt.Errorf("rendering: %w", err)
	}
	rep.Meta.Renderers = usedRenderers

	e.report = rep
	log.Printf("[engine] processed %d files in %s: %v", len(files), duration, rep.Meta.Counts)
	return rep, nil
}

// HierarchyOptions returns the class index options derived from the
// config; ignored paths are not indexed.
func (e *Engine) HierarchyOptions() hierarchy.Options {
	return hierarchy.Options{
		Supertypes: e.cfg.Supertypes,
		Workers:    e.cfg.Workers,
		Skip:       e.isIgnored,
	}
}

// resolve returns the absolute path of file and its path relative to the
// repository.
func resolve(repo, file string) (string, string) {
	abs := file
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(repo, file)
	}
	rel, err := filepath.Rel(repo, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = abs
	}
	return abs, filepath.ToSlash(rel)
}

// candidates collects the Kotlin files of the repo that mention the
// synthetic package, applying ignore patterns.
func (e *Engine) candidates(repoPath string) ([]string, error) {
	marker := []byte(naming.SyntheticPrefix)
	var files []string
	err := filepath.WalkDir(repoPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(repoPath, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		// Skip ignored paths
		if e.isIgnored(relPath, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || filepath.Ext(path) != ".kt" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[engine] skipping %s: %v", relPath, err)
			return nil
		}
		if bytes.Contains(data, marker) {
			files = append(files, filepath.ToSlash(relPath))
		}
		return nil
	})
	return files, err
}

// isIgnored checks whether a path matches any ignore pattern. A pattern
// ending in "/**" also matches the directory itself.
func (e *Engine) isIgnored(relPath string, isDir bool) bool {
	// Normalize to forward slashes for matching
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range e.cfg.Ignore {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
		if dir, found := strings.CutSuffix(pattern, "/**"); found && isDir {
			if ok, err := doublestar.Match(dir, relPath); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// runRenderers runs the registered renderers; the summary is skipped when
// reports are turned off.
func (e *Engine) runRenderers(ctx context.Context, rep *report.Report) ([]string, error) {
	return e.renderers.Render(ctx, rep, func(name string) bool {
		return name != summary.Name || e.cfg.Output.Report
	})
}

// WriteArtifacts writes the renderer artifacts, report.json and
// results.jsonl to the output directory.
func (e *Engine) WriteArtifacts(repoPath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.report == nil {
		return fmt.Errorf("no run report")
	}

	outDir := filepath.Join(repoPath, e.cfg.Output.Dir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	// Write renderer artifacts (e.g. summary.md)
	for _, a := range e.report.Artifacts {
		path := filepath.Join(outDir, a.Name)
		if err := os.WriteFile(path, a.Content, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", a.Name, err)
		}
		log.Printf("[engine] wrote %s (%d bytes)", path, len(a.Content))
	}

	resultsPath := filepath.Join(outDir, ResultsFile)
	if err := e.store.WriteJSONLFile(resultsPath); err != nil {
		return fmt.Errorf("writing %s: %w", ResultsFile, err)
	}
	log.Printf("[engine] wrote %s", resultsPath)

	reportJSON, err := json.MarshalIndent(e.report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	reportPath := filepath.Join(outDir, ReportFile)
	if err := os.WriteFile(reportPath, reportJSON, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", ReportFile, err)
	}
	log.Printf("[engine] wrote %s (%d bytes)", reportPath, len(reportJSON))

	return nil
}

// LoadArtifacts restores the report of a previous run from the output
// directory, so queries work before the first run of this process.
func (e *Engine) LoadArtifacts(ctx context.Context, repoPath string) error {
	path := filepath.Join(repoPath, e.cfg.Output.Dir, ReportFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Clear()
	e.store.Add(rep.Results...)
	rep.Artifacts = nil
	used, err := e.runRenderers(ctx, &rep)
	if err != nil {
		return err
	}
	rep.Meta.Renderers = used
	e.report = &rep
	log.Printf("[engine] loaded %d results from %s", len(rep.Results), path)
	return nil
}

// GetArtifact returns the content of a named artifact of the last run,
// including the generated JSON files.
func (e *Engine) GetArtifact(name string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.report == nil {
		return nil, fmt.Errorf("no run report")
	}

	switch name {
	case ResultsFile:
		var buf bytes.Buffer
		if err := e.store.WriteJSONL(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case ReportFile:
		return json.MarshalIndent(e.report, "", "  ")
	default:
		for _, a := range e.report.Artifacts {
			if a.Name == name {
				return a.Content, nil
			}
		}
		return nil, fmt.Errorf("artifact %q not found", name)
	}
}
