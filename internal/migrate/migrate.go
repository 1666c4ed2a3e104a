// Package migrate converts one Kotlin file from kotlinx synthetics to
// ViewBinding. A conversion is planned as a list of edits over the
// original text, applied in one step and handed to a Transaction.
package migrate

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dejo1307/viewbindmigrate/internal/binding"
	"github.com/dejo1307/viewbindmigrate/internal/classify"
	"github.com/dejo1307/viewbindmigrate/internal/config"
	"github.com/dejo1307/viewbindmigrate/internal/edit"
	"github.com/dejo1307/viewbindmigrate/internal/hierarchy"
	"github.com/dejo1307/viewbindmigrate/internal/kotlin"
	"github.com/dejo1307/viewbindmigrate/internal/layout"
	"github.com/dejo1307/viewbindmigrate/internal/naming"
	"github.com/dejo1307/viewbindmigrate/internal/notify"
	"github.com/dejo1307/viewbindmigrate/internal/rewrite"
)

// ErrUnknownIDs is returned when a layout imported with a wildcard cannot be
// read, so its view references cannot be found.
var ErrUnknownIDs = errors.New("layout view ids unavailable")

// CellHandler is the name of the custom handler for list cells.
const CellHandler = "cell"

// State is a step of a conversion.
type State string

const (
	StateStart               State = "start"
	StateResolved            State = "resolved"
	StateClassified          State = "classified"
	StatePropertiesInserted  State = "properties_inserted"
	StateReferencesRewritten State = "references_rewritten"
	StateImportsCleaned      State = "imports_cleaned"
	StateDone                State = "done"
)

// Plan describes the conversion of one file. Output holds the converted
// text when Changed is set.
type Plan struct {
	Path           string               `json:"path"`
	States         []State              `json:"states"`
	Class          string               `json:"class,omitempty"`
	Classification classify.Result      `json:"classification"`
	Supertypes     []string             `json:"supertypes,omitempty"`
	Bindings       []binding.Binding    `json:"bindings"`
	Multiple       bool                 `json:"multiple"`
	LayoutDir      string               `json:"layout_dir,omitempty"`
	Descriptors    []binding.Descriptor `json:"descriptors,omitempty"`
	ContentViews   map[string]string    `json:"content_views,omitempty"`
	Properties     []string             `json:"properties,omitempty"` // in source order
	References     []rewrite.Reference  `json:"references,omitempty"`
	AddedImports   []string             `json:"added_imports,omitempty"`
	RemovedImports []string             `json:"removed_imports,omitempty"`
	Messages       []notify.Message     `json:"messages,omitempty"`
	Edits          int                  `json:"edits"`
	Changed        bool                 `json:"changed"`
	Output         []byte               `json:"-"`
}

// State returns the last state the conversion reached.
func (p *Plan) State() State {
	if len(p.States) == 0 {
		return ""
	}
	return p.States[len(p.States)-1]
}

// Converter plans and applies conversions. It holds no per-file state and
// is safe for concurrent use.
type Converter struct {
	cfg        *config.Config
	index      *hierarchy.Index
	classifier *classify.Classifier
	notifier   notify.Notifier

	mu         sync.Mutex
	namespaces map[string]string
}

// New creates a converter. A nil index knows only the framework classes
// and the configured supertypes; a nil notifier logs.
func New(cfg *config.Config, index *hierarchy.Index, n notify.Notifier) *Converter {
	if index == nil {
		index = hierarchy.NewIndex(cfg.Supertypes)
	}
	if n == nil {
		n = notify.LogNotifier{}
	}
	var handlers []classify.Handler
	for _, name := range cfg.Handlers {
		switch name {
		case CellHandler:
			handlers = append(handlers, classify.InterfaceHandler{ID: CellHandler, Interface: cfg.CellInterface})
		default:
			log.Printf("[migrate] unknown handler %q ignored", name)
		}
	}
	return &Converter{
		cfg:        cfg,
		index:      index,
		classifier: classify.New(handlers...),
		notifier:   n,
		namespaces: make(map[string]string),
	}
}

// Convert reads, plans and commits one file. Unchanged files are not
// committed.
func (c *Converter) Convert(path string, tx Transaction) (*Plan, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	p, err := c.Plan(path, src)
	if err != nil || !p.Changed {
		return p, err
	}
	if err := tx.Commit(path, src, p.Output); err != nil {
		return p, fmt.Errorf("committing %s: %w", path, err)
	}
	if p.Classification.Kind != classify.Unhandled {
		notify.Infof(c.notifier, "File %s converted successfully!", filepath.Base(path))
	}
	return p, nil
}

// Plan computes the conversion of src, the content of the file at path.
// Nothing is written.
func (c *Converter) Plan(path string, src []byte) (*Plan, error) {
	rec := &notify.Recorder{Next: c.notifier}
	r := &run{
		c:    c,
		n:    rec,
		plan: &Plan{Path: path},
		file: kotlin.Parse(src),
		buf:  edit.NewBuffer(src),
	}
	err := r.execute()
	r.plan.Messages = rec.Messages()
	return r.plan, err
}

// run is the state of one conversion.
type run struct {
	c    *Converter
	n    notify.Notifier
	plan *Plan
	file *kotlin.File
	buf  *edit.Buffer

	set         *binding.Set
	layouts     *layout.Index
	descriptors []binding.Descriptor
	unresolved  []string // wildcard layouts without a readable file
	unprefixed  []rewrite.Range
	claimed     []rewrite.Range
	imports     []string
}

func (r *run) enter(s State) {
	r.plan.States = append(r.plan.States, s)
}

func (r *run) execute() error {
	r.enter(StateStart)
	r.resolve()
	if r.set.Empty() {
		r.enter(StateDone)
		return nil
	}
	r.enter(StateResolved)

	class, ok := r.file.TopLevelClass()
	if ok {
		r.classify(class)
	} else {
		r.plan.Classification = classify.Result{Kind: classify.Unhandled}
	}
	r.enter(StateClassified)

	if r.plan.Classification.Kind == classify.Unhandled {
		r.removeSyntheticImports()
		return r.finish()
	}
	if len(r.unresolved) > 0 {
		if r.layouts == nil {
			notify.Warnf(r.n, "no layout directory for %s; ids of %s are unknown",
				filepath.Base(r.plan.Path), strings.Join(r.unresolved, ", "))
		}
		return fmt.Errorf("%s: %w: %s", r.plan.Path, ErrUnknownIDs, strings.Join(r.unresolved, ", "))
	}

	if err := r.insertProperties(class); err != nil {
		return fmt.Errorf("inserting properties: %w", err)
	}
	r.enter(StatePropertiesInserted)

	if err := r.rewriteReferences(); err != nil {
		return fmt.Errorf("rewriting references: %w", err)
	}
	r.enter(StateReferencesRewritten)

	if err := r.addImports(); err != nil {
		return fmt.Errorf("adding imports: %w", err)
	}
	r.removeSyntheticImports()
	r.enter(StateImportsCleaned)
	return r.finish()
}

// resolve maps synthetic imports to bindings and, when the layout
// directory exists, works out include relations.
func (r *run) resolve() {
	paths := make([]string, len(r.file.Imports))
	for i, imp := range r.file.Imports {
		paths[i] = imp.Path
	}
	r.set = binding.Resolve(paths)
	r.plan.Bindings = r.set.Bindings
	r.plan.Multiple = r.set.Multiple()
	if r.set.Empty() {
		return
	}

	r.plan.ContentViews = make(map[string]string, len(r.set.Bindings))
	for _, b := range r.set.Bindings {
		r.plan.ContentViews[b.Layout] = ContentViewBindingName(r.set, b.Layout)
	}

	cfg := r.c.cfg.Layout
	var lookup binding.IncludeLookup
	if dir, ok := layout.Locate(r.plan.Path, cfg.MainDir, cfg.LayoutDir); ok {
		r.plan.LayoutDir = dir
		r.layouts = layout.Load(dir, r.set.Layouts())
		for _, l := range r.set.Layouts() {
			if err := r.layouts.Errors()[l]; err != nil {
				notify.Warnf(r.n, "layout %s: %v", l, err)
			}
		}
		lookup = r.layouts
	}
	for _, l := range r.set.WildcardLayouts() {
		if r.layouts == nil || r.layouts.Errors()[l] != nil {
			r.unresolved = append(r.unresolved, l)
		}
	}
	r.descriptors = binding.ResolveIncludes(r.set.Bindings, lookup, r.n)
	r.plan.Descriptors = binding.Sorted(r.descriptors)
}

func (r *run) classify(class *kotlin.Class) {
	parents := r.c.index.ParentsOf(r.file, class)
	r.plan.Class = hierarchy.QualifiedName(r.file, class)
	r.plan.Supertypes = parents
	r.plan.Classification = r.c.classifier.Classify(parents)
}

// insertProperties runs the strategy of the class kind: binding properties
// at the top of the class body plus the imports they need.
func (r *run) insertProperties(class *kotlin.Class) error {
	imports := r.c.cfg.Imports
	multiple := r.set.Multiple()
	var decls []string // in insertion order; each lands on top of the previous ones

	switch r.plan.Classification.Kind {
	case classify.Activity, classify.Fragment:
		for _, d := range r.plan.Descriptors {
			decls = append(decls, DelegateProperty(d, multiple))
		}
		if r.plan.Classification.Kind == classify.Activity {
			r.want(imports.ActivityDelegate)
		} else {
			r.want(imports.FragmentDelegate)
		}
	case classify.View:
		r.dropInflateView(class)
		for _, b := range r.set.Bindings {
			decls = append(decls, InflateProperty(b.Name, multiple))
		}
		r.want(imports.InflateHelper)
	case classify.Custom:
		switch r.plan.Classification.Handler {
		case CellHandler:
			r.bindCell(class)
			r.want(imports.CellViewBinding)
		default:
			notify.Warnf(r.n, "no strategy for handler %q", r.plan.Classification.Handler)
		}
	}
	r.wantBindingImports()
	return r.insertTop(class, decls)
}

func (r *run) want(imp string) {
	if imp != "" {
		r.imports = append(r.imports, imp)
	}
}

func (r *run) wantBindingImports() {
	if !r.c.cfg.BindingImports {
		return
	}
	ns := r.c.namespace(r.plan.Path)
	if ns == "" {
		return
	}
	for _, b := range r.set.Bindings {
		r.want(BindingImport(ns, b.Name))
	}
}

// insertTop places each declaration directly after the class body's
// opening brace, so the last one ends up first. Bodiless classes get a
// body.
func (r *run) insertTop(class *kotlin.Class, decls []string) error {
	if len(decls) == 0 {
		return nil
	}
	indent := class.Indent + "    "
	visual := make([]string, len(decls))
	for i, d := range decls {
		visual[len(decls)-1-i] = d
	}
	r.plan.Properties = visual

	if !class.HasBody() {
		var sb strings.Builder
		sb.WriteString(" {")
		for _, d := range visual {
			sb.WriteString("\n" + indent + d)
		}
		sb.WriteString("\n" + class.Indent + "}")
		return r.buf.Insert(class.HeaderEnd, sb.String())
	}

	anchor := class.BodyOpen + 1
	for _, d := range decls {
		if err := r.buf.InsertTop(anchor, "\n"+indent+d); err != nil {
			return err
		}
	}
	// Code after the brace moves to its own line; so does a closing brace
	// on the same line.
	_, lineEnd := r.file.LineBounds(class.BodyOpen)
	after := r.file.Text(anchor, lineEnd)
	rest := strings.TrimLeft(after, " \t")
	ws := anchor + len(after) - len(rest)
	switch {
	case strings.TrimSpace(rest) == "":
		return nil
	case strings.HasPrefix(rest, "}"):
		return r.buf.Replace(anchor, ws, "\n"+class.Indent)
	}
	if err := r.buf.Replace(anchor, ws, "\n"+indent); err != nil {
		return err
	}
	if class.BodyClose >= lineEnd {
		return nil
	}
	start := class.BodyClose
	for start > ws && (r.file.Src[start-1] == ' ' || r.file.Src[start-1] == '\t') {
		start--
	}
	return r.buf.Replace(start, class.BodyClose, "\n"+class.Indent)
}

// dropInflateView removes the inflateView call of the first init block.
func (r *run) dropInflateView(class *kotlin.Class) {
	if len(class.Inits) == 0 {
		return
	}
	block := class.Inits[0]
	calls := r.file.FindCalls("inflateView", block.Open, block.Close)
	if len(calls) == 0 {
		return
	}
	call := calls[0]
	start, end := call.Start, call.ArgsEnd+1
	lineStart, lineEnd := r.file.LineBounds(call.Start)
	if strings.TrimSpace(r.file.Text(lineStart, start)) == "" && strings.TrimSpace(r.file.Text(end, lineEnd)) == "" {
		start, end = lineStart, lineEnd
	}
	if err := r.buf.Delete(start, end); err != nil {
		notify.Warnf(r.n, "cannot remove inflateView call: %v", err)
		return
	}
	r.claim(start, end)
}

// bindCell points the cell's with(viewHolder.itemView) at the binding of
// the first layout. References inside the with block need no prefix.
func (r *run) bindCell(class *kotlin.Class) {
	name := r.set.Bindings[0].Name
	fn, ok := class.Function("bind")
	if ok && fn.BodyOpen >= 0 {
		for _, call := range r.file.FindCalls("with", fn.BodyOpen, fn.BodyClose) {
			if r.file.Args(call) != cellWithArgument {
				continue
			}
			if err := r.buf.Replace(call.ArgsStart, call.ArgsEnd, CellBindArgument(name)); err != nil {
				notify.Warnf(r.n, "cannot rewrite with() argument: %v", err)
				return
			}
			r.claim(call.ArgsStart, call.ArgsEnd)
			if call.LambdaOpen >= 0 {
				r.unprefixed = append(r.unprefixed, rewrite.Range{Start: call.LambdaOpen, End: call.LambdaClose})
			}
			return
		}
	}
	notify.Warnf(r.n, "%s: no with(%s) found in bind()", class.Name, cellWithArgument)
}

func (r *run) claim(start, end int) {
	r.claimed = append(r.claimed, rewrite.Range{Start: start, End: end})
}

func (r *run) isClaimed(start, end int) bool {
	for _, c := range r.claimed {
		if start < c.End && c.Start < end {
			return true
		}
	}
	return false
}

func (r *run) rewriteReferences() error {
	in := rewrite.Input{File: r.file, Set: r.set, Unprefixed: r.unprefixed}
	if r.layouts != nil {
		in.Layouts = r.layouts
	}
	for _, ref := range rewrite.Plan(in, r.n) {
		if r.isClaimed(ref.Start, ref.End) {
			continue
		}
		r.plan.References = append(r.plan.References, ref)
		text := ref.Text()
		if text == r.file.Text(ref.Start, ref.End) {
			continue
		}
		if err := r.buf.Replace(ref.Start, ref.End, text); err != nil {
			return err
		}
	}
	return nil
}

// addImports inserts the wanted imports after the last import line,
// skipping any the file already has.
func (r *run) addImports() error {
	seen := make(map[string]bool)
	var sb strings.Builder
	for _, imp := range r.imports {
		if seen[imp] || r.file.HasImport(imp) {
			continue
		}
		seen[imp] = true
		r.plan.AddedImports = append(r.plan.AddedImports, imp)
		sb.WriteString("import " + imp + "\n")
	}
	if sb.Len() == 0 || len(r.file.Imports) == 0 {
		return nil
	}
	last := r.file.Imports[len(r.file.Imports)-1]
	text := sb.String()
	if last.End == len(r.file.Src) && !bytes.HasSuffix(r.file.Src, []byte("\n")) {
		text = "\n" + strings.TrimSuffix(text, "\n")
	}
	return r.buf.Insert(last.End, text)
}

func (r *run) removeSyntheticImports() {
	var synthetic []kotlin.Import
	for _, imp := range r.file.Imports {
		if naming.IsSyntheticImport(imp.Path) {
			synthetic = append(synthetic, imp)
		}
	}
	r.plan.RemovedImports = deleteImports(r.buf, synthetic, r.n)
}

// deleteImports queues the removal of each import line. Lines that cannot
// be removed are reported and skipped.
func deleteImports(buf *edit.Buffer, imports []kotlin.Import, n notify.Notifier) []string {
	var removed []string
	for _, imp := range imports {
		if err := buf.Delete(imp.Start, imp.End); err != nil {
			notify.Warnf(n, "cannot delete import %s: %v", imp.Path, err)
			continue
		}
		removed = append(removed, imp.Path)
	}
	return removed
}

func (r *run) finish() error {
	out, err := r.buf.Bytes()
	if err != nil {
		return fmt.Errorf("applying edits to %s: %w", r.plan.Path, err)
	}
	r.plan.Edits = r.buf.Len()
	r.plan.Output = out
	r.plan.Changed = !bytes.Equal(out, r.file.Src)
	r.enter(StateDone)
	return nil
}

// namespace returns the application namespace for a source file: the
// configured one, or the one its module declares.
func (c *Converter) namespace(path string) string {
	if c.cfg.Namespace != "" {
		return c.cfg.Namespace
	}
	var dirs []string
	if main := layout.MainDir(path, c.cfg.Layout.MainDir); main != "" {
		module := strings.TrimSuffix(filepath.ToSlash(main), c.cfg.Layout.MainDir)
		dirs = append(dirs, filepath.Clean(filepath.FromSlash(module)))
	}
	dirs = append(dirs, filepath.Join(c.cfg.Repo, "app"), c.cfg.Repo)
	key := strings.Join(dirs, string(filepath.ListSeparator))

	c.mu.Lock()
	defer c.mu.Unlock()
	ns, ok := c.namespaces[key]
	if !ok {
		ns = hierarchy.DetectNamespace(dirs...)
		c.namespaces[key] = ns
	}
	return ns
}
