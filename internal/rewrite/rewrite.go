// Package rewrite finds synthetic view references in a Kotlin file and
// computes the binding property access that replaces each of them.
package rewrite

import (
	"fmt"
	"strings"

	"github.com/dejo1307/viewbindmigrate/internal/binding"
	"github.com/dejo1307/viewbindmigrate/internal/kotlin"
	"github.com/dejo1307/viewbindmigrate/internal/naming"
	"github.com/dejo1307/viewbindmigrate/internal/notify"
)

// SingleBindingPrefix qualifies references in files with one binding.
const SingleBindingPrefix = "binding."

// ViewIDs lists the raw view ids a layout declares.
type ViewIDs interface {
	ViewIDs(layout string) []string
}

// Range is a half-open byte range of the source.
type Range struct {
	Start, End int
}

func (r Range) contains(off int) bool {
	return off >= r.Start && off < r.End
}

// Input is what the rewriter needs to know about one file.
type Input struct {
	File *kotlin.File
	Set  *binding.Set
	// Layouts supplies per-layout ids; nil when no layout directory exists.
	Layouts ViewIDs
	// Unprefixed holds regions whose references resolve without a binding
	// prefix, such as a with(binding) lambda.
	Unprefixed []Range
}

// Reference is one occurrence of a synthetic view property.
type Reference struct {
	Name        string `json:"name"` // as written, an import alias or the id
	ID          string `json:"id"`   // bare snake_case id
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Line        int    `json:"line"`
	Template    bool   `json:"template,omitempty"`
	NeedsPrefix bool   `json:"needs_prefix"`
	Owner       string `json:"owner,omitempty"` // binding class, multi-binding files only
	Replacement string `json:"replacement"`
}

// Discover returns every identifier in the file that refers to a synthetic
// view. Ids come from the layouts of the bound layouts and from per-view
// imports. Ids that the file itself declares are skipped with a warning.
func Discover(in Input, n notify.Notifier) []Reference {
	known := knownIDs(in)
	if len(known) == 0 {
		return nil
	}
	declared := in.File.DeclaredNames()
	warned := make(map[string]bool)

	var refs []Reference
	for _, id := range in.File.Idents {
		bare, ok := known[id.Name]
		if !ok || id.Decl || id.NamedArg {
			continue
		}
		if declared[id.Name] {
			if !warned[id.Name] {
				warned[id.Name] = true
				n.Notify(notify.Warn, fmt.Sprintf("%s is declared in the file; its references are left unchanged", id.Name))
			}
			continue
		}
		needsPrefix, ok := prefixNeed(id.Receiver)
		if !ok {
			continue
		}
		for _, r := range in.Unprefixed {
			if r.contains(id.Start) {
				needsPrefix = false
				break
			}
		}
		refs = append(refs, Reference{
			Name:        id.Name,
			ID:          bare,
			Start:       id.Start,
			End:         id.End,
			Line:        lineOf(in.File.Src, id.Start),
			Template:    id.Template,
			NeedsPrefix: needsPrefix,
		})
	}
	return refs
}

// knownIDs maps every name a view can be referenced by to its bare id.
func knownIDs(in Input) map[string]string {
	known := make(map[string]string)
	if in.Layouts != nil {
		for _, l := range in.Set.Layouts() {
			for _, raw := range in.Layouts.ViewIDs(l) {
				id := naming.StripViewID(raw)
				known[id] = id
			}
		}
	}
	for _, imp := range in.File.Imports {
		_, view, ok := binding.ParseSyntheticImport(imp.Path)
		if !ok || view == "" {
			continue
		}
		known[view] = view
		if imp.Alias != "" {
			known[imp.Alias] = view
		}
	}
	return known
}

// prefixNeed decides from the receiver whether a reference takes the
// binding prefix. It returns false for receivers that are not view
// references at all.
func prefixNeed(receiver string) (needsPrefix, ok bool) {
	switch {
	case receiver == "":
		return true, true
	case receiver == "this":
		return true, true
	case receiver == "::":
		return false, false
	case receiver == "id" || strings.HasSuffix(receiver, ".id"):
		return false, false
	default:
		return false, true
	}
}

// Owner returns the binding class that declares id. Layout ids are
// consulted first, in binding order; then a per-view import naming the id;
// then, as a last resort, any synthetic import whose path contains it.
func Owner(id string, set *binding.Set, layouts ViewIDs) (string, bool) {
	if layouts != nil {
		for _, b := range set.Bindings {
			for _, raw := range layouts.ViewIDs(b.Layout) {
				if naming.StripViewID(raw) == id {
					return b.Name, true
				}
			}
		}
	}
	for _, path := range set.Imports {
		l, view, _ := binding.ParseSyntheticImport(path)
		if view == id {
			return set.Name(l)
		}
	}
	for _, path := range set.Imports {
		if strings.Contains(path, id) {
			l, _, _ := binding.ParseSyntheticImport(path)
			return set.Name(l)
		}
	}
	return "", false
}

// Replacement builds the text that replaces a reference: the camel-cased
// id, prefixed with "binding." in single-binding files or with the owning
// binding's property in multi-binding files when a prefix is needed.
func Replacement(ref Reference, multiple bool) string {
	id := naming.SnakeToCamel(ref.ID)
	if !ref.NeedsPrefix {
		return id
	}
	if !multiple {
		return SingleBindingPrefix + id
	}
	return naming.BindingToLocal(ref.Owner) + "." + id
}

// Plan discovers the references of a file and fills in their owners and
// replacements. References of a multi-binding file whose owner cannot be
// found are reported and dropped.
func Plan(in Input, n notify.Notifier) []Reference {
	multiple := in.Set.Multiple()
	var out []Reference
	for _, ref := range Discover(in, n) {
		if multiple && ref.NeedsPrefix {
			owner, ok := Owner(ref.ID, in.Set, in.Layouts)
			if !ok {
				n.Notify(notify.Warn, fmt.Sprintf("line %d: no layout declares %s; reference left unchanged", ref.Line, ref.ID))
				continue
			}
			ref.Owner = owner
		}
		ref.Replacement = Replacement(ref, multiple)
		out = append(out, ref)
	}
	return out
}

// Text returns the source text to splice over the reference's range.
// Template references that gain a prefix are wrapped in braces.
func (r Reference) Text() string {
	if r.Template && strings.Contains(r.Replacement, ".") {
		return "{" + r.Replacement + "}"
	}
	return r.Replacement
}

func lineOf(src []byte, off int) int {
	return strings.Count(string(src[:off]), "\n") + 1
}
