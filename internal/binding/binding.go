// Package binding maps a file's synthetic imports to generated binding
// classes and works out which bindings are nested in others through
// <include> placements.
package binding

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dejo1307/viewbindmigrate/internal/layout"
	"github.com/dejo1307/viewbindmigrate/internal/naming"
	"github.com/dejo1307/viewbindmigrate/internal/notify"
)

// Binding pairs a layout with its generated binding class.
type Binding struct {
	Layout string `json:"layout"`
	Name   string `json:"name"`
}

// Local is the property name of the binding in files that hold several.
func (b Binding) Local() string {
	return naming.BindingToLocal(b.Name)
}

// Set is the outcome of resolving one file's synthetic imports.
type Set struct {
	Imports  []string  `json:"imports"`  // synthetic import paths in file order
	Bindings []Binding `json:"bindings"` // distinct, first-seen order

	byLayout map[string]string
}

// ParseSyntheticImport splits a synthetic import path into its layout and,
// for per-view imports, the view id.
func ParseSyntheticImport(path string) (layoutName, view string, ok bool) {
	rest, ok := strings.CutPrefix(path, naming.SyntheticPrefix)
	if !ok {
		return "", "", false
	}
	rest = strings.TrimSuffix(rest, ".*")
	if rest == "" || rest == "*" {
		return "", "", false
	}
	layoutName, view, _ = strings.Cut(rest, ".")
	return layoutName, view, true
}

// Resolve builds the binding set from a file's import paths. Non-synthetic
// paths are ignored.
func Resolve(paths []string) *Set {
	s := &Set{byLayout: make(map[string]string)}
	for _, p := range paths {
		name, _, ok := ParseSyntheticImport(p)
		if !ok {
			continue
		}
		s.Imports = append(s.Imports, p)
		if _, seen := s.byLayout[name]; seen {
			continue
		}
		b := Binding{Layout: name, Name: naming.LayoutToBinding(name)}
		s.byLayout[name] = b.Name
		s.Bindings = append(s.Bindings, b)
	}
	return s
}

// Multiple reports whether the file uses more than one binding.
func (s *Set) Multiple() bool {
	return len(s.Bindings) > 1
}

// Empty reports whether the file has no synthetic imports.
func (s *Set) Empty() bool {
	return len(s.Imports) == 0
}

// Name returns the binding class generated for a layout.
func (s *Set) Name(layoutName string) (string, bool) {
	n, ok := s.byLayout[layoutName]
	return n, ok
}

// Names returns the binding class names in first-seen order.
func (s *Set) Names() []string {
	names := make([]string, len(s.Bindings))
	for i, b := range s.Bindings {
		names[i] = b.Name
	}
	return names
}

// WildcardLayouts returns the layouts imported with ".*", in first-seen
// order. Their view ids are known only from the layout files.
func (s *Set) WildcardLayouts() []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range s.Imports {
		name, view, _ := ParseSyntheticImport(p)
		if view == "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// Layouts returns the layout names in first-seen order.
func (s *Set) Layouts() []string {
	names := make([]string, len(s.Bindings))
	for i, b := range s.Bindings {
		names[i] = b.Layout
	}
	return names
}

// Kind tells how a binding is acquired.
type Kind string

const (
	// NoInclude bindings are acquired from the host class directly.
	NoInclude Kind = "no_include"
	// Include bindings are a property of another binding.
	Include Kind = "include"
)

// Descriptor says how one binding is acquired. For Include descriptors,
// IncludeID is the camel-cased id of the placement and Parent the binding
// class that declares it.
type Descriptor struct {
	Binding   Binding `json:"binding"`
	Kind      Kind    `json:"kind"`
	IncludeID string  `json:"include_id,omitempty"`
	Parent    string  `json:"parent,omitempty"`
}

// IncludeLookup answers whether one layout includes another.
type IncludeLookup interface {
	IncludedViewID(host, included string) (string, layout.IncludeStatus)
}

// ResolveIncludes checks every pair of bindings in both directions and
// returns one descriptor per binding, in binding order. A descriptor is
// set at most once. With a nil lookup every binding is NoInclude.
// Placements without an id are reported to n and treated as NoInclude.
func ResolveIncludes(bindings []Binding, lookup IncludeLookup, n notify.Notifier) []Descriptor {
	ds := make([]Descriptor, len(bindings))
	for i, b := range bindings {
		ds[i] = Descriptor{Binding: b, Kind: NoInclude}
	}
	if lookup == nil {
		return ds
	}

	check := func(child, host int) bool {
		raw, status := lookup.IncludedViewID(bindings[host].Layout, bindings[child].Layout)
		switch status {
		case layout.IncludeFound:
			ds[child].Kind = Include
			ds[child].IncludeID = naming.IDToProperty(raw)
			ds[child].Parent = bindings[host].Name
			return true
		case layout.IncludeNoID:
			n.Notify(notify.Warn, fmt.Sprintf("Include tag must have id attribute: <include layout=\"@layout/%s\"> in %s.xml",
				bindings[child].Layout, bindings[host].Layout))
		}
		return false
	}

	for i := range bindings {
		for j := i + 1; j < len(bindings); j++ {
			if ds[i].Kind == NoInclude && check(i, j) {
				continue
			}
			if ds[j].Kind == NoInclude {
				check(j, i)
			}
		}
	}
	return ds
}

// Sorted returns the descriptors with every Include entry ahead of every
// NoInclude entry, keeping the relative order within each group.
func Sorted(ds []Descriptor) []Descriptor {
	out := append([]Descriptor(nil), ds...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Kind == Include && out[j].Kind == NoInclude
	})
	return out
}

// Lookup returns the descriptor of a binding class.
func Lookup(ds []Descriptor, name string) (Descriptor, bool) {
	for _, d := range ds {
		if d.Binding.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}
