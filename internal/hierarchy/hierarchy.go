// Package hierarchy answers supertype questions about Kotlin classes. It
// combines a table of Android framework classes with the classes declared
// in a project's sources.
package hierarchy

import (
	"sort"
	"strings"

	"github.com/dejo1307/viewbindmigrate/internal/kotlin"
)

const (
	activity  = "android.app.Activity"
	fragment  = "androidx.fragment.app.Fragment"
	view      = "android.view.View"
	viewGroup = "android.view.ViewGroup"
	frame     = "android.widget.FrameLayout"
	linear    = "android.widget.LinearLayout"
	textView  = "android.widget.TextView"
)

// builtin lists framework classes with their direct supertypes.
var builtin = []struct {
	class  string
	supers []string
}{
	{activity, nil},
	{"androidx.core.app.ComponentActivity", []string{activity}},
	{"androidx.activity.ComponentActivity", []string{"androidx.core.app.ComponentActivity"}},
	{"androidx.fragment.app.FragmentActivity", []string{"androidx.activity.ComponentActivity"}},
	{"androidx.appcompat.app.AppCompatActivity", []string{"androidx.fragment.app.FragmentActivity"}},
	{"android.app.ListActivity", []string{activity}},
	{fragment, nil},
	{"androidx.fragment.app.DialogFragment", []string{fragment}},
	{"androidx.fragment.app.ListFragment", []string{fragment}},
	{"androidx.appcompat.app.AppCompatDialogFragment", []string{"androidx.fragment.app.DialogFragment"}},
	{"com.google.android.material.bottomsheet.BottomSheetDialogFragment", []string{"androidx.appcompat.app.AppCompatDialogFragment"}},
	{"androidx.preference.PreferenceFragmentCompat", []string{fragment}},
	{"android.app.Fragment", nil},
	{"android.app.DialogFragment", []string{"android.app.Fragment"}},
	{view, nil},
	{viewGroup, []string{view}},
	{frame, []string{viewGroup}},
	{linear, []string{viewGroup}},
	{"android.widget.RelativeLayout", []string{viewGroup}},
	{"android.widget.ScrollView", []string{frame}},
	{"android.widget.HorizontalScrollView", []string{frame}},
	{textView, []string{view}},
	{"android.widget.Button", []string{textView}},
	{"android.widget.EditText", []string{textView}},
	{"android.widget.ImageView", []string{view}},
	{"androidx.appcompat.widget.AppCompatTextView", []string{textView}},
	{"androidx.appcompat.widget.AppCompatImageView", []string{"android.widget.ImageView"}},
	{"androidx.appcompat.widget.Toolbar", []string{viewGroup}},
	{"androidx.constraintlayout.widget.ConstraintLayout", []string{viewGroup}},
	{"androidx.coordinatorlayout.widget.CoordinatorLayout", []string{viewGroup}},
	{"androidx.core.widget.NestedScrollView", []string{frame}},
	{"androidx.cardview.widget.CardView", []string{frame}},
	{"androidx.recyclerview.widget.RecyclerView", []string{viewGroup}},
	{"com.google.android.material.card.MaterialCardView", []string{"androidx.cardview.widget.CardView"}},
	{"com.google.android.material.appbar.AppBarLayout", []string{linear}},
	{"com.google.android.material.appbar.CollapsingToolbarLayout", []string{frame}},
}

// Index maps fully qualified class names to their direct supertypes. An
// Index is filled by Build or Add and must not be modified while it is
// being queried.
type Index struct {
	parents  map[string][]string
	bySimple map[string][]string
	declared int
}

// NewIndex returns an index of the framework classes plus the given
// overrides (fqn -> direct supertype fqns).
func NewIndex(overrides map[string][]string) *Index {
	idx := &Index{
		parents:  make(map[string][]string, len(builtin)+len(overrides)),
		bySimple: make(map[string][]string),
	}
	for _, b := range builtin {
		idx.define(b.class, b.supers)
	}
	for fqn, supers := range overrides {
		idx.define(fqn, supers)
	}
	return idx
}

func (idx *Index) define(fqn string, supers []string) {
	if _, ok := idx.parents[fqn]; !ok {
		s := simpleName(fqn)
		idx.bySimple[s] = append(idx.bySimple[s], fqn)
	}
	idx.parents[fqn] = supers
}

// Len returns the number of classes the index knows about.
func (idx *Index) Len() int {
	return len(idx.parents)
}

// Declared returns the number of project classes added to the index.
func (idx *Index) Declared() int {
	return idx.declared
}

// Known reports whether fqn is in the index.
func (idx *Index) Known(fqn string) bool {
	_, ok := idx.parents[fqn]
	return ok
}

// Add indexes the classes declared in files. Every class is declared
// before any supertype is resolved, so files may refer to each other.
func (idx *Index) Add(files ...*kotlin.File) {
	type pending struct {
		file  *kotlin.File
		class *kotlin.Class
		fqn   string
	}
	var all []pending
	for _, f := range files {
		for i := range f.Classes {
			c := &f.Classes[i]
			fqn := QualifiedName(f, c)
			if _, ok := idx.parents[fqn]; !ok {
				idx.declared++
			}
			idx.define(fqn, nil)
			all = append(all, pending{file: f, class: c, fqn: fqn})
		}
	}
	for _, p := range all {
		supers := make([]string, 0, len(p.class.Supertypes))
		for _, s := range p.class.Supertypes {
			supers = append(supers, idx.Resolve(p.file, s))
		}
		idx.parents[p.fqn] = supers
	}
}

// QualifiedName returns the fully qualified name of a class declared in f.
func QualifiedName(f *kotlin.File, c *kotlin.Class) string {
	name := c.Name
	for p := c.Parent; p >= 0; p = f.Classes[p].Parent {
		name = f.Classes[p].Name + "." + name
	}
	if f.Package == "" {
		return name
	}
	return f.Package + "." + name
}

// Resolve turns a type name written in f into a fully qualified name. It
// tries explicit imports, already qualified names, the file's package,
// wildcard imports and finally a unique simple-name match. Unresolvable
// names are returned unchanged.
func (idx *Index) Resolve(f *kotlin.File, name string) string {
	first, rest, dotted := strings.Cut(name, ".")
	for _, imp := range f.Imports {
		if strings.HasSuffix(imp.Path, ".*") {
			continue
		}
		local := imp.Alias
		if local == "" {
			local = simpleName(imp.Path)
		}
		if local != first {
			continue
		}
		if dotted {
			return imp.Path + "." + rest
		}
		return imp.Path
	}
	if dotted && first != "" && first[0] >= 'a' && first[0] <= 'z' {
		return name
	}
	if f.Package != "" {
		if fqn := f.Package + "." + name; idx.Known(fqn) {
			return fqn
		}
	} else if idx.Known(name) {
		return name
	}
	for _, imp := range f.Imports {
		if pkg, ok := strings.CutSuffix(imp.Path, ".*"); ok {
			if fqn := pkg + "." + name; idx.Known(fqn) {
				return fqn
			}
		}
	}
	if fqns := idx.bySimple[name]; len(fqns) == 1 {
		return fqns[0]
	}
	return name
}

// Chain returns every transitive supertype of fqn, nearest first.
func (idx *Index) Chain(fqn string) []string {
	return idx.linearize(idx.parents[fqn], fqn)
}

// ParentsOf resolves the supertypes of c, declared in f, and returns its
// full supertype chain. The class does not need to be in the index.
func (idx *Index) ParentsOf(f *kotlin.File, c *kotlin.Class) Parents {
	direct := make([]string, 0, len(c.Supertypes))
	for _, s := range c.Supertypes {
		direct = append(direct, idx.Resolve(f, s))
	}
	return idx.linearize(direct, QualifiedName(f, c))
}

func (idx *Index) linearize(start []string, self string) []string {
	seen := map[string]bool{self: true}
	var out []string
	queue := append([]string(nil), start...)
	for len(queue) > 0 {
		fqn := queue[0]
		queue = queue[1:]
		if seen[fqn] {
			continue
		}
		seen[fqn] = true
		out = append(out, fqn)
		queue = append(queue, idx.parents[fqn]...)
	}
	return out
}

// Classes returns the indexed class names in sorted order.
func (idx *Index) Classes() []string {
	names := make([]string, 0, len(idx.parents))
	for fqn := range idx.parents {
		names = append(names, fqn)
	}
	sort.Strings(names)
	return names
}

// Parents is a linearized supertype chain.
type Parents []string

// IsChildOf reports whether fqn appears in the chain.
func (p Parents) IsChildOf(fqn string) bool {
	for _, s := range p {
		if s == fqn {
			return true
		}
	}
	return false
}

// IsChildOfAny reports whether any of fqns appears in the chain.
func (p Parents) IsChildOfAny(fqns ...string) bool {
	for _, fqn := range fqns {
		if p.IsChildOf(fqn) {
			return true
		}
	}
	return false
}

func simpleName(fqn string) string {
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return fqn[i+1:]
	}
	return fqn
}
