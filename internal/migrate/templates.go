package migrate

import (
	"fmt"
	"strings"

	"github.com/dejo1307/viewbindmigrate/internal/binding"
	"github.com/dejo1307/viewbindmigrate/internal/naming"
)

// SingleBindingName is the property name used when a file has one binding.
const SingleBindingName = "binding"

// DelegateProperty returns the declaration of a binding acquired through
// the viewBinding() delegate, or through its parent binding when nested.
func DelegateProperty(d binding.Descriptor, multiple bool) string {
	name := d.Binding.Name
	if !multiple {
		return fmt.Sprintf("private val %s: %s by viewBinding()", SingleBindingName, name)
	}
	local := naming.BindingToLocal(name)
	if d.Kind == binding.Include {
		return fmt.Sprintf("private val %s: %s = %s.%s", local, name, naming.BindingToLocal(d.Parent), d.IncludeID)
	}
	return fmt.Sprintf("private val %s: %s by viewBinding()", local, name)
}

// InflateProperty returns the declaration of a binding inflated into a
// custom view.
func InflateProperty(name string, multiple bool) string {
	local := SingleBindingName
	if multiple {
		local = naming.BindingToLocal(name)
	}
	return fmt.Sprintf("private val %s = inflateAndBindView(%s::inflate)", local, name)
}

// CellBindArgument is the with() argument that replaces
// viewHolder.itemView in a cell's bind function.
func CellBindArgument(name string) string {
	return fmt.Sprintf("viewHolder.getViewBinding(%s::bind)", name)
}

// cellWithArgument is the with() argument a cell's bind function uses.
const cellWithArgument = "viewHolder.itemView"

// ContentViewBindingName returns the property that holds the binding of a
// layout: "binding" in single-binding files, otherwise the decapitalized
// binding class of the first synthetic import mentioning the layout.
func ContentViewBindingName(set *binding.Set, layoutName string) string {
	if !set.Multiple() {
		return SingleBindingName
	}
	for _, path := range set.Imports {
		if strings.Contains(path, layoutName) {
			l, _, _ := binding.ParseSyntheticImport(path)
			return naming.BindingToLocal(naming.LayoutToBinding(l))
		}
	}
	return SingleBindingName
}

// BindingImport returns the import of a generated binding class.
func BindingImport(namespace, name string) string {
	return namespace + ".databinding." + name
}
