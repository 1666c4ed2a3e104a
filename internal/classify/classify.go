// Package classify decides which binding strategy applies to a class.
package classify

import "github.com/dejo1307/viewbindmigrate/internal/hierarchy"

// Kind is the classification of a host class.
type Kind string

const (
	Activity  Kind = "activity"
	Fragment  Kind = "fragment"
	View      Kind = "view"
	Custom    Kind = "custom"
	Unhandled Kind = "unhandled"
)

// Framework base classes.
const (
	ActivityClass         = "android.app.Activity"
	FragmentClass         = "androidx.fragment.app.Fragment"
	PlatformFragmentClass = "android.app.Fragment"
	ViewClass             = "android.view.View"
)

// Result is the outcome of Classify.
type Result struct {
	Kind    Kind   `json:"kind"`
	Handler string `json:"handler,omitempty"` // set for Custom
}

// Classifier checks the framework kinds first, then each custom handler in
// registration order. The first match wins.
type Classifier struct {
	handlers *Registry
}

// New creates a classifier with the given custom handlers.
func New(handlers ...Handler) *Classifier {
	r := NewRegistry()
	for _, h := range handlers {
		r.Register(h)
	}
	return &Classifier{handlers: r}
}

// Handlers returns the custom handler registry.
func (c *Classifier) Handlers() *Registry {
	return c.handlers
}

// Classify returns the kind of a class from its supertype chain.
func (c *Classifier) Classify(parents hierarchy.Parents) Result {
	switch {
	case parents.IsChildOf(ActivityClass):
		return Result{Kind: Activity}
	case parents.IsChildOfAny(FragmentClass, PlatformFragmentClass):
		return Result{Kind: Fragment}
	case parents.IsChildOf(ViewClass):
		return Result{Kind: View}
	}
	for _, h := range c.handlers.All() {
		if h.CanHandle(parents) {
			return Result{Kind: Custom, Handler: h.Name()}
		}
	}
	return Result{Kind: Unhandled}
}
