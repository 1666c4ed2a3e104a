package classify

import "github.com/dejo1307/viewbindmigrate/internal/hierarchy"

// Handler claims classes that none of the framework kinds match.
type Handler interface {
	// Name returns the handler identifier (e.g. "cell").
	Name() string
	// CanHandle reports whether the class with the given supertype chain
	// belongs to this handler.
	CanHandle(parents hierarchy.Parents) bool
}

// Registry holds custom handlers in registration order.
type Registry struct {
	handlers []Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a handler; earlier handlers take precedence.
func (r *Registry) Register(h Handler) {
	r.handlers = append(r.handlers, h)
}

// Get returns the handler with the given name, or nil if not found.
func (r *Registry) Get(name string) Handler {
	for _, h := range r.handlers {
		if h.Name() == name {
			return h
		}
	}
	return nil
}

// All returns all registered handlers.
func (r *Registry) All() []Handler {
	return r.handlers
}

// InterfaceHandler claims classes implementing a given interface.
type InterfaceHandler struct {
	ID        string
	Interface string // fully qualified interface name
}

func (h InterfaceHandler) Name() string { return h.ID }

func (h InterfaceHandler) CanHandle(parents hierarchy.Parents) bool {
	return parents.IsChildOf(h.Interface)
}
