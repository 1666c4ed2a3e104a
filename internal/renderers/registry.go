// Package renderers turns a run report into output artifacts.
package renderers

import (
	"context"
	"log"

	"github.com/dejo1307/viewbindmigrate/internal/report"
)

// Renderer produces output artifacts from a run report.
type Renderer interface {
	Name() string
	Render(ctx context.Context, rep *report.Report) ([]report.Artifact, error)
}

// Registry keeps renderers in registration order, one per name.
type Registry struct {
	renderers []Renderer
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds rnd, replacing a renderer registered under the same name.
func (r *Registry) Register(rnd Renderer) {
	for i, have := range r.renderers {
		if have.Name() == rnd.Name() {
			r.renderers[i] = rnd
			return
		}
	}
	r.renderers = append(r.renderers, rnd)
}

// Names returns the registered renderer names.
func (r *Registry) Names() []string {
	names := make([]string, len(r.renderers))
	for i, rnd := range r.renderers {
		names[i] = rnd.Name()
	}
	return names
}

// Render runs every renderer that enabled accepts (all of them when enabled
// is nil) and appends their artifacts to rep. A failing renderer is logged
// and skipped. It returns the names of the renderers that produced output.
func (r *Registry) Render(ctx context.Context, rep *report.Report, enabled func(name string) bool) ([]string, error) {
	used := []string{}
	for _, rnd := range r.renderers {
		if err := ctx.Err(); err != nil {
			return used, err
		}
		if enabled != nil && !enabled(rnd.Name()) {
			continue
		}
		log.Printf("[renderers] running %s", rnd.Name())
		artifacts, err := rnd.Render(ctx, rep)
		if err != nil {
			log.Printf("[renderers] %s failed: %v", rnd.Name(), err)
			continue
		}
		rep.Artifacts = append(rep.Artifacts, artifacts...)
		used = append(used, rnd.Name())
	}
	return used, nil
}
