package restore

import (
	"fmt"
	"path/filepath"
)

// Plan maps every selected component to the path it will be imported
// from. Planning is pure: no path in the plan has been checked for
// existence yet, that happens when the component importer runs.
type Plan struct {
	sources map[Component]string
	order   []Component
}

// BuildPlan resolves each selected component to a concrete source path.
// An override path wins; otherwise the path is derived from the layout
// of the extracted archive. A component with neither fails the plan.
func BuildPlan(req *Request, extractionDir string) (*Plan, error) {
	p := &Plan{sources: make(map[Component]string)}

	for _, c := range req.Selected() {
		var source string
		switch {
		case req.override(c) != "":
			source = req.override(c)
		case extractionDir != "":
			source = filepath.Join(extractionDir, c.subpath())
		default:
			return nil, fmt.Errorf("component %s: %w: provide %s or an archive source", c, ErrMissingSource, c.overrideFlag())
		}
		p.sources[c] = source
		p.order = append(p.order, c)
	}

	return p, nil
}

// Components returns the planned components in execution order.
func (p *Plan) Components() []Component {
	return p.order
}

// Source returns the planned source path for a component.
func (p *Plan) Source(c Component) (string, bool) {
	source, ok := p.sources[c]
	return source, ok
}
