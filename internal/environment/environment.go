// Package environment resolves restore targets: the implicit local
// environment or a named remote host from the configuration, plus the
// live status each target reports about its filesystem layout.
package environment

import (
	"fmt"
	"sort"
	"strings"

	"siteport.dev/siteport-cli/internal/config"
)

// LocalName is the reserved name of the implicit local environment.
const LocalName = "local"

// Descriptor identifies a restore target. A descriptor with an empty
// Host is the local machine.
type Descriptor struct {
	Name string
	Host string
	User string
	// Path is the directory on the remote host where the application
	// lives and where environment commands are executed.
	Path string
}

// IsRemote reports whether the descriptor points at a remote host.
func (d Descriptor) IsRemote() bool {
	return d.Host != ""
}

// Target returns the ssh destination for the descriptor, e.g. "deploy@prod".
func (d Descriptor) Target() string {
	if d.User == "" {
		return d.Host
	}
	return d.User + "@" + d.Host
}

// Local returns the descriptor of the machine siteport runs on.
func Local() Descriptor {
	return Descriptor{Name: LocalName}
}

// Registry holds the environments named in the configuration.
type Registry struct {
	envs map[string]Descriptor
}

// NewRegistry builds a registry from the configured environment map.
func NewRegistry(envs map[string]config.Environment) *Registry {
	r := &Registry{envs: make(map[string]Descriptor, len(envs))}
	for name, e := range envs {
		r.envs[name] = Descriptor{
			Name: name,
			Host: e.Host,
			User: e.User,
			Path: e.Path,
		}
	}
	return r
}

// Resolve maps an environment name to its descriptor. An empty name or
// "local" resolves to the local environment; anything else must be
// configured.
func (r *Registry) Resolve(name string) (Descriptor, error) {
	if name == "" || name == LocalName {
		return Local(), nil
	}
	env, ok := r.envs[name]
	if !ok {
		known := r.Names()
		if len(known) == 0 {
			return Descriptor{}, fmt.Errorf("unknown environment %q: no environments are configured", name)
		}
		return Descriptor{}, fmt.Errorf("unknown environment %q (configured: %s)", name, strings.Join(known, ", "))
	}
	return env, nil
}

// Names returns the configured environment names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.envs))
	for name := range r.envs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
