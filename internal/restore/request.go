// Package restore orchestrates site restores: it stages an archive,
// plans which components to import, and runs the component importers in
// a fixed order against a local or remote environment.
package restore

import "path/filepath"

// Component identifies one restorable part of a site archive.
type Component string

const (
	ComponentCode     Component = "code"
	ComponentFiles    Component = "files"
	ComponentDatabase Component = "database"
)

// Components lists every component in its fixed execution order.
func Components() []Component {
	return []Component{ComponentCode, ComponentFiles, ComponentDatabase}
}

// subpath is where the component lives inside an extracted archive.
func (c Component) subpath() string {
	switch c {
	case ComponentDatabase:
		return filepath.Join("database", "database.sql")
	default:
		return string(c)
	}
}

// overrideFlag names the CLI flag that supplies a direct source path.
func (c Component) overrideFlag() string {
	if c == ComponentDatabase {
		return "--db-path"
	}
	return "--" + string(c) + "-path"
}

// Request is the fully parsed intent of one restore invocation. It is
// built once at the CLI boundary and never mutated afterwards.
type Request struct {
	// Source is the archive argument: a .tar.gz path, an already
	// extracted directory, or an s3:// URL. Empty when the restore runs
	// purely from override paths.
	Source string
	// Environment is the target environment name, empty for local.
	Environment string

	// Component selection. Selecting none selects all.
	Code     bool
	Files    bool
	Database bool

	// Per-component override paths. An override implies selection and
	// wins over the extracted archive layout.
	CodePath     string
	FilesPath    string
	DatabasePath string

	// Overwrite allows extraction over an existing directory.
	Overwrite bool
}

// Selected returns the requested components in execution order.
func (r *Request) Selected() []Component {
	selected := make([]Component, 0, 3)
	all := !r.Code && !r.Files && !r.Database &&
		r.CodePath == "" && r.FilesPath == "" && r.DatabasePath == ""
	for _, c := range Components() {
		if all || r.wants(c) {
			selected = append(selected, c)
		}
	}
	return selected
}

func (r *Request) wants(c Component) bool {
	switch c {
	case ComponentCode:
		return r.Code || r.CodePath != ""
	case ComponentFiles:
		return r.Files || r.FilesPath != ""
	case ComponentDatabase:
		return r.Database || r.DatabasePath != ""
	}
	return false
}

func (r *Request) override(c Component) string {
	switch c {
	case ComponentCode:
		return r.CodePath
	case ComponentFiles:
		return r.FilesPath
	case ComponentDatabase:
		return r.DatabasePath
	}
	return ""
}
