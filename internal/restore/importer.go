package restore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"go.uber.org/zap"
	"siteport.dev/siteport-cli/internal/dbimport"
	"siteport.dev/siteport-cli/internal/environment"
	"siteport.dev/siteport-cli/internal/prompt"
	"siteport.dev/siteport-cli/internal/transfer"
)

// Importer restores one component into the target environment. Every
// implementation follows the same sequence: validate the source, obtain
// consent, resolve the destination, then hand off the actual work.
type Importer interface {
	Component() Component
	Import(ctx context.Context, source string, env environment.Descriptor) error
}

// CodeImporter replaces the application code of the environment.
type CodeImporter struct {
	Syncer  transfer.Syncer
	Confirm prompt.Confirmer
	// Status supplies the remote application root.
	Status *environment.Resolver
	// LocalRoot resolves the local application root for local restores.
	LocalRoot func() (string, error)
	Logger    *zap.Logger
}

var _ Importer = (*CodeImporter)(nil)

func (i *CodeImporter) Component() Component { return ComponentCode }

func (i *CodeImporter) Import(ctx context.Context, source string, env environment.Descriptor) error {
	if err := requireDir(source, "code"); err != nil {
		return err
	}

	ok, err := i.Confirm.Confirm(fmt.Sprintf("Import code from %s to environment %q?", source, env.Name))
	if err != nil {
		return fmt.Errorf("code import: %w", err)
	}
	if !ok {
		return fmt.Errorf("code import: %w", ErrUserAborted)
	}

	var dest string
	if env.IsRemote() {
		status, err := i.Status.Status(ctx, env)
		if err != nil {
			return fmt.Errorf("code import: %w", err)
		}
		if status.AppRoot == "" {
			return fmt.Errorf("code import into %q: app_root: %w", env.Name, ErrMissingField)
		}
		dest = env.Target() + ":" + status.AppRoot
	} else {
		root, err := i.LocalRoot()
		if err != nil {
			return fmt.Errorf("code import: %w", err)
		}
		dest = root
	}

	if i.Logger != nil {
		i.Logger.Debug("importing code",
			zap.String("source", source),
			zap.String("dest", dest))
	}
	return i.Syncer.Sync(ctx, source, dest)
}

// FilesImporter replaces the environment's public files.
type FilesImporter struct {
	Syncer  transfer.Syncer
	Confirm prompt.Confirmer
	// Status supplies the files destination. Local environments report
	// an absolute files root; remote ones report the application root
	// plus the files subpath underneath it.
	Status *environment.Resolver
	Logger *zap.Logger
}

var _ Importer = (*FilesImporter)(nil)

func (i *FilesImporter) Component() Component { return ComponentFiles }

func (i *FilesImporter) Import(ctx context.Context, source string, env environment.Descriptor) error {
	if err := requireDir(source, "files"); err != nil {
		return err
	}

	ok, err := i.Confirm.Confirm(fmt.Sprintf("Import files from %s to environment %q?", source, env.Name))
	if err != nil {
		return fmt.Errorf("files import: %w", err)
	}
	if !ok {
		return fmt.Errorf("files import: %w", ErrUserAborted)
	}

	status, err := i.Status.Status(ctx, env)
	if err != nil {
		return fmt.Errorf("files import: %w", err)
	}

	var dest string
	if env.IsRemote() {
		if status.AppRoot == "" {
			return fmt.Errorf("files import into %q: app_root: %w", env.Name, ErrMissingField)
		}
		if status.FilesPath == "" {
			return fmt.Errorf("files import into %q: files_path: %w", env.Name, ErrMissingField)
		}
		dest = env.Target() + ":" + path.Join(status.AppRoot, status.FilesPath)
	} else {
		if status.FilesRoot == "" {
			return fmt.Errorf("files import into %q: %w", env.Name, ErrEmptyPath)
		}
		dest = status.FilesRoot
	}

	if i.Logger != nil {
		i.Logger.Debug("importing files",
			zap.String("source", source),
			zap.String("dest", dest))
	}
	return i.Syncer.Sync(ctx, source, dest)
}

// DatabaseImporter loads the archive's SQL dump into the environment's
// database. The heavy lifting is delegated to the dbimport collaborator
// once the dump is validated and the user has consented.
type DatabaseImporter struct {
	DB      dbimport.Importer
	Confirm prompt.Confirmer
	Logger  *zap.Logger
}

var _ Importer = (*DatabaseImporter)(nil)

func (i *DatabaseImporter) Component() Component { return ComponentDatabase }

func (i *DatabaseImporter) Import(ctx context.Context, source string, env environment.Descriptor) error {
	fi, err := os.Stat(source)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("database dump %s: %w", source, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to inspect database dump %s: %w", source, err)
	}
	if fi.IsDir() {
		return fmt.Errorf("database dump %s is a directory", source)
	}

	ok, err := i.Confirm.Confirm(fmt.Sprintf("Import database dump %s into environment %q?", source, env.Name))
	if err != nil {
		return fmt.Errorf("database import: %w", err)
	}
	if !ok {
		return fmt.Errorf("database import: %w", ErrUserAborted)
	}

	if i.Logger != nil {
		i.Logger.Debug("importing database",
			zap.String("dump", source),
			zap.String("environment", env.Name))
	}
	return i.DB.Import(ctx, source, env)
}

func requireDir(source, what string) error {
	fi, err := os.Stat(source)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s directory %s: %w", what, source, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to inspect %s directory %s: %w", what, source, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s source %s is not a directory", what, source)
	}
	return nil
}
