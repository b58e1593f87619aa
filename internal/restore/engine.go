package restore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"siteport.dev/siteport-cli/internal/archive"
	"siteport.dev/siteport-cli/internal/crypto"
	"siteport.dev/siteport-cli/internal/environment"
	"siteport.dev/siteport-cli/internal/workspace"
)

// Engine runs one restore from request to finished imports. It is
// assembled per invocation; collaborators carry all configuration.
type Engine struct {
	// Env is the resolved target environment.
	Env environment.Descriptor
	// BackupRoot hosts the run's temporary workspace.
	BackupRoot string
	// Archives resolves the source argument to an archive source.
	Archives *archive.Resolver
	// Decryptor handles .age archives, nil when not configured.
	Decryptor *crypto.AgeDecryptor
	Extractor *Extractor
	// Importers in their fixed execution order.
	Importers []Importer
	Logger    *zap.Logger
}

// Summary captures what a run did, for reporting. It is returned even
// when the run fails so the failure shows up in the report.
type Summary struct {
	ID          string
	Environment string
	Source      string
	Started     time.Time
	Results     []ComponentResult
}

// ComponentResult is the outcome of a single component import.
type ComponentResult struct {
	Component Component
	Source    string
	Duration  time.Duration
	Err       error
}

// Failed reports whether the import errored.
func (r ComponentResult) Failed() bool { return r.Err != nil }

// Run executes the restore. The first failing step aborts the whole
// run; temporary extraction state is cleaned up on every path.
func (e *Engine) Run(ctx context.Context, req *Request) (*Summary, error) {
	summary := &Summary{
		ID:          uuid.New().String(),
		Environment: e.Env.Name,
		Source:      req.Source,
		Started:     time.Now().UTC(),
	}

	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var extractionDir string
	if req.Source != "" {
		// Cleanup is registered before anything is fetched or
		// extracted, so every failure path releases the workspace.
		ws := workspace.New(e.BackupRoot, logger)
		defer ws.Release()

		dir, err := e.stage(ctx, req, ws)
		if err != nil {
			return summary, err
		}
		extractionDir = dir
	}

	plan, err := BuildPlan(req, extractionDir)
	if err != nil {
		return summary, err
	}

	for _, c := range plan.Components() {
		imp := e.importer(c)
		if imp == nil {
			return summary, fmt.Errorf("no importer registered for component %s", c)
		}
		source, _ := plan.Source(c)

		fmt.Printf("Importing %s from %s...\n", c, source)
		started := time.Now()
		err := imp.Import(ctx, source, e.Env)
		summary.Results = append(summary.Results, ComponentResult{
			Component: c,
			Source:    source,
			Duration:  time.Since(started),
			Err:       err,
		})
		if err != nil {
			fmt.Printf("✗ %s import failed.\n", c)
			return summary, err
		}
		fmt.Printf("✓ %s imported.\n", c)
	}

	return summary, nil
}

// stage turns the source argument into a directory of components: an
// extracted directory passes through, an archive is fetched, decrypted
// and extracted as needed.
func (e *Engine) stage(ctx context.Context, req *Request, ws *workspace.Workspace) (string, error) {
	raw := req.Source

	if !archive.IsRemote(raw) {
		fi, err := os.Stat(raw)
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("archive %s: %w", raw, ErrNotFound)
		}
		if err != nil {
			return "", fmt.Errorf("failed to inspect archive %s: %w", raw, err)
		}
		if fi.IsDir() {
			// An already extracted archive; it belongs to the user and
			// is not cleaned up after the run.
			return raw, nil
		}
	}

	source, err := e.Archives.Resolve(raw)
	if err != nil {
		return "", err
	}

	var staging string
	if archive.IsRemote(raw) {
		staging, err = ws.Dir()
		if err != nil {
			return "", err
		}
		fmt.Printf("Fetching archive from %s...\n", source)
	}

	archivePath, err := source.Fetch(ctx, staging)
	if err != nil {
		return "", err
	}
	if archive.IsRemote(raw) {
		fmt.Println("✓ Archive fetched.")
	}

	if strings.HasSuffix(archivePath, crypto.Suffix) {
		if e.Decryptor == nil {
			return "", fmt.Errorf("archive %s is encrypted but archive.encryption is not configured", archivePath)
		}
		staging, err := ws.Dir()
		if err != nil {
			return "", err
		}
		archivePath, err = e.Decryptor.DecryptFile(archivePath, staging)
		if err != nil {
			return "", err
		}
		fmt.Println("✓ Archive decrypted.")
	}

	dir, err := e.Extractor.Extract(archivePath, req.Overwrite)
	if err != nil {
		return "", err
	}
	ws.Track(dir)
	fmt.Printf("✓ Archive extracted to %s.\n", dir)
	return dir, nil
}

func (e *Engine) importer(c Component) Importer {
	for _, imp := range e.Importers {
		if imp.Component() == c {
			return imp
		}
	}
	return nil
}
