// Package transfer moves component directories between the extracted
// archive and a local or remote destination.
package transfer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Syncer copies the contents of source into dest, replacing what is there.
type Syncer interface {
	Sync(ctx context.Context, source, dest string) error
}

// Error describes a failed transfer. It keeps the endpoints and the
// tool's error stream so the failure can be diagnosed from the report.
type Error struct {
	Source string
	Dest   string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("transfer from %s to %s failed: %v", e.Source, e.Dest, e.Err)
	if e.Stderr != "" {
		msg += "\nstderr: " + strings.TrimSpace(e.Stderr)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Rsync delegates transfers to the rsync binary. Remote endpoints use
// the "user@host:path" form and travel over the configured remote shell.
type Rsync struct {
	// Path is the rsync binary, "rsync" when empty.
	Path string
	// SSH is the remote shell handed to rsync via -e.
	SSH string
	// ExtraArgs are appended verbatim, e.g. "--exclude=.git".
	ExtraArgs []string
	// Verbose streams rsync's own progress output to stdout.
	Verbose bool
	Logger  *zap.Logger
}

var _ Syncer = (*Rsync)(nil)

// Sync runs rsync in archive mode with compression. Both endpoints are
// normalized with a trailing slash so the destination directory is
// replaced by the source's contents instead of gaining a nested copy.
func (r *Rsync) Sync(ctx context.Context, source, dest string) error {
	args := r.args(source, dest)

	bin := r.Path
	if bin == "" {
		bin = "rsync"
	}
	cmd := exec.CommandContext(ctx, bin, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if r.Verbose {
		cmd.Stdout = os.Stdout
	}

	if r.Logger != nil {
		r.Logger.Debug("running rsync", zap.Strings("args", cmd.Args))
	}

	if err := cmd.Run(); err != nil {
		return &Error{
			Source: source,
			Dest:   dest,
			Stderr: stderr.String(),
			Err:    err,
		}
	}
	return nil
}

func (r *Rsync) args(source, dest string) []string {
	args := []string{"-az"}
	if r.Verbose {
		args = append(args, "-v", "--progress")
	}
	ssh := r.SSH
	if ssh == "" {
		ssh = "ssh"
	}
	args = append(args, "-e", ssh)
	args = append(args, r.ExtraArgs...)
	args = append(args, dirSlash(source), dirSlash(dest))
	return args
}

// dirSlash ensures a path addresses directory contents.
func dirSlash(p string) string {
	if p == "" || strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}
