package environment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

const defaultQueryTimeout = time.Minute

// Status is the layout an environment reports about itself. Fields the
// application did not include simply stay empty; each import decides
// which fields it cannot do without.
type Status struct {
	// AppRoot is the absolute path of the running application.
	AppRoot string `json:"app_root"`
	// FilesRoot is the absolute path of the public files directory.
	FilesRoot string `json:"files_root"`
	// FilesPath is the public files directory relative to AppRoot.
	FilesPath string `json:"files_path"`
}

// Querier asks an environment for its status.
type Querier interface {
	Query(ctx context.Context, env Descriptor) (*Status, error)
}

// ExecQuerier runs the configured status command and parses its JSON
// output. Locally the command runs inside the application root; remotely
// it runs over ssh inside the environment's configured path.
type ExecQuerier struct {
	// Command is the application's status command, e.g. "./bin/status --json".
	Command string
	// SSH is the remote shell binary used for remote environments.
	SSH string
	// LocalRoot resolves the local application root. It is only invoked
	// for local queries, so restores that never touch the local app do
	// not require a local project.
	LocalRoot func() (string, error)
	Timeout   time.Duration
	Logger    *zap.Logger
}

var _ Querier = (*ExecQuerier)(nil)

// Query executes the status command against the environment.
func (q *ExecQuerier) Query(ctx context.Context, env Descriptor) (*Status, error) {
	if q.Command == "" {
		return nil, fmt.Errorf("app.status_command is not configured")
	}

	timeout := q.Timeout
	if timeout == 0 {
		timeout = defaultQueryTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var cmd *exec.Cmd
	if env.IsRemote() {
		cmd = exec.CommandContext(ctx, q.ssh(), env.Target(), q.remoteCommand(env))
	} else {
		root, err := q.LocalRoot()
		if err != nil {
			return nil, fmt.Errorf("could not locate local application root: %w", err)
		}
		cmd = exec.CommandContext(ctx, "sh", "-c", q.Command)
		cmd.Dir = root
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if q.Logger != nil {
		q.Logger.Debug("querying environment status",
			zap.String("environment", env.Name),
			zap.Strings("args", cmd.Args))
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("status command timed out after %v on %s", timeout, env.Name)
		}
		return nil, fmt.Errorf("status command failed on %s: %w\nstderr: %s", env.Name, err, stderr.String())
	}

	var status Status
	if err := json.Unmarshal(stdout.Bytes(), &status); err != nil {
		return nil, fmt.Errorf("could not parse status output from %s: %w", env.Name, err)
	}
	return &status, nil
}

func (q *ExecQuerier) ssh() string {
	if q.SSH == "" {
		return "ssh"
	}
	return q.SSH
}

// remoteCommand builds the shell line executed on the remote host.
func (q *ExecQuerier) remoteCommand(env Descriptor) string {
	if env.Path == "" {
		return q.Command
	}
	return fmt.Sprintf("cd %s && %s", env.Path, q.Command)
}

// Resolver memoizes status queries for the lifetime of one restore run,
// so several component imports against the same environment cost a
// single round trip.
type Resolver struct {
	querier Querier
	cache   map[string]*Status
}

// NewResolver wraps a querier with a per-run cache.
func NewResolver(q Querier) *Resolver {
	return &Resolver{querier: q, cache: make(map[string]*Status)}
}

// Status returns the environment's status, querying it at most once.
func (r *Resolver) Status(ctx context.Context, env Descriptor) (*Status, error) {
	if status, ok := r.cache[env.Name]; ok {
		return status, nil
	}
	status, err := r.querier.Query(ctx, env)
	if err != nil {
		return nil, err
	}
	r.cache[env.Name] = status
	return status, nil
}
