// Package dbimport loads SQL dumps into the database behind an
// environment, either through a direct driver connection or over ssh.
package dbimport

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
	"siteport.dev/siteport-cli/internal/config"
	"siteport.dev/siteport-cli/internal/environment"

	// Database drivers registered for local imports.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

const defaultImportTimeout = 30 * time.Minute

// Importer loads a SQL dump into the target environment's database.
type Importer interface {
	Import(ctx context.Context, dumpPath string, env environment.Descriptor) error
}

// DumpImporter imports plain SQL dumps. Local environments connect with
// the configured driver and DSN; remote environments pipe the dump over
// ssh into the configured import command.
type DumpImporter struct {
	Driver string
	// DSNEnv names the environment variable holding the local DSN, so
	// credentials never live in the config file.
	DSNEnv string
	// ImportCommand runs on the remote host with the dump on stdin.
	ImportCommand string
	// SSH is the remote shell binary.
	SSH     string
	Timeout time.Duration
	Logger  *zap.Logger
}

var _ Importer = (*DumpImporter)(nil)

// New builds an importer from the database and sync configuration.
func New(cfg config.Database, ssh string, logger *zap.Logger) *DumpImporter {
	return &DumpImporter{
		Driver:        cfg.Driver,
		DSNEnv:        cfg.DSNEnv,
		ImportCommand: cfg.ImportCommand,
		SSH:           ssh,
		Logger:        logger,
	}
}

// Import dispatches on the environment kind.
func (i *DumpImporter) Import(ctx context.Context, dumpPath string, env environment.Descriptor) error {
	timeout := i.Timeout
	if timeout == 0 {
		timeout = defaultImportTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if env.IsRemote() {
		return i.importRemote(ctx, dumpPath, env)
	}
	return i.importLocal(ctx, dumpPath)
}

func (i *DumpImporter) importLocal(ctx context.Context, dumpPath string) error {
	dsn := os.Getenv(i.DSNEnv)
	if dsn == "" {
		return fmt.Errorf("database DSN environment variable %s is not set", i.DSNEnv)
	}

	switch i.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database driver: %s", i.Driver)
	}

	db, err := sql.Open(i.Driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", i.Driver, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach %s database: %w", i.Driver, err)
	}

	dump, err := os.ReadFile(dumpPath)
	if err != nil {
		return fmt.Errorf("failed to read dump %s: %w", dumpPath, err)
	}

	if i.Logger != nil {
		i.Logger.Debug("importing dump locally",
			zap.String("driver", i.Driver),
			zap.Int("bytes", len(dump)))
	}

	// MySQL needs multiStatements=true in the DSN for multi-statement
	// dumps; Postgres accepts them through the simple query protocol.
	if _, err := db.ExecContext(ctx, string(dump)); err != nil {
		return fmt.Errorf("failed to import dump %s: %w", dumpPath, err)
	}
	return nil
}

func (i *DumpImporter) importRemote(ctx context.Context, dumpPath string, env environment.Descriptor) error {
	if i.ImportCommand == "" {
		return fmt.Errorf("database.import_command must be configured to restore into environment %q", env.Name)
	}

	dump, err := os.Open(dumpPath)
	if err != nil {
		return fmt.Errorf("failed to open dump %s: %w", dumpPath, err)
	}
	defer dump.Close()

	ssh := i.SSH
	if ssh == "" {
		ssh = "ssh"
	}
	cmd := exec.CommandContext(ctx, ssh, env.Target(), i.remoteCommand(env))
	cmd.Stdin = dump

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if i.Logger != nil {
		i.Logger.Debug("importing dump remotely",
			zap.String("environment", env.Name),
			zap.Strings("args", cmd.Args))
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("database import timed out on %s", env.Name)
		}
		return fmt.Errorf("database import failed on %s: %w\nstderr: %s", env.Name, err, stderr.String())
	}
	return nil
}

// remoteCommand builds the shell line executed on the remote host.
func (i *DumpImporter) remoteCommand(env environment.Descriptor) string {
	if env.Path == "" {
		return i.ImportCommand
	}
	return fmt.Sprintf("cd %s && %s", env.Path, i.ImportCommand)
}
