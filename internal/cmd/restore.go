package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"siteport.dev/siteport-cli/internal/archive"
	"siteport.dev/siteport-cli/internal/config"
	"siteport.dev/siteport-cli/internal/crypto"
	"siteport.dev/siteport-cli/internal/dbimport"
	"siteport.dev/siteport-cli/internal/environment"
	"siteport.dev/siteport-cli/internal/project"
	"siteport.dev/siteport-cli/internal/prompt"
	"siteport.dev/siteport-cli/internal/report"
	"siteport.dev/siteport-cli/internal/restore"
	"siteport.dev/siteport-cli/internal/transfer"
)

var (
	restoreEnv       string
	restoreCode      bool
	restoreFiles     bool
	restoreDB        bool
	restoreCodePath  string
	restoreFilesPath string
	restoreDBPath    string
	restoreOverwrite bool
	restoreYes       bool
	verbose          bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore [archive]",
	Short: "Restore a site from an archive",
	Long: `Restores a site archive onto the target environment.

The archive argument is a .tar.gz file, an already extracted directory, or
an s3:// URL. Inside, siteport expects the standard layout: code/ with the
application, files/ with the public files and database/database.sql with
the dump. Individual components can be selected with --code, --files and
--db, or supplied directly with --code-path, --files-path and --db-path.
With no selection, everything found in the archive is restored.

Each component asks for confirmation before it replaces anything; the
whole restore stops at the first failure or declined prompt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		// 1. Load configuration
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logger, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		defer logger.Sync()

		// 2. Resolve the target environment
		env, err := environment.NewRegistry(cfg.Environments).Resolve(restoreEnv)
		if err != nil {
			return err
		}

		req := &restore.Request{
			Environment:  env.Name,
			Code:         restoreCode,
			Files:        restoreFiles,
			Database:     restoreDB,
			CodePath:     restoreCodePath,
			FilesPath:    restoreFilesPath,
			DatabasePath: restoreDBPath,
			Overwrite:    restoreOverwrite,
		}
		if len(args) == 1 {
			req.Source = args[0]
		}

		// 3. Check the external tools this run will shell out to
		if err := preflight(cfg, env, req); err != nil {
			return err
		}

		// 4. Assemble the collaborators
		localRoot := func() (string, error) {
			if cfg.Project.Root != "" {
				return cfg.Project.Root, nil
			}
			return project.FindRootFromWD()
		}

		var confirmer prompt.Confirmer = prompt.NewTerminal()
		if restoreYes {
			confirmer = prompt.AutoApprove{}
		}

		resolver := environment.NewResolver(&environment.ExecQuerier{
			Command:   cfg.App.StatusCommand,
			SSH:       cfg.Sync.SSHCommand,
			LocalRoot: localRoot,
			Logger:    logger,
		})

		syncer := &transfer.Rsync{
			Path:      cfg.Sync.RsyncPath,
			SSH:       cfg.Sync.SSHCommand,
			ExtraArgs: cfg.Sync.ExtraArgs,
			Verbose:   verbose,
			Logger:    logger,
		}

		var decryptor *crypto.AgeDecryptor
		if cfg.Archive.Encryption != nil {
			decryptor, err = crypto.NewAgeDecryptor(cfg.Archive.Encryption.PrivateKeyPath)
			if err != nil {
				return fmt.Errorf("failed to create decryptor: %w", err)
			}
		}

		eng := &restore.Engine{
			Env:        env,
			BackupRoot: cfg.Backup.Root,
			Archives:   &archive.Resolver{S3: cfg.Archive.S3, Logger: logger},
			Decryptor:  decryptor,
			Extractor:  &restore.Extractor{Logger: logger},
			Importers: []restore.Importer{
				&restore.CodeImporter{
					Syncer:    syncer,
					Confirm:   confirmer,
					Status:    resolver,
					LocalRoot: localRoot,
					Logger:    logger,
				},
				&restore.FilesImporter{
					Syncer:  syncer,
					Confirm: confirmer,
					Status:  resolver,
					Logger:  logger,
				},
				&restore.DatabaseImporter{
					DB:      dbimport.New(cfg.Database, cfg.Sync.SSHCommand, logger),
					Confirm: confirmer,
					Logger:  logger,
				},
			},
			Logger: logger,
		}

		// 5. Run the restore
		fmt.Printf("Restoring to environment %q...\n", env.Name)
		summary, runErr := eng.Run(ctx, req)

		// 6. Write the report, also for failed runs that got far enough
		// to attempt an import
		if runErr == nil || len(summary.Results) > 0 {
			if path, err := writeReport(cfg, summary); err != nil {
				logger.Warn("could not write restore report", zap.Error(err))
			} else {
				fmt.Printf("✓ Report saved to %s\n", path)
			}
		}

		if runErr != nil {
			return runErr
		}

		fmt.Printf("\nRestore completed. Report ID: %s\n", summary.ID)
		return nil
	},
}

// preflight verifies the external binaries the run is going to invoke
// exist before anything is extracted or asked of the user.
func preflight(cfg *config.Config, env environment.Descriptor, req *restore.Request) error {
	needsSync := false
	for _, c := range req.Selected() {
		if c == restore.ComponentCode || c == restore.ComponentFiles {
			needsSync = true
		}
	}

	var missing []string
	if needsSync {
		if _, err := exec.LookPath(cfg.Sync.RsyncPath); err != nil {
			missing = append(missing, cfg.Sync.RsyncPath)
		}
	}
	if env.IsRemote() {
		if _, err := exec.LookPath(cfg.Sync.SSHCommand); err != nil {
			missing = append(missing, cfg.Sync.SSHCommand)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("required tools not found in PATH: %s", strings.Join(missing, ", "))
	}
	return nil
}

func writeReport(cfg *config.Config, summary *restore.Summary) (string, error) {
	entries := make([]report.ComponentEntry, 0, len(summary.Results))
	for _, r := range summary.Results {
		entry := report.ComponentEntry{
			Name:     string(r.Component),
			Source:   r.Source,
			Status:   report.StatusImported,
			Duration: r.Duration.Round(time.Millisecond).String(),
		}
		if r.Err != nil {
			entry.Status = report.StatusFailed
			entry.Error = r.Err.Error()
		}
		entries = append(entries, entry)
	}

	rpt := report.NewBuilder().
		WithID(summary.ID).
		WithProject(cfg.Project.Name).
		WithEnvironment(summary.Environment).
		WithSource(summary.Source).
		WithComponents(entries).
		WithDuration(time.Since(summary.Started).Round(time.Millisecond)).
		Build()

	return report.WriteJSON(rpt, cfg.Backup.ReportDir)
}

func init() {
	rootCmd.AddCommand(restoreCmd)

	restoreCmd.Flags().StringVarP(&restoreEnv, "env", "e", "", "Target environment (default: local)")
	restoreCmd.Flags().BoolVar(&restoreCode, "code", false, "Restore the application code")
	restoreCmd.Flags().BoolVar(&restoreFiles, "files", false, "Restore the public files")
	restoreCmd.Flags().BoolVar(&restoreDB, "db", false, "Restore the database")
	restoreCmd.Flags().StringVar(&restoreCodePath, "code-path", "", "Restore code from this directory instead of the archive")
	restoreCmd.Flags().StringVar(&restoreFilesPath, "files-path", "", "Restore files from this directory instead of the archive")
	restoreCmd.Flags().StringVar(&restoreDBPath, "db-path", "", "Restore the database from this SQL dump instead of the archive")
	restoreCmd.Flags().BoolVar(&restoreOverwrite, "overwrite", false, "Replace an existing extraction directory")
	restoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "Answer yes to all confirmation prompts")
	restoreCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}
