package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"siteport.dev/siteport-cli/internal/config"
	"siteport.dev/siteport-cli/internal/environment"
	"siteport.dev/siteport-cli/internal/project"
)

var environmentsCmd = &cobra.Command{
	Use:     "environments",
	Aliases: []string{"envs"},
	Short:   "Inspect restore target environments",
}

var environmentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured environments",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		registry := environment.NewRegistry(cfg.Environments)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "NAME\tTARGET\tPATH\n")
		fmt.Fprintf(w, "%s\t%s\t%s\n", environment.LocalName, "(this machine)", "-")
		for _, name := range registry.Names() {
			env, err := registry.Resolve(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", env.Name, env.Target(), env.Path)
		}
		return w.Flush()
	},
}

var environmentsStatusCmd = &cobra.Command{
	Use:   "status [name]",
	Short: "Query the layout an environment reports",
	Long: `Runs the configured status command against an environment and prints
the layout it reports. Useful to check connectivity and the status
command itself before running a restore.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		env, err := environment.NewRegistry(cfg.Environments).Resolve(name)
		if err != nil {
			return err
		}

		querier := &environment.ExecQuerier{
			Command: cfg.App.StatusCommand,
			SSH:     cfg.Sync.SSHCommand,
			LocalRoot: func() (string, error) {
				if cfg.Project.Root != "" {
					return cfg.Project.Root, nil
				}
				return project.FindRootFromWD()
			},
		}

		status, err := querier.Query(context.Background(), env)
		if err != nil {
			return err
		}

		fmt.Printf("Environment: %s\n", env.Name)
		if env.IsRemote() {
			fmt.Printf("Target: %s\n", env.Target())
		}
		fmt.Printf("app_root: %s\n", status.AppRoot)
		fmt.Printf("files_root: %s\n", status.FilesRoot)
		fmt.Printf("files_path: %s\n", status.FilesPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(environmentsCmd)
	environmentsCmd.AddCommand(environmentsListCmd)
	environmentsCmd.AddCommand(environmentsStatusCmd)
}
