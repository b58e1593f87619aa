package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"siteport.dev/siteport-cli/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap a siteport config for this project",
	Long: `Initializes siteport in the current directory.

This command writes a 'siteport.yml' with sensible defaults and prompts
for basic project information to get you started. Database credentials
are never stored in the file; they are read from environment variables
at restore time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Setting up siteport for this project...")

		// Check for existing config
		configPath := config.FileName
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("a config file already exists at %s", configPath)
		}

		reader := bufio.NewReader(os.Stdin)

		// Interactive prompts
		projectName, err := promptString(reader, "Project name")
		if err != nil {
			return err
		}
		statusCommand, err := promptWithDefault(reader, "App status command", "./bin/status --json")
		if err != nil {
			return err
		}
		driver, err := promptWithDefault(reader, "Database driver (mysql/postgres)", "mysql")
		if err != nil {
			return err
		}
		if driver != "mysql" && driver != "postgres" {
			return fmt.Errorf("unsupported database driver: %s", driver)
		}

		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home directory: %w", err)
		}
		reportDir := filepath.Join(homeDir, ".siteport", "reports")

		cfg := config.Config{
			Version: 1,
			Project: config.Project{
				Name: projectName,
			},
			Backup: config.Backup{
				Root:      filepath.Join(os.TempDir(), "siteport"),
				ReportDir: reportDir,
			},
			App: config.App{
				StatusCommand: statusCommand,
			},
			Database: config.Database{
				Driver: driver,
				DSNEnv: "SITEPORT_DATABASE_DSN",
			},
			Sync: config.Sync{
				RsyncPath:  "rsync",
				SSHCommand: "ssh",
			},
		}

		// Optional remote environment
		addRemote, err := promptWithDefault(reader, "Add a remote environment? (yes/no)", "no")
		if err != nil {
			return err
		}
		if strings.ToLower(addRemote) == "yes" {
			envName, err := promptWithDefault(reader, "Environment name", "production")
			if err != nil {
				return err
			}
			host, err := promptString(reader, "SSH host")
			if err != nil {
				return err
			}
			user, err := promptString(reader, "SSH user")
			if err != nil {
				return err
			}
			path, err := promptString(reader, "Application path on the host")
			if err != nil {
				return err
			}
			cfg.Environments = map[string]config.Environment{
				envName: {Host: host, User: user, Path: path},
			}
		}

		// Marshal and write config
		yamlData, err := yaml.Marshal(&cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		if err := os.WriteFile(configPath, yamlData, 0644); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
		fmt.Printf("✓ Wrote config to %s\n", configPath)

		if err := os.MkdirAll(reportDir, 0755); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", reportDir, err)
		}
		fmt.Printf("✓ Created report directory %s\n", reportDir)

		fmt.Println("\nProject initialized. Review siteport.yml and provide the database DSN")
		fmt.Printf("via the %s environment variable for local restores.\n", cfg.Database.DSNEnv)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// promptString asks the user for input without a default value.
func promptString(reader *bufio.Reader, label string) (string, error) {
	fmt.Printf("%s: ", label)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// promptWithDefault asks the user for input, providing a default if input is empty.
func promptWithDefault(reader *bufio.Reader, label, defaultValue string) (string, error) {
	fmt.Printf("%s (%s): ", label, defaultValue)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue, nil
	}
	return input, nil
}
