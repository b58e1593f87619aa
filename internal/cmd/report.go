package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"siteport.dev/siteport-cli/internal/config"
	"siteport.dev/siteport-cli/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Manage restore reports",
	Long:  `List and view the reports written after each restore run.`,
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all restore reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		reports, err := report.ListReports(cfg.Backup.ReportDir)
		if err != nil {
			return fmt.Errorf("failed to list reports: %w", err)
		}

		if len(reports) == 0 {
			fmt.Println("No reports found.")
			return nil
		}

		fmt.Printf("%-36s  %-20s  %-20s  %-12s  %s\n", "ID", "Timestamp", "Project", "Environment", "Status")
		fmt.Println(strings.Repeat("-", 104))

		for _, r := range reports {
			status := "✓ Success"
			if !r.Success {
				status = "✗ Failed"
			}
			fmt.Printf("%-36s  %-20s  %-20s  %-12s  %s\n",
				r.ID,
				r.Timestamp.Format("2006-01-02 15:04:05"),
				r.Project,
				r.Environment,
				status,
			)
		}

		return nil
	},
}

var reportShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Display a restore report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reportID := args[0]

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		rpt, path, err := findReport(cfg.Backup.ReportDir, reportID)
		if err != nil {
			return err
		}

		showJSON, _ := cmd.Flags().GetBool("json")
		if showJSON {
			data, err := json.MarshalIndent(rpt, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Report: %s\n", rpt.ID)
		fmt.Printf("Path: %s\n", path)
		fmt.Printf("Timestamp: %s\n", rpt.Timestamp.Format("2006-01-02 15:04:05 UTC"))
		fmt.Printf("Project: %s\n", rpt.Project)
		fmt.Printf("Environment: %s\n", rpt.Environment)
		if rpt.Source != "" {
			fmt.Printf("Source: %s\n", rpt.Source)
		}
		fmt.Println()

		fmt.Println("Summary:")
		if rpt.Summary.Success {
			fmt.Println("  Status: ✓ Success")
		} else {
			fmt.Println("  Status: ✗ Failed")
		}
		fmt.Printf("  Components: %d imported, %d failed\n", rpt.Summary.Imported, rpt.Summary.Failed)
		if rpt.Summary.Duration != "" {
			fmt.Printf("  Duration: %s\n", rpt.Summary.Duration)
		}
		fmt.Println()

		fmt.Println("Components:")
		for _, c := range rpt.Components {
			status := "✓"
			if c.Status != report.StatusImported {
				status = "✗"
			}
			line := fmt.Sprintf("  %s %s from %s", status, c.Name, c.Source)
			if c.Duration != "" {
				line += fmt.Sprintf(" (%s)", c.Duration)
			}
			if c.Error != "" {
				line += ": " + c.Error
			}
			fmt.Println(line)
		}

		return nil
	},
}

func findReport(dir string, id string) (*report.Report, string, error) {
	reports, err := report.ListReports(dir)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list reports: %w", err)
	}

	// Try exact match first
	for _, r := range reports {
		if r.ID == id {
			rpt, err := report.LoadReport(r.Path)
			return rpt, r.Path, err
		}
	}

	// Try prefix match
	var matches []*report.ReportSummary
	for _, r := range reports {
		if strings.HasPrefix(r.ID, id) {
			matches = append(matches, r)
		}
	}

	if len(matches) == 0 {
		// Try filename match
		pattern := filepath.Join(dir, "*"+id+"*.json")
		files, _ := filepath.Glob(pattern)
		if len(files) == 1 {
			rpt, err := report.LoadReport(files[0])
			return rpt, files[0], err
		}
		return nil, "", fmt.Errorf("report not found: %s", id)
	}

	if len(matches) > 1 {
		return nil, "", fmt.Errorf("ambiguous report ID %q matches %d reports", id, len(matches))
	}

	rpt, err := report.LoadReport(matches[0].Path)
	return rpt, matches[0].Path, err
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportShowCmd)

	reportShowCmd.Flags().Bool("json", false, "Output report as JSON")
}
