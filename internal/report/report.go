package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ReportVersion is the current report format version.
const ReportVersion = "1"

// Report records what a restore run did: which components were imported,
// from where, into which environment, and how it ended.
type Report struct {
	Version     string           `json:"version"`
	ID          string           `json:"id"`
	Timestamp   time.Time        `json:"timestamp"`
	Project     string           `json:"project"`
	Environment string           `json:"environment"`
	Source      string           `json:"source,omitempty"`
	Components  []ComponentEntry `json:"components"`
	Summary     Summary          `json:"summary"`
}

// ComponentEntry is the outcome of one component import.
type ComponentEntry struct {
	Name     string `json:"name"`
	Source   string `json:"source"`
	Status   string `json:"status"`
	Duration string `json:"duration,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Summary provides an overview of the restore result.
type Summary struct {
	Success  bool   `json:"success"`
	Imported int    `json:"imported"`
	Failed   int    `json:"failed"`
	Duration string `json:"duration,omitempty"`
}

// Builder assembles reports.
type Builder struct {
	report *Report
}

// NewBuilder creates a report builder stamped with the current time.
func NewBuilder() *Builder {
	return &Builder{
		report: &Report{
			Version:   ReportVersion,
			Timestamp: time.Now().UTC(),
		},
	}
}

func (b *Builder) WithID(id string) *Builder {
	b.report.ID = id
	return b
}

func (b *Builder) WithProject(name string) *Builder {
	b.report.Project = name
	return b
}

func (b *Builder) WithEnvironment(env string) *Builder {
	b.report.Environment = env
	return b
}

func (b *Builder) WithSource(source string) *Builder {
	b.report.Source = source
	return b
}

func (b *Builder) WithComponents(components []ComponentEntry) *Builder {
	b.report.Components = components
	return b
}

func (b *Builder) WithDuration(d time.Duration) *Builder {
	b.report.Summary.Duration = d.String()
	return b
}

// Build finalizes the report and computes the summary.
func (b *Builder) Build() *Report {
	b.computeSummary()
	return b.report
}

func (b *Builder) computeSummary() {
	var imported, failed int
	for _, c := range b.report.Components {
		switch c.Status {
		case StatusImported:
			imported++
		case StatusFailed:
			failed++
		}
	}
	b.report.Summary.Success = failed == 0
	b.report.Summary.Imported = imported
	b.report.Summary.Failed = failed
}

// Component statuses recorded in reports.
const (
	StatusImported = "imported"
	StatusFailed   = "failed"
)

// WriteJSON writes the report to a JSON file in dir.
func WriteJSON(report *Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.json", report.Timestamp.Format("20060102_150405"), report.ID)
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}

// LoadReport loads a report from a JSON file.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListReports returns all reports in the given directory, newest first.
func ListReports(dir string) ([]*ReportSummary, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}

	var reports []*ReportSummary
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		report, err := LoadReport(path)
		if err != nil {
			continue // Skip invalid reports
		}

		reports = append(reports, &ReportSummary{
			ID:          report.ID,
			Timestamp:   report.Timestamp,
			Project:     report.Project,
			Environment: report.Environment,
			Success:     report.Summary.Success,
			Path:        path,
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Timestamp.After(reports[j].Timestamp)
	})

	return reports, nil
}

// ReportSummary is a lightweight summary for listing reports.
type ReportSummary struct {
	ID          string
	Timestamp   time.Time
	Project     string
	Environment string
	Success     bool
	Path        string
}
