package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func buildReport(id string, ts time.Time, entries []ComponentEntry) *Report {
	b := NewBuilder().
		WithID(id).
		WithProject("acme-shop").
		WithEnvironment("production").
		WithSource("/var/backups/site.tar.gz").
		WithComponents(entries).
		WithDuration(90 * time.Second)
	r := b.Build()
	r.Timestamp = ts
	return r
}

func TestBuilderSummary(t *testing.T) {
	tests := []struct {
		name     string
		entries  []ComponentEntry
		success  bool
		imported int
		failed   int
	}{
		{
			name: "all imported",
			entries: []ComponentEntry{
				{Name: "code", Status: StatusImported},
				{Name: "files", Status: StatusImported},
				{Name: "database", Status: StatusImported},
			},
			success:  true,
			imported: 3,
		},
		{
			name: "one failed",
			entries: []ComponentEntry{
				{Name: "code", Status: StatusImported},
				{Name: "files", Status: StatusFailed, Error: "transfer failed"},
			},
			success:  false,
			imported: 1,
			failed:   1,
		},
		{
			name:    "empty run",
			success: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewBuilder().WithID("r1").WithComponents(tt.entries).Build()
			if r.Summary.Success != tt.success {
				t.Errorf("Success = %v, want %v", r.Summary.Success, tt.success)
			}
			if r.Summary.Imported != tt.imported {
				t.Errorf("Imported = %d, want %d", r.Summary.Imported, tt.imported)
			}
			if r.Summary.Failed != tt.failed {
				t.Errorf("Failed = %d, want %d", r.Summary.Failed, tt.failed)
			}
		})
	}
}

func TestWriteAndLoadReport(t *testing.T) {
	dir := t.TempDir()
	r := buildReport("run-1", time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC), []ComponentEntry{
		{Name: "code", Source: "/tmp/site/code", Status: StatusImported, Duration: "4s"},
	})

	path, err := WriteJSON(r, dir)
	if err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if filepath.Base(path) != "20260314_103000_run-1.json" {
		t.Errorf("report filename = %q", filepath.Base(path))
	}

	loaded, err := LoadReport(path)
	if err != nil {
		t.Fatalf("LoadReport() error = %v", err)
	}
	if loaded.ID != "run-1" || loaded.Project != "acme-shop" || loaded.Environment != "production" {
		t.Errorf("loaded report = %+v", loaded)
	}
	if len(loaded.Components) != 1 || loaded.Components[0].Name != "code" {
		t.Errorf("loaded components = %+v", loaded.Components)
	}
	if !loaded.Summary.Success {
		t.Error("loaded summary lost success flag")
	}
}

func TestWriteJSONCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	r := buildReport("run-2", time.Now().UTC(), nil)

	if _, err := WriteJSON(r, dir); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("report dir not created: %v", err)
	}
}

func TestListReportsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		r := buildReport(id, base.Add(time.Duration(i)*time.Hour), nil)
		if _, err := WriteJSON(r, dir); err != nil {
			t.Fatalf("WriteJSON(%s) error = %v", id, err)
		}
	}

	// A stray non-report file must not break listing.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("writing stray file: %v", err)
	}

	got, err := ListReports(dir)
	if err != nil {
		t.Fatalf("ListReports() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListReports() returned %d reports, want 3", len(got))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if got[i].ID != want {
			t.Errorf("ListReports()[%d].ID = %q, want %q", i, got[i].ID, want)
		}
	}
}

func TestListReportsMissingDir(t *testing.T) {
	got, err := ListReports(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("ListReports() error = %v", err)
	}
	if got != nil {
		t.Errorf("ListReports() = %v, want nil for a missing directory", got)
	}
}
