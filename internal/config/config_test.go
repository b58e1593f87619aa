package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleConfig = `version: 1
project:
  name: acme-shop
backup:
  root: /var/tmp/siteport
  report_dir: /var/tmp/siteport/reports
app:
  status_command: ./bin/status --json
archive:
  s3:
    endpoint: https://s3.eu-central-1.example
    region: eu-central-1
    access_key_env: SITEPORT_S3_KEY
    secret_key_env: SITEPORT_S3_SECRET
  encryption:
    method: age
    private_key_path: /etc/siteport/archive.key
database:
  driver: postgres
  dsn_env: ACME_DATABASE_DSN
  import_command: psql acme_shop
sync:
  rsync_path: /usr/local/bin/rsync
  ssh_command: ssh
  extra_args: ["--exclude=.git"]
environments:
  production:
    host: prod.example.com
    user: deploy
    path: /var/www/acme
`

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), sampleConfig)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Project.Name != "acme-shop" {
		t.Errorf("Project.Name = %q, want %q", cfg.Project.Name, "acme-shop")
	}
	if cfg.App.StatusCommand != "./bin/status --json" {
		t.Errorf("App.StatusCommand = %q, want %q", cfg.App.StatusCommand, "./bin/status --json")
	}
	if cfg.Archive.S3 == nil || cfg.Archive.S3.Region != "eu-central-1" {
		t.Errorf("Archive.S3 not parsed: %+v", cfg.Archive.S3)
	}
	if cfg.Archive.Encryption == nil || cfg.Archive.Encryption.Method != "age" {
		t.Errorf("Archive.Encryption not parsed: %+v", cfg.Archive.Encryption)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, "postgres")
	}
	if cfg.Database.ImportCommand != "psql acme_shop" {
		t.Errorf("Database.ImportCommand = %q, want %q", cfg.Database.ImportCommand, "psql acme_shop")
	}
	if got := cfg.Sync.ExtraArgs; len(got) != 1 || got[0] != "--exclude=.git" {
		t.Errorf("Sync.ExtraArgs = %v, want [--exclude=.git]", got)
	}

	env, ok := cfg.Environments["production"]
	if !ok {
		t.Fatalf("environments missing %q: %v", "production", cfg.Environments)
	}
	if env.Host != "prod.example.com" || env.User != "deploy" || env.Path != "/var/www/acme" {
		t.Errorf("production environment = %+v", env)
	}
}

func TestLoadFileDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "version: 1\nproject:\n  name: bare\n")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Backup.Root == "" {
		t.Error("Backup.Root default not applied")
	}
	if cfg.Backup.ReportDir == "" {
		t.Error("Backup.ReportDir default not applied")
	}
	if cfg.Sync.RsyncPath != "rsync" {
		t.Errorf("Sync.RsyncPath = %q, want %q", cfg.Sync.RsyncPath, "rsync")
	}
	if cfg.Sync.SSHCommand != "ssh" {
		t.Errorf("Sync.SSHCommand = %q, want %q", cfg.Sync.SSHCommand, "ssh")
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, "mysql")
	}
	if cfg.Database.DSNEnv != "SITEPORT_DATABASE_DSN" {
		t.Errorf("Database.DSNEnv = %q, want %q", cfg.Database.DSNEnv, "SITEPORT_DATABASE_DSN")
	}
}

func TestLoadWalksUpToConfig(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, sampleConfig)

	nested := filepath.Join(root, "src", "modules")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("creating nested dir: %v", err)
	}
	t.Chdir(nested)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Project.Name != "acme-shop" {
		t.Errorf("Project.Name = %q, want %q", cfg.Project.Name, "acme-shop")
	}
}

func TestLoadMissingConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for missing config")
	}
	if !strings.Contains(err.Error(), "siteport init") {
		t.Errorf("error %q should point at 'siteport init'", err)
	}
}

func TestLoadConfigPathOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, sampleConfig)
	t.Setenv(EnvConfigPath, path)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Project.Name != "acme-shop" {
		t.Errorf("Project.Name = %q, want %q", cfg.Project.Name, "acme-shop")
	}
}
