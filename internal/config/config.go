package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project-local configuration file siteport looks for.
const FileName = "siteport.yml"

// EnvConfigPath overrides configuration discovery when set.
const EnvConfigPath = "SITEPORT_CONFIG"

// Config matches the structure of the siteport.yml file.
type Config struct {
	Version      int                    `yaml:"version"`
	Project      Project                `yaml:"project"`
	Backup       Backup                 `yaml:"backup"`
	App          App                    `yaml:"app"`
	Archive      Archive                `yaml:"archive"`
	Database     Database               `yaml:"database"`
	Sync         Sync                   `yaml:"sync"`
	Environments map[string]Environment `yaml:"environments,omitempty"`
}

type Project struct {
	Name string `yaml:"name"`
	// Root pins the local application root. When empty it is discovered
	// by walking up from the working directory to the composer.json marker.
	Root string `yaml:"root,omitempty"`
}

type Backup struct {
	Root      string `yaml:"root"`
	ReportDir string `yaml:"report_dir"`
}

type App struct {
	// StatusCommand is executed inside the application root and must print
	// a JSON document with the app_root, files_root and files_path fields.
	StatusCommand string `yaml:"status_command"`
}

type Archive struct {
	S3         *S3         `yaml:"s3,omitempty"`
	Encryption *Encryption `yaml:"encryption,omitempty"`
}

type S3 struct {
	Endpoint     string `yaml:"endpoint"`
	Region       string `yaml:"region"`
	AccessKeyEnv string `yaml:"access_key_env"`
	SecretKeyEnv string `yaml:"secret_key_env"`
}

type Encryption struct {
	Method         string `yaml:"method"`
	PrivateKeyPath string `yaml:"private_key_path"`
}

type Database struct {
	Driver string `yaml:"driver"`
	DSNEnv string `yaml:"dsn_env"`
	// ImportCommand consumes a SQL dump on stdin when restoring into a
	// remote environment, e.g. "mysql acme_shop".
	ImportCommand string `yaml:"import_command,omitempty"`
}

type Sync struct {
	RsyncPath  string   `yaml:"rsync_path"`
	SSHCommand string   `yaml:"ssh_command"`
	ExtraArgs  []string `yaml:"extra_args,omitempty"`
}

type Environment struct {
	Host string `yaml:"host"`
	User string `yaml:"user"`
	Path string `yaml:"path"`
}

// Load finds, reads, and parses the configuration file. Discovery starts
// at the working directory and walks towards the filesystem root, so the
// CLI can be invoked from anywhere inside a project.
func Load() (*Config, error) {
	path, err := findConfig()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads and parses the configuration file at an explicit path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findConfig() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file from %s not found at %s", EnvConfigPath, path)
		}
		return path, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("could not determine working directory: %w", err)
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found in this or any parent directory. Please run 'siteport init'", FileName)
		}
		dir = parent
	}
}

func applyDefaults(cfg *Config) error {
	if cfg.Backup.Root == "" {
		cfg.Backup.Root = filepath.Join(os.TempDir(), "siteport")
	}
	if cfg.Backup.ReportDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home directory: %w", err)
		}
		cfg.Backup.ReportDir = filepath.Join(homeDir, ".siteport", "reports")
	}
	if cfg.Sync.RsyncPath == "" {
		cfg.Sync.RsyncPath = "rsync"
	}
	if cfg.Sync.SSHCommand == "" {
		cfg.Sync.SSHCommand = "ssh"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "mysql"
	}
	if cfg.Database.DSNEnv == "" {
		cfg.Database.DSNEnv = "SITEPORT_DATABASE_DSN"
	}
	return nil
}
