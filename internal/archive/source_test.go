package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"siteport.dev/siteport-cli/internal/config"
)

func TestIsRemote(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"s3://backups/acme/site.tar.gz", true},
		{"/var/backups/site.tar.gz", false},
		{"./site.tar.gz", false},
		{"site.tar.gz", false},
	}
	for _, tt := range tests {
		if got := IsRemote(tt.raw); got != tt.want {
			t.Errorf("IsRemote(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		raw        string
		bucket     string
		key        string
		wantErr    bool
		errMention string
	}{
		{raw: "s3://backups/acme/site.tar.gz", bucket: "backups", key: "acme/site.tar.gz"},
		{raw: "s3://backups/acme/", bucket: "backups", key: "acme/"},
		{raw: "s3://backups", wantErr: true, errMention: "key"},
		{raw: "s3://", wantErr: true, errMention: "bucket"},
	}

	for _, tt := range tests {
		bucket, key, err := ParseS3URL(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseS3URL(%q) expected error", tt.raw)
			} else if !strings.Contains(err.Error(), tt.errMention) {
				t.Errorf("ParseS3URL(%q) error = %q, should mention %q", tt.raw, err, tt.errMention)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseS3URL(%q) error = %v", tt.raw, err)
			continue
		}
		if bucket != tt.bucket || key != tt.key {
			t.Errorf("ParseS3URL(%q) = %q/%q, want %q/%q", tt.raw, bucket, key, tt.bucket, tt.key)
		}
	}
}

func TestResolveLocalPath(t *testing.T) {
	r := &Resolver{}

	src, err := r.Resolve("/var/backups/site.tar.gz")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	fs, ok := src.(*FileSource)
	if !ok {
		t.Fatalf("Resolve() = %T, want *FileSource", src)
	}
	if fs.Path != "/var/backups/site.tar.gz" {
		t.Errorf("Path = %q, want the raw path", fs.Path)
	}
}

func TestResolveS3WithoutConfig(t *testing.T) {
	r := &Resolver{}

	_, err := r.Resolve("s3://backups/site.tar.gz")
	if err == nil {
		t.Fatal("Resolve() expected error without s3 configuration")
	}
	if !strings.Contains(err.Error(), "archive.s3") {
		t.Errorf("error %q should point at the archive.s3 configuration", err)
	}
}

func TestResolveS3(t *testing.T) {
	t.Setenv("TEST_S3_KEY", "key")
	t.Setenv("TEST_S3_SECRET", "secret")
	r := &Resolver{S3: &config.S3{
		Region:       "eu-central-1",
		AccessKeyEnv: "TEST_S3_KEY",
		SecretKeyEnv: "TEST_S3_SECRET",
	}}

	src, err := r.Resolve("s3://backups/acme/site.tar.gz")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	s3src, ok := src.(*S3Source)
	if !ok {
		t.Fatalf("Resolve() = %T, want *S3Source", src)
	}
	if got := s3src.String(); got != "s3://backups/acme/site.tar.gz" {
		t.Errorf("String() = %q, want the S3 URL", got)
	}
}

func TestResolveS3MissingCredentials(t *testing.T) {
	t.Setenv("TEST_S3_KEY", "")
	t.Setenv("TEST_S3_SECRET", "")
	r := &Resolver{S3: &config.S3{AccessKeyEnv: "TEST_S3_KEY", SecretKeyEnv: "TEST_S3_SECRET"}}

	_, err := r.Resolve("s3://backups/site.tar.gz")
	if err == nil {
		t.Fatal("Resolve() expected error when credentials are unset")
	}
	if !strings.Contains(err.Error(), "TEST_S3_KEY") {
		t.Errorf("error %q should name the missing variable", err)
	}
}

func TestFileSourceFetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.tar.gz")
	if err := os.WriteFile(path, []byte("archive"), 0644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}

	src := &FileSource{Path: path}
	got, err := src.Fetch(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got != path {
		t.Errorf("Fetch() = %q, want %q without copying", got, path)
	}
}

func TestFileSourceFetchMissing(t *testing.T) {
	src := &FileSource{Path: filepath.Join(t.TempDir(), "absent.tar.gz")}
	if _, err := src.Fetch(context.Background(), t.TempDir()); err == nil {
		t.Fatal("Fetch() expected error for a missing file")
	}
}
