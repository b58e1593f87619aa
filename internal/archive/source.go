// Package archive acquires restore archives from local paths or
// S3-compatible object storage and stages them as local files.
package archive

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"siteport.dev/siteport-cli/internal/config"
)

const s3Scheme = "s3://"

// Source provides a restore archive as a file on the local filesystem.
type Source interface {
	// Fetch stages the archive under dir if it is not already local and
	// returns the path to the archive file.
	Fetch(ctx context.Context, dir string) (string, error)
	// String identifies the source for messages and reports.
	String() string
}

// IsRemote reports whether the raw source needs to be fetched before use.
func IsRemote(raw string) bool {
	return strings.HasPrefix(raw, s3Scheme)
}

// Resolver maps a raw source argument to the matching Source.
type Resolver struct {
	// S3 carries credentials and endpoint settings for s3:// sources.
	S3     *config.S3
	Logger *zap.Logger
}

// Resolve picks the source implementation for raw.
func (r *Resolver) Resolve(raw string) (Source, error) {
	if IsRemote(raw) {
		if r.S3 == nil {
			return nil, fmt.Errorf("archive source %s requires the archive.s3 configuration", raw)
		}
		bucket, key, err := ParseS3URL(raw)
		if err != nil {
			return nil, err
		}
		return NewS3Source(r.S3, bucket, key)
	}
	return &FileSource{Path: raw}, nil
}

// ParseS3URL splits an s3://bucket/key URL. A key ending in "/" is
// treated as a prefix by the S3 source.
func ParseS3URL(raw string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(raw, s3Scheme)
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid S3 URL %q: missing bucket", raw)
	}
	if key == "" {
		return "", "", fmt.Errorf("invalid S3 URL %q: missing object key", raw)
	}
	return bucket, key, nil
}

// FileSource is an archive that already exists on the local filesystem.
type FileSource struct {
	Path string
}

var _ Source = (*FileSource)(nil)

// Fetch verifies the file exists and returns its path unchanged.
func (s *FileSource) Fetch(ctx context.Context, dir string) (string, error) {
	if _, err := os.Stat(s.Path); err != nil {
		return "", fmt.Errorf("failed to read local archive at %s: %w", s.Path, err)
	}
	return s.Path, nil
}

func (s *FileSource) String() string {
	return s.Path
}
