package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"siteport.dev/siteport-cli/internal/config"
)

// S3Source fetches an archive object from S3-compatible storage. When the
// key ends in "/" it is treated as a prefix and the most recently
// modified object underneath it is fetched.
type S3Source struct {
	client *s3.Client
	bucket string
	key    string
}

var _ Source = (*S3Source)(nil)

// NewS3Source builds a source for one bucket and key using static
// credentials taken from the configured environment variables.
func NewS3Source(cfg *config.S3, bucket, key string) (*S3Source, error) {
	accessKey := os.Getenv(cfg.AccessKeyEnv)
	if accessKey == "" {
		return nil, fmt.Errorf("S3 access key environment variable %s is not set", cfg.AccessKeyEnv)
	}

	secretKey := os.Getenv(cfg.SecretKeyEnv)
	if secretKey == "" {
		return nil, fmt.Errorf("S3 secret key environment variable %s is not set", cfg.SecretKeyEnv)
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")
		},
	}

	// Custom endpoint for S3-compatible services (MinIO, etc.)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for most S3-compatible services
		})
	}

	return &S3Source{
		client: s3.New(s3.Options{}, opts...),
		bucket: bucket,
		key:    key,
	}, nil
}

// Fetch downloads the object into dir and returns the local file path.
func (s *S3Source) Fetch(ctx context.Context, dir string) (string, error) {
	key := s.key
	if strings.HasSuffix(key, "/") {
		var err error
		key, err = s.findLatestObject(ctx)
		if err != nil {
			return "", err
		}
		s.key = key
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get object s3://%s/%s: %w", s.bucket, key, err)
	}
	defer result.Body.Close()

	local := filepath.Join(dir, path.Base(key))
	out, err := os.Create(local)
	if err != nil {
		return "", fmt.Errorf("failed to create staging file %s: %w", local, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, result.Body); err != nil {
		return "", fmt.Errorf("failed to download s3://%s/%s: %w", s.bucket, key, err)
	}
	return local, nil
}

// findLatestObject lists objects under the prefix and returns the key of
// the most recently modified one.
func (s *S3Source) findLatestObject(ctx context.Context) (string, error) {
	result, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to list objects in s3://%s/%s: %w", s.bucket, s.key, err)
	}

	if len(result.Contents) == 0 {
		return "", fmt.Errorf("no objects found in s3://%s/%s", s.bucket, s.key)
	}

	sort.Slice(result.Contents, func(i, j int) bool {
		return result.Contents[i].LastModified.After(*result.Contents[j].LastModified)
	})

	return *result.Contents[0].Key, nil
}

func (s *S3Source) String() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
}
