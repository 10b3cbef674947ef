package notification

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// TemplateLoader resolves a named email template to its HTML source.
type TemplateLoader interface {
	Load(ctx context.Context, name string) (string, error)
}

// fileTemplateLoader reads templates from a local directory.
type fileTemplateLoader struct {
	dir    string
	logger zerolog.Logger
}

// NewFileTemplateLoader creates a loader backed by the local file system.
func NewFileTemplateLoader(dir string, logger zerolog.Logger) TemplateLoader {
	return &fileTemplateLoader{
		dir:    dir,
		logger: logger.With().Str("component", "template-loader").Logger(),
	}
}

// Load reads a template file from the configured directory.
func (l *fileTemplateLoader) Load(ctx context.Context, name string) (string, error) {
	path := filepath.Join(l.dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Error().Err(err).Str("template", path).Msg("failed to read template file")
		return "", fmt.Errorf("failed to read template file %s: %w", path, err)
	}

	l.logger.Debug().Str("template", path).Int("bytes", len(data)).Msg("template loaded")
	return string(data), nil
}

// s3TemplateLoader reads templates from an S3 bucket.
type s3TemplateLoader struct {
	client *s3.Client
	bucket string
	logger zerolog.Logger
}

// NewS3TemplateLoader creates a loader backed by AWS S3.
func NewS3TemplateLoader(ctx context.Context, bucket, region string, logger zerolog.Logger) (TemplateLoader, error) {
	logger = logger.With().Str("component", "s3-template-loader").Logger()

	// Load AWS configuration
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 template loader initialised")

	return &s3TemplateLoader{
		client: client,
		bucket: bucket,
		logger: logger,
	}, nil
}

// Load reads a template object from S3. The name should be the full key
// including any prefix.
func (l *s3TemplateLoader) Load(ctx context.Context, name string) (string, error) {
	result, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		l.logger.Error().
			Err(err).
			Str("bucket", l.bucket).
			Str("key", name).
			Msg("failed to get template from S3")
		return "", fmt.Errorf("failed to get template from S3 (bucket=%s, key=%s): %w", l.bucket, name, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		l.logger.Error().
			Err(err).
			Str("bucket", l.bucket).
			Str("key", name).
			Msg("failed to read template body")
		return "", fmt.Errorf("failed to read template body for %s: %w", name, err)
	}

	l.logger.Debug().
		Str("bucket", l.bucket).
		Str("key", name).
		Int("bytes", len(data)).
		Msg("template loaded from S3")

	return string(data), nil
}

// fallbackTemplateLoader tries S3 first, then falls back to the local file
// system.
type fallbackTemplateLoader struct {
	s3Loader   TemplateLoader
	fileLoader TemplateLoader
	s3Prefix   string
	s3Enabled  bool
	logger     zerolog.Logger
}

// NewFallbackTemplateLoader creates a loader that tries S3 first, then falls
// back to the local file system. If s3Loader is nil, only the file loader
// is used.
func NewFallbackTemplateLoader(s3Loader, fileLoader TemplateLoader, s3Prefix string, s3Enabled bool, logger zerolog.Logger) TemplateLoader {
	return &fallbackTemplateLoader{
		s3Loader:   s3Loader,
		fileLoader: fileLoader,
		s3Prefix:   s3Prefix,
		s3Enabled:  s3Enabled,
		logger:     logger.With().Str("component", "fallback-template-loader").Logger(),
	}
}

// Load attempts S3 first (prefix + name), then the local file system.
func (l *fallbackTemplateLoader) Load(ctx context.Context, name string) (string, error) {
	if l.s3Enabled && l.s3Loader != nil {
		s3Key := l.s3Prefix + name

		tmpl, err := l.s3Loader.Load(ctx, s3Key)
		if err == nil {
			return tmpl, nil
		}

		l.logger.Warn().
			Err(err).
			Str("s3_key", s3Key).
			Msg("failed to load template from S3, falling back to local file system")
	}

	return l.fileLoader.Load(ctx, name)
}
