package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/localops/copilot/iox"
	"github.com/localops/copilot/types"
)

// S3Config configures the optional artifact mirror. The worker builds a
// mirror only when a bucket is configured; without one, the orchestrator's
// Mirror is nil and nothing is mirrored.
type S3Config struct {
	Bucket       string
	Prefix       string
	Region       string
	Endpoint     string
	UsePathStyle bool
}

// Validate checks that required S3 configuration is present.
func (c *S3Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

// S3Mirror copies finalization artifacts to an S3-compatible bucket after
// they are recorded locally. It is best-effort: mirror failures are
// returned to the caller to log, never to block run finalization.
type S3Mirror struct {
	client *s3.Client
	cfg    S3Config
}

// NewS3Mirror loads AWS config via the default credential chain (env vars,
// shared config, IAM role) and constructs a mirror for cfg.
func NewS3Mirror(ctx context.Context, cfg S3Config) (*S3Mirror, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = &endpoint })
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}

	return &S3Mirror{client: s3.NewFromConfig(awsConfig, s3Opts...), cfg: cfg}, nil
}

// Put uploads the artifact's file content to <prefix>/<run_id>/<kind>.
func (m *S3Mirror) Put(ctx context.Context, artifact *types.Artifact) error {
	f, err := os.Open(artifact.Path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", artifact.Path, err)
	}
	defer iox.DiscardClose(f)

	key := fmt.Sprintf("%s/%d/%s", m.cfg.Prefix, artifact.RunID, artifact.Kind)
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &m.cfg.Bucket,
		Key:    &key,
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("putting %s: %w", key, err)
	}
	return nil
}
