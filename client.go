package s3sync

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	syncerrors "github.com/brownmestizo/grunt-aws-s3/errors"
	"github.com/brownmestizo/grunt-aws-s3/internal/executor"
	"github.com/brownmestizo/grunt-aws-s3/internal/planner"
	"github.com/brownmestizo/grunt-aws-s3/internal/s3api"
	"github.com/brownmestizo/grunt-aws-s3/internal/validation"
	"github.com/brownmestizo/grunt-aws-s3/synctypes"
)

// Client is a differential sync client bound to one bucket.
// It plans declarative sync specs into tasks and executes them strictly in
// order, one task at a time.
type Client struct {
	api      s3api.API
	fs       fs.Filesystem
	planner  *planner.Planner
	executor *executor.Executor
	cfg      *synctypes.ClientConfig
}

// New creates a sync client for the given bucket with the provided options.
//
// Example:
//
//	client, err := s3sync.New(ctx, "my-bucket",
//	    s3sync.WithRegion("eu-west-1"),
//	    s3sync.WithCredentials(accessKey, secretKey),
//	    s3sync.WithDifferential(true),
//	)
func New(ctx context.Context, bucket string, opts ...synctypes.Option) (*Client, error) {
	cfg := &synctypes.ClientConfig{
		Bucket:     bucket,
		Region:     "us-east-1",
		Access:     "public-read",
		DatePolicy: synctypes.DateOlder,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := validation.ValidateBucketName(cfg.Bucket); err != nil {
		return nil, err
	}
	if err := validation.ValidateParams(cfg.DefaultParams); err != nil {
		return nil, err
	}
	if cfg.AccessKeyID == "" && cfg.CustomAWSConfig == nil && !cfg.Debug {
		return nil, syncerrors.NewConfigError("client", "credentials are required")
	}

	var awsCfg aws.Config
	var err error
	if cfg.CustomAWSConfig != nil {
		awsCfg = *cfg.CustomAWSConfig
		if awsCfg.Region == "" {
			awsCfg.Region = cfg.Region
		}
	} else {
		loadOpts := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
		}
		awsCfg, err = config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, syncerrors.NewConfigError("client", err.Error())
		}
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return newClient(s3.NewFromConfig(awsCfg, s3Opts...), cfg), nil
}

// NewWithClient creates a sync client over an existing store client.
// It skips credential loading entirely, which makes it the natural entry
// point for tests and for callers that manage their own SDK clients.
func NewWithClient(api s3api.API, bucket string, opts ...synctypes.Option) (*Client, error) {
	cfg := &synctypes.ClientConfig{
		Bucket:     bucket,
		Region:     "us-east-1",
		Access:     "public-read",
		DatePolicy: synctypes.DateOlder,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := validation.ValidateBucketName(cfg.Bucket); err != nil {
		return nil, err
	}
	if err := validation.ValidateParams(cfg.DefaultParams); err != nil {
		return nil, err
	}

	return newClient(api, cfg), nil
}

func newClient(api s3api.API, cfg *synctypes.ClientConfig) *Client {
	filesystem := cfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}

	return &Client{
		api:     api,
		fs:      filesystem,
		planner: planner.New(filesystem),
		executor: executor.New(api, filesystem, executor.Config{
			Bucket:              cfg.Bucket,
			ACL:                 cfg.Access,
			Debug:               cfg.Debug,
			DatePolicy:          cfg.DatePolicy,
			Concurrency:         cfg.Concurrency,
			UploadConcurrency:   cfg.UploadConcurrency,
			DownloadConcurrency: cfg.DownloadConcurrency,
			MIMEOverrides:       cfg.MIMEOverrides,
		}),
		cfg: cfg,
	}
}

// Bucket returns the bucket the client is bound to.
func (c *Client) Bucket() string {
	return c.cfg.Bucket
}
