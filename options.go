package s3sync

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/brownmestizo/grunt-aws-s3/synctypes"
)

// WithRegion sets the AWS region for store operations.
// Default is us-east-1.
func WithRegion(region string) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.Region = region
	}
}

// WithCredentials sets static credentials for the store.
// Credentials are required unless debug mode or a custom AWS config is used.
func WithCredentials(accessKeyID, secretAccessKey string) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.AccessKeyID = accessKeyID
		c.SecretAccessKey = secretAccessKey
	}
}

// WithSessionToken sets the session token accompanying temporary credentials.
func WithSessionToken(token string) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.SessionToken = token
	}
}

// WithEndpoint points the client at a custom store endpoint, such as a
// compatible third-party or local test server.
func WithEndpoint(endpoint string) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces path-style URLs instead of virtual-hosted style.
// Needed for most custom endpoints.
func WithForcePathStyle(force bool) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.ForcePathStyle = force
	}
}

// WithConcurrency sets the general operation concurrency ceiling.
// Upload pools inherit it unless WithUploadConcurrency overrides them.
// Default is 1.
func WithConcurrency(concurrency int) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithUploadConcurrency overrides the upload pool size independently of the
// general concurrency setting.
func WithUploadConcurrency(concurrency int) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		if concurrency > 0 {
			c.UploadConcurrency = concurrency
		}
	}
}

// WithDownloadConcurrency sets the download pool size. Default is 1.
func WithDownloadConcurrency(concurrency int) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		if concurrency > 0 {
			c.DownloadConcurrency = concurrency
		}
	}
}

// WithDebug enables dry-run mode: every task runs its listing and
// decision-making but no object is uploaded, downloaded, or deleted.
func WithDebug(debug bool) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.Debug = debug
	}
}

// WithDifferential sets the client-wide differential default.
// Individual specs may still override it either way.
func WithDifferential(differential bool) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.Differential = differential
	}
}

// WithAccess sets the canned ACL applied to uploaded objects.
// Default is public-read.
func WithAccess(access string) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.Access = access
	}
}

// WithDatePolicy selects the modification-time fallback used when content
// hashes differ during download reconciliation. Default is DateOlder.
func WithDatePolicy(policy synctypes.DatePolicy) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.DatePolicy = policy
	}
}

// WithMIMEOverrides maps local paths or extensions (".ext" form) to explicit
// content types, bypassing detection.
func WithMIMEOverrides(overrides map[string]string) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.MIMEOverrides = overrides
	}
}

// WithDefaultParams sets transfer parameters applied to every upload unless
// a spec overrides them. Names are validated against the allow-list when the
// client is created.
func WithDefaultParams(params map[string]string) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.DefaultParams = params
	}
}

// WithAWSConfig supplies a pre-built AWS configuration, bypassing the
// credential and region options entirely.
func WithAWSConfig(cfg *aws.Config) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.CustomAWSConfig = cfg
	}
}

// WithFilesystem sets a custom filesystem implementation for local file
// operations. Defaults to the OS filesystem. Useful for testing with
// in-memory filesystems.
func WithFilesystem(filesystem fs.Filesystem) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}
