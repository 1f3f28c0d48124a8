// Package executor runs planned sync tasks against the remote store.
//
// Each task kind has its own state machine: list, reconcile, then execute the
// surviving object operations through a bounded worker pool. Object state is
// scoped per task and never shared across tasks, so the pools need no locking
// beyond result aggregation.
package executor

import (
	"context"
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	syncerrors "github.com/brownmestizo/grunt-aws-s3/errors"
	"github.com/brownmestizo/grunt-aws-s3/internal/differ"
	"github.com/brownmestizo/grunt-aws-s3/internal/lister"
	"github.com/brownmestizo/grunt-aws-s3/internal/s3api"
	"github.com/brownmestizo/grunt-aws-s3/synctypes"
)

// Config carries the client-level settings the executor needs.
type Config struct {
	// Bucket is the target bucket
	Bucket string

	// ACL applied to uploaded objects
	ACL string

	// Debug runs every task's listing and decision-making but skips the
	// actual put/get/delete network calls
	Debug bool

	// DatePolicy selects the mtime fallback for download reconciliation
	DatePolicy synctypes.DatePolicy

	// Concurrency is the general operation concurrency ceiling
	Concurrency int

	// UploadConcurrency overrides Concurrency for uploads when positive
	UploadConcurrency int

	// DownloadConcurrency is the download pool size (independent knob)
	DownloadConcurrency int

	// MIMEOverrides maps local paths or extensions to explicit content types
	MIMEOverrides map[string]string
}

// Executor orchestrates listing, differencing, and concurrent execution of
// the object operations behind each task.
type Executor struct {
	api    s3api.API
	fs     fs.Filesystem
	differ *differ.Differ
	lister *lister.Lister
	cfg    Config
}

// New creates an executor over the given store client and filesystem.
func New(api s3api.API, filesystem fs.Filesystem, cfg Config) *Executor {
	return &Executor{
		api:    api,
		fs:     filesystem,
		differ: differ.New(filesystem),
		lister: lister.New(api),
		cfg:    cfg,
	}
}

// Execute runs one task to completion and returns its aggregated outcome.
// Fatal errors (listing failures) return a nil result; per-object failures
// are reported through the result instead.
func (e *Executor) Execute(ctx context.Context, task synctypes.Task) (*synctypes.Result, error) {
	switch task.Kind {
	case synctypes.TaskUpload:
		return e.executeUpload(ctx, task)
	case synctypes.TaskDownload:
		return e.executeDownload(ctx, task)
	case synctypes.TaskDelete:
		return e.executeDelete(ctx, task)
	default:
		return nil, syncerrors.NewConfigError("execute", "unknown task kind "+string(task.Kind))
	}
}

// uploadWorkers resolves the upload pool size: uploadConcurrency falls back
// to the general concurrency setting, then to 1. The two knobs stay
// independent of the download pool on purpose.
func (e *Executor) uploadWorkers() int {
	if e.cfg.UploadConcurrency > 0 {
		return e.cfg.UploadConcurrency
	}
	if e.cfg.Concurrency > 0 {
		return e.cfg.Concurrency
	}
	return 1
}

// downloadWorkers resolves the download pool size, default 1.
func (e *Executor) downloadWorkers() int {
	if e.cfg.DownloadConcurrency > 0 {
		return e.cfg.DownloadConcurrency
	}
	return 1
}

// runPool executes n indexed work units through a bounded worker pool.
// Workers never cancel siblings; each unit runs to completion and records
// its own outcome.
func runPool(ctx context.Context, workers, n int, work func(i int)) {
	if workers <= 0 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			// Stop dispatching but still drain the in-flight workers.
			wg.Wait()
			return
		}

		wg.Add(1)
		go func(i int) {
			defer func() {
				<-sem
				wg.Done()
			}()
			work(i)
		}(i)
	}

	wg.Wait()
}
