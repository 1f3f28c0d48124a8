// Package synctypes provides shared type definitions for the sync module.
package synctypes

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// Action identifies what a SyncSpec asks for.
type Action string

// Recognized sync actions
const (
	// ActionUpload transfers local files to the remote store
	ActionUpload Action = "upload"

	// ActionDownload transfers remote objects to the local tree
	ActionDownload Action = "download"

	// ActionDelete removes remote objects under a prefix
	ActionDelete Action = "delete"
)

// DatePolicy selects how a modification-time fallback comparison is resolved
// when content hashes differ and the remote store supplied a date.
type DatePolicy string

// Recognized date policies
const (
	// DateOlder reports "different" when the local mtime is older than the
	// server date. This is the default policy.
	DateOlder DatePolicy = "older"

	// DateNewer reports "different" when the local mtime is newer than the
	// server date.
	DateNewer DatePolicy = "newer"
)

// SyncSpec is a declarative source/destination binding supplied by the caller.
// It is immutable once parsed and consumed only by the planner.
type SyncSpec struct {
	// Action is the requested operation (upload, download, delete)
	Action Action

	// SourcePaths are the local files or directories to upload.
	// Only valid for upload specs.
	SourcePaths []string

	// DestPrefix is the remote key or key prefix the spec binds to
	DestPrefix string

	// WorkingDir is the local directory sources are resolved against and
	// downloads are written under. Required for downloads and for
	// differential deletes.
	WorkingDir string

	// ExcludePattern filters remote objects during delete and download
	// reconciliation
	ExcludePattern string

	// FlipExclude inverts the exclude pattern: only matching objects are
	// candidates, everything else is excluded
	FlipExclude bool

	// Differential enables change detection so unchanged objects are skipped.
	// Nil means "inherit the client default".
	Differential *bool

	// Params are per-spec transfer parameters merged over the client
	// defaults, spec values taking precedence
	Params map[string]string
}

// TaskKind identifies a planned task's homogeneous operation type.
type TaskKind string

// Task kinds produced by planning
const (
	// TaskUpload is a batch of upload items coalesced from consecutive
	// upload specs
	TaskUpload TaskKind = "upload"

	// TaskDelete removes remote objects under a prefix
	TaskDelete TaskKind = "delete"

	// TaskDownload enumerates and fetches remote objects under a prefix
	TaskDownload TaskKind = "download"
)

// Task is a unit of work produced by planning. Exactly one of the kind-specific
// fields is populated. Tasks execute strictly in planning order, one at a time.
type Task struct {
	// Kind is the task's operation type
	Kind TaskKind

	// Items holds the upload items for TaskUpload
	Items []UploadItem

	// DestPrefix is the remote prefix for TaskDelete and TaskDownload
	DestPrefix string

	// WorkingDir is the local root for TaskDownload and differential TaskDelete
	WorkingDir string

	// ExcludePattern filters remote objects during reconciliation
	ExcludePattern string

	// FlipExclude inverts the exclude pattern
	FlipExclude bool

	// Differential enables change detection for the task
	Differential bool
}

// UploadItem is one local-file-to-remote-key transfer inside an upload task.
type UploadItem struct {
	// LocalPath is the local file to upload
	LocalPath string

	// RemoteKey is the destination object key
	RemoteKey string

	// Params are the merged transfer parameters for this item
	Params map[string]string

	// Differential marks the item for change detection against the
	// remote listing
	Differential bool

	// NeedTransfer starts true and is revised to false when the remote
	// copy is already identical in differential mode
	NeedTransfer bool
}

// RemoteObject describes one remote object as returned by the lister.
// Instances are never mutated after listing; reconciliation decisions are
// kept in a separate Decision record.
type RemoteObject struct {
	// Key is the object key
	Key string

	// ETag is the content hash in the store's quoted convention
	ETag string

	// LastModified is when the object was last written
	LastModified time.Time

	// Size is the object size in bytes
	Size int64
}

// Decision is the derived reconciliation outcome for one remote object.
// It lives alongside the immutable RemoteObject rather than being bolted
// onto it.
type Decision struct {
	// NeedTransfer records whether the object requires a transfer or delete
	NeedTransfer bool

	// Excluded records whether the exclude pattern removed the object from
	// consideration
	Excluded bool
}

// ObjectState classifies the outcome of one object within a task.
type ObjectState string

// Per-object outcome states
const (
	// StateTransferred means the object was uploaded, downloaded, or deleted
	// (or would have been, in debug mode)
	StateTransferred ObjectState = "transferred"

	// StateSkipped means differential comparison found the object identical
	StateSkipped ObjectState = "skipped"

	// StateExcluded means the exclude pattern removed the object
	StateExcluded ObjectState = "excluded"

	// StateFailed means the object's operation failed
	StateFailed ObjectState = "failed"
)

// ObjectStatus is one per-object status line in a task result.
type ObjectStatus struct {
	// Key is the remote object key
	Key string

	// State is the object's outcome
	State ObjectState
}

// ObjectError records a per-object failure inside a task.
type ObjectError struct {
	// Key is the remote object key that failed
	Key string

	// Message is the failure description
	Message string
}

// Result is the aggregated outcome of one task.
type Result struct {
	// Kind is the task's operation type
	Kind TaskKind

	// Transferred is the number of objects acted upon
	Transferred int

	// Skipped is the number of objects left alone because they were identical
	Skipped int

	// Excluded is the number of objects removed by the exclude pattern
	Excluded int

	// Total is the number of candidate objects considered
	Total int

	// Objects holds the per-object status lines in reporting order
	Objects []ObjectStatus

	// Errors holds the per-object failures
	Errors []ObjectError

	// Duration is how long the task took
	Duration time.Duration
}

// Failed reports whether the task completed with per-object failures.
func (r *Result) Failed() bool {
	return len(r.Errors) > 0
}

// Summary renders a one-line human-readable task summary.
func (r *Result) Summary() string {
	verb := map[TaskKind]string{
		TaskUpload:   "uploaded",
		TaskDownload: "downloaded",
		TaskDelete:   "deleted",
	}[r.Kind]
	if len(r.Errors) > 0 {
		return fmt.Sprintf("%d/%d %s, %d skipped, %d excluded, %d failed",
			r.Transferred, r.Total, verb, r.Skipped, r.Excluded, len(r.Errors))
	}
	return fmt.Sprintf("%d/%d %s, %d skipped, %d excluded",
		r.Transferred, r.Total, verb, r.Skipped, r.Excluded)
}

// ClientConfig holds configuration for the sync client.
type ClientConfig struct {
	Bucket              string
	Region              string
	AccessKeyID         string
	SecretAccessKey     string
	SessionToken        string
	Endpoint            string
	ForcePathStyle      bool
	Concurrency         int
	UploadConcurrency   int
	DownloadConcurrency int
	Debug               bool
	Differential        bool
	Access              string
	DatePolicy          DatePolicy
	MIMEOverrides       map[string]string
	DefaultParams       map[string]string
	CustomAWSConfig     *aws.Config
	Filesystem          fs.Filesystem
}

// Option is a functional option for configuring the sync client.
type Option func(*ClientConfig)
