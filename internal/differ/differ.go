// Package differ decides whether a local file and a remote object differ.
//
// The content hash is authoritative: matching hashes short-circuit every other
// signal. When hashes differ and the store supplied a last-modified date, a
// modification-time comparison refines the answer under the requested policy;
// clock skew and multipart ETags make hash mismatch alone non-decisive.
package differ

import (
	"crypto/md5"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	syncerrors "github.com/brownmestizo/grunt-aws-s3/errors"
	"github.com/brownmestizo/grunt-aws-s3/synctypes"
)

// Differ computes local content fingerprints and compares them against
// remote object metadata.
type Differ struct {
	fs fs.Filesystem
}

// New creates a Differ over the given filesystem.
func New(filesystem fs.Filesystem) *Differ {
	return &Differ{fs: filesystem}
}

// IsDifferent reports whether the local file differs from the remote object
// described by serverETag and, optionally, serverDate.
//
// Hash match wins immediately. On mismatch with no server date the files are
// different. With a server date the answer falls back to the mtime comparison
// selected by policy: DateOlder means "different if local mtime is before the
// server date", DateNewer the reverse. Filesystem errors propagate; the file
// is never silently treated as same or different.
func (d *Differ) IsDifferent(
	localPath, serverETag string,
	serverDate *time.Time,
	policy synctypes.DatePolicy,
) (bool, error) {
	localHash, err := d.ContentHash(localPath)
	if err != nil {
		return false, err
	}

	if localHash == strings.Trim(serverETag, `"`) {
		return false, nil
	}

	if serverDate == nil {
		return true, nil
	}

	info, err := d.fs.Stat(localPath)
	if err != nil {
		return false, syncerrors.NewError("diff", syncerrors.ErrLocalIO).
			WithKey(localPath).
			WithMessage(err.Error())
	}

	switch policy {
	case synctypes.DateNewer:
		return info.ModTime().After(*serverDate), nil
	default:
		return info.ModTime().Before(*serverDate), nil
	}
}

// ContentHash computes the streaming MD5 fingerprint of a local file,
// hex-encoded without the store's quoting.
func (d *Differ) ContentHash(localPath string) (string, error) {
	file, err := d.fs.Open(localPath)
	if err != nil {
		return "", syncerrors.NewError("diff", syncerrors.ErrLocalIO).
			WithKey(localPath).
			WithMessage(err.Error())
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", syncerrors.NewError("diff", syncerrors.ErrLocalIO).
			WithKey(localPath).
			WithMessage(err.Error())
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
