package differ

import (
	"crypto/md5"
	"fmt"
	"testing"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncerrors "github.com/brownmestizo/grunt-aws-s3/errors"
	"github.com/brownmestizo/grunt-aws-s3/synctypes"
)

func md5Hex(content string) string {
	sum := md5.Sum([]byte(content))
	return fmt.Sprintf("%x", sum)
}

func setupFile(t *testing.T, name, content string) (*Differ, time.Time) {
	t.Helper()
	memfs := billy.NewInMemoryFS()
	require.NoError(t, memfs.WriteFile(name, []byte(content), 0o644))
	info, err := memfs.Stat(name)
	require.NoError(t, err)
	return New(memfs), info.ModTime()
}

func TestIsDifferent(t *testing.T) {
	t.Run("hash match is authoritative", func(t *testing.T) {
		d, mtime := setupFile(t, "a.txt", "hello")
		// A wildly different server date must not matter when hashes match.
		serverDate := mtime.Add(24 * time.Hour)

		different, err := d.IsDifferent("a.txt", `"`+md5Hex("hello")+`"`, &serverDate, synctypes.DateOlder)
		assert.NoError(t, err)
		assert.False(t, different)
	})

	t.Run("unquoted etag matches too", func(t *testing.T) {
		d, _ := setupFile(t, "a.txt", "hello")

		different, err := d.IsDifferent("a.txt", md5Hex("hello"), nil, synctypes.DateOlder)
		assert.NoError(t, err)
		assert.False(t, different)
	})

	t.Run("hash mismatch without date is different", func(t *testing.T) {
		d, _ := setupFile(t, "a.txt", "hello")

		different, err := d.IsDifferent("a.txt", md5Hex("other"), nil, synctypes.DateOlder)
		assert.NoError(t, err)
		assert.True(t, different)
	})

	t.Run("older policy compares mtime before server date", func(t *testing.T) {
		d, mtime := setupFile(t, "a.txt", "hello")

		future := mtime.Add(time.Hour)
		different, err := d.IsDifferent("a.txt", md5Hex("other"), &future, synctypes.DateOlder)
		assert.NoError(t, err)
		assert.True(t, different, "local older than server date")

		past := mtime.Add(-time.Hour)
		different, err = d.IsDifferent("a.txt", md5Hex("other"), &past, synctypes.DateOlder)
		assert.NoError(t, err)
		assert.False(t, different, "local newer than server date")
	})

	t.Run("newer policy compares mtime after server date", func(t *testing.T) {
		d, mtime := setupFile(t, "a.txt", "hello")

		past := mtime.Add(-time.Hour)
		different, err := d.IsDifferent("a.txt", md5Hex("other"), &past, synctypes.DateNewer)
		assert.NoError(t, err)
		assert.True(t, different, "local newer than server date")

		future := mtime.Add(time.Hour)
		different, err = d.IsDifferent("a.txt", md5Hex("other"), &future, synctypes.DateNewer)
		assert.NoError(t, err)
		assert.False(t, different, "local older than server date")
	})

	t.Run("missing file propagates local IO error", func(t *testing.T) {
		d := New(billy.NewInMemoryFS())

		_, err := d.IsDifferent("missing.txt", md5Hex("x"), nil, synctypes.DateOlder)
		assert.Error(t, err)
		assert.ErrorIs(t, err, syncerrors.ErrLocalIO)
	})
}

func TestContentHash(t *testing.T) {
	d, _ := setupFile(t, "a.txt", "hello world")

	hash, err := d.ContentHash("a.txt")
	assert.NoError(t, err)
	assert.Equal(t, md5Hex("hello world"), hash)
}
