package executor

import (
	"context"
	"testing"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brownmestizo/grunt-aws-s3/internal/testutil"
	"github.com/brownmestizo/grunt-aws-s3/synctypes"
)

func downloadTask(prefix, workingDir string) synctypes.Task {
	return synctypes.Task{Kind: synctypes.TaskDownload, DestPrefix: prefix, WorkingDir: workingDir}
}

func TestExecuteDownload(t *testing.T) {
	t.Run("fetches every object under the prefix", func(t *testing.T) {
		bucket := testutil.NewFakeBucket()
		bucket.Seed("docs/a.txt", []byte("alpha"))
		bucket.Seed("docs/sub/b.txt", []byte("beta"))
		bucket.Seed("other/c.txt", []byte("gamma"))
		memfs := billy.NewInMemoryFS()
		e := newTestExecutor(bucket, memfs, Config{DownloadConcurrency: 4})

		result, err := e.Execute(context.Background(), downloadTask("docs/", "local"))
		require.NoError(t, err)
		assert.Equal(t, 2, result.Transferred)
		assert.Equal(t, 2, result.Total)

		body, err := memfs.ReadFile("local/a.txt")
		require.NoError(t, err)
		assert.Equal(t, "alpha", string(body))

		body, err = memfs.ReadFile("local/sub/b.txt")
		require.NoError(t, err)
		assert.Equal(t, "beta", string(body))
	})

	t.Run("directory placeholder objects are skipped", func(t *testing.T) {
		bucket := testutil.NewFakeBucket()
		bucket.Seed("docs/a.txt", []byte("alpha"))
		bucket.Seed("docs/empty/", nil)
		memfs := billy.NewInMemoryFS()
		e := newTestExecutor(bucket, memfs, Config{})

		result, err := e.Execute(context.Background(), downloadTask("docs/", "local"))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Transferred)
		assert.Equal(t, 1, result.Skipped)
	})

	t.Run("exclude pattern filters objects", func(t *testing.T) {
		bucket := testutil.NewFakeBucket()
		bucket.Seed("docs/a.txt", []byte("alpha"))
		bucket.Seed("docs/debug.log", []byte("noise"))
		memfs := billy.NewInMemoryFS()
		e := newTestExecutor(bucket, memfs, Config{})

		task := downloadTask("docs/", "local")
		task.ExcludePattern = "*.log"

		result, err := e.Execute(context.Background(), task)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Transferred)
		assert.Equal(t, 1, result.Excluded)
		_, err = memfs.ReadFile("local/debug.log")
		assert.Error(t, err)
	})

	t.Run("differential skips identical local copies", func(t *testing.T) {
		bucket := testutil.NewFakeBucket()
		bucket.Seed("docs/a.txt", []byte("alpha"))
		bucket.Seed("docs/b.txt", []byte("fresh"))
		memfs := testFS(t, map[string]string{"local/a.txt": "alpha"})
		e := newTestExecutor(bucket, memfs, Config{})

		task := downloadTask("docs/", "local")
		task.Differential = true

		result, err := e.Execute(context.Background(), task)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Transferred)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, []string{"docs/b.txt"}, bucket.Gets)
	})

	t.Run("older policy refreshes stale local files", func(t *testing.T) {
		bucket := testutil.NewFakeBucket()
		bucket.Seed("docs/a.txt", []byte("fresh"))
		bucket.LastModified = time.Now().Add(time.Hour)
		memfs := testFS(t, map[string]string{"local/a.txt": "stale"})
		e := newTestExecutor(bucket, memfs, Config{})

		task := downloadTask("docs/", "local")
		task.Differential = true

		result, err := e.Execute(context.Background(), task)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Transferred)

		body, err := memfs.ReadFile("local/a.txt")
		require.NoError(t, err)
		assert.Equal(t, "fresh", string(body))
	})

	t.Run("newer policy leaves locally edited files alone", func(t *testing.T) {
		bucket := testutil.NewFakeBucket()
		bucket.Seed("docs/a.txt", []byte("remote"))
		bucket.LastModified = time.Now().Add(time.Hour)
		memfs := testFS(t, map[string]string{"local/a.txt": "edited"})
		e := newTestExecutor(bucket, memfs, Config{DatePolicy: synctypes.DateNewer})

		task := downloadTask("docs/", "local")
		task.Differential = true

		result, err := e.Execute(context.Background(), task)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Transferred)
		assert.Equal(t, 1, result.Skipped)

		body, err := memfs.ReadFile("local/a.txt")
		require.NoError(t, err)
		assert.Equal(t, "edited", string(body))
	})

	t.Run("debug decides but never fetches", func(t *testing.T) {
		bucket := testutil.NewFakeBucket()
		bucket.Seed("docs/a.txt", []byte("alpha"))
		memfs := billy.NewInMemoryFS()
		e := newTestExecutor(bucket, memfs, Config{Debug: true})

		result, err := e.Execute(context.Background(), downloadTask("docs/", "local"))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Transferred)
		assert.Empty(t, bucket.Gets)
		_, err = memfs.ReadFile("local/a.txt")
		assert.Error(t, err)
	})

	t.Run("scalar destination writes the key's base name", func(t *testing.T) {
		bucket := testutil.NewFakeBucket()
		bucket.Seed("docs/report.pdf", []byte("pdf"))
		memfs := billy.NewInMemoryFS()
		e := newTestExecutor(bucket, memfs, Config{})

		result, err := e.Execute(context.Background(), downloadTask("docs/report.pdf", "local"))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Transferred)

		body, err := memfs.ReadFile("local/report.pdf")
		require.NoError(t, err)
		assert.Equal(t, "pdf", string(body))
	})
}
