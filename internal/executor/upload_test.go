package executor

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brownmestizo/grunt-aws-s3/internal/testutil"
	"github.com/brownmestizo/grunt-aws-s3/synctypes"
)

func uploadTask(items ...synctypes.UploadItem) synctypes.Task {
	return synctypes.Task{Kind: synctypes.TaskUpload, Items: items}
}

func item(localPath, remoteKey string) synctypes.UploadItem {
	return synctypes.UploadItem{LocalPath: localPath, RemoteKey: remoteKey, NeedTransfer: true}
}

func TestExecuteUpload(t *testing.T) {
	t.Run("uploads every item", func(t *testing.T) {
		bucket := testutil.NewFakeBucket()
		memfs := testFS(t, map[string]string{
			"local/a.txt": "alpha",
			"local/b.txt": "beta",
		})
		e := newTestExecutor(bucket, memfs, Config{Concurrency: 4})

		result, err := e.Execute(context.Background(),
			uploadTask(item("local/a.txt", "site/a.txt"), item("local/b.txt", "site/b.txt")))
		require.NoError(t, err)
		assert.Equal(t, 2, result.Transferred)
		assert.True(t, bucket.Has("site/a.txt"))
		assert.True(t, bucket.Has("site/b.txt"))
	})

	t.Run("differential skips identical remote copies", func(t *testing.T) {
		bucket := testutil.NewFakeBucket()
		bucket.Seed("site/a.txt", []byte("alpha"))
		memfs := testFS(t, map[string]string{
			"local/a.txt": "alpha",
			"local/b.txt": "beta",
		})
		e := newTestExecutor(bucket, memfs, Config{})

		a := item("local/a.txt", "site/a.txt")
		a.Differential = true
		b := item("local/b.txt", "site/b.txt")
		b.Differential = true

		result, err := e.Execute(context.Background(), uploadTask(a, b))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Transferred)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, []string{"site/b.txt"}, bucket.Puts)
		assert.Equal(t, synctypes.StateSkipped, result.Objects[0].State)
		assert.Equal(t, synctypes.StateTransferred, result.Objects[1].State)
	})

	t.Run("differential re-uploads changed content", func(t *testing.T) {
		bucket := testutil.NewFakeBucket()
		bucket.Seed("site/a.txt", []byte("stale"))
		memfs := testFS(t, map[string]string{"local/a.txt": "fresh"})
		e := newTestExecutor(bucket, memfs, Config{})

		a := item("local/a.txt", "site/a.txt")
		a.Differential = true

		result, err := e.Execute(context.Background(), uploadTask(a))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Transferred)
		assert.Equal(t, []string{"site/a.txt"}, bucket.Puts)
	})

	t.Run("listing happens once per batch", func(t *testing.T) {
		bucket := testutil.NewFakeBucket()
		memfs := testFS(t, map[string]string{
			"local/a.txt": "alpha",
			"local/b.txt": "beta",
		})
		e := newTestExecutor(bucket, memfs, Config{})

		a := item("local/a.txt", "site/a.txt")
		a.Differential = true
		b := item("local/b.txt", "site/b.txt")
		b.Differential = true

		_, err := e.Execute(context.Background(), uploadTask(a, b))
		require.NoError(t, err)
		assert.Equal(t, 1, bucket.ListCalls)
	})

	t.Run("non-differential batch never lists", func(t *testing.T) {
		bucket := testutil.NewFakeBucket()
		memfs := testFS(t, map[string]string{"local/a.txt": "alpha"})
		e := newTestExecutor(bucket, memfs, Config{})

		_, err := e.Execute(context.Background(), uploadTask(item("local/a.txt", "site/a.txt")))
		require.NoError(t, err)
		assert.Equal(t, 0, bucket.ListCalls)
	})

	t.Run("debug decides but never uploads", func(t *testing.T) {
		bucket := testutil.NewFakeBucket()
		memfs := testFS(t, map[string]string{"local/a.txt": "alpha"})
		e := newTestExecutor(bucket, memfs, Config{Debug: true})

		result, err := e.Execute(context.Background(), uploadTask(item("local/a.txt", "site/a.txt")))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Transferred)
		assert.Empty(t, bucket.Puts)
		assert.False(t, bucket.Has("site/a.txt"))
	})

	t.Run("missing local file fails the item, not the task", func(t *testing.T) {
		bucket := testutil.NewFakeBucket()
		memfs := testFS(t, map[string]string{"local/a.txt": "alpha"})
		e := newTestExecutor(bucket, memfs, Config{})

		result, err := e.Execute(context.Background(),
			uploadTask(item("local/a.txt", "site/a.txt"), item("local/missing.txt", "site/missing.txt")))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Transferred)
		assert.True(t, result.Failed())
		assert.Len(t, result.Errors, 1)
		assert.Equal(t, "site/missing.txt", result.Errors[0].Key)
	})
}

func TestPutObjectParams(t *testing.T) {
	var captured *s3.PutObjectInput
	client := &testutil.MockS3Client{
		PutObjectFunc: func(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			captured = in
			return &s3.PutObjectOutput{}, nil
		},
	}
	memfs := testFS(t, map[string]string{"local/page.html": "<html></html>"})
	e := New(client, memfs, Config{Bucket: "test-bucket", ACL: "public-read"})

	it := item("local/page.html", "site/page.html")
	it.Params = map[string]string{
		"CacheControl":         "max-age=300",
		"ContentEncoding":      "gzip",
		"Expires":              "Thu, 01 Jan 2026 00:00:00 UTC",
		"Metadata":             "team=web,release=42",
		"ServerSideEncryption": "AES256",
		"StorageClass":         "REDUCED_REDUNDANCY",
	}

	_, err := e.Execute(context.Background(), uploadTask(it))
	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.Equal(t, "test-bucket", aws.ToString(captured.Bucket))
	assert.Equal(t, "site/page.html", aws.ToString(captured.Key))
	assert.Equal(t, awstypes.ObjectCannedACL("public-read"), captured.ACL)
	assert.Equal(t, "max-age=300", aws.ToString(captured.CacheControl))
	assert.Equal(t, "gzip", aws.ToString(captured.ContentEncoding))
	assert.Equal(t, awstypes.ServerSideEncryptionAes256, captured.ServerSideEncryption)
	assert.Equal(t, awstypes.StorageClassReducedRedundancy, captured.StorageClass)
	assert.Equal(t, map[string]string{"team": "web", "release": "42"}, captured.Metadata)

	require.NotNil(t, captured.Expires)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), captured.Expires.UTC())
}

func TestContentTypeResolution(t *testing.T) {
	memfs := testFS(t, map[string]string{"local/page.html": "<html><body>hi</body></html>"})

	tests := []struct {
		name      string
		overrides map[string]string
		params    map[string]string
		want      string
	}{
		{"path override wins", map[string]string{"local/page.html": "text/custom"}, nil, "text/custom"},
		{"extension override", map[string]string{".html": "text/x-page"}, nil, "text/x-page"},
		{"explicit param", nil, map[string]string{"ContentType": "text/plain"}, "text/plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestExecutor(testutil.NewFakeBucket(), memfs, Config{MIMEOverrides: tt.overrides})
			it := item("local/page.html", "site/page.html")
			it.Params = tt.params
			got := e.contentType(&it, []byte("<html><body>hi</body></html>"))
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("sniffed from content", func(t *testing.T) {
		e := newTestExecutor(testutil.NewFakeBucket(), memfs, Config{})
		it := item("local/page.html", "site/page.html")
		got := e.contentType(&it, []byte("<html><body>hi</body></html>"))
		assert.Contains(t, got, "text/html")
	})

	t.Run("empty file falls back to the extension", func(t *testing.T) {
		e := newTestExecutor(testutil.NewFakeBucket(), memfs, Config{})
		it := item("local/empty.css", "site/empty.css")
		got := e.contentType(&it, nil)
		assert.Contains(t, got, "text/css")
	})
}
