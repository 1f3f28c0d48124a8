// Package testutil provides test utilities and mocks for sync operations.
// This package is internal and should only be used for testing within the module.
package testutil

import (
	"context"
	"crypto/md5"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/brownmestizo/grunt-aws-s3/internal/s3api"
)

// MockS3Client is a mock implementation of the s3api.API interface for testing.
// It allows customization of each operation through function fields.
type MockS3Client struct {
	PutObjectFunc     func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObjectFunc     func(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObjectsFunc func(context.Context, *s3.DeleteObjectsInput, ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	ListObjectsV2Func func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// PutObject mocks the S3 PutObject operation.
func (m *MockS3Client) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	optFns ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	if m.PutObjectFunc != nil {
		return m.PutObjectFunc(ctx, params, optFns...)
	}
	return &s3.PutObjectOutput{}, nil
}

// GetObject mocks the S3 GetObject operation.
func (m *MockS3Client) GetObject(
	ctx context.Context,
	params *s3.GetObjectInput,
	optFns ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	if m.GetObjectFunc != nil {
		return m.GetObjectFunc(ctx, params, optFns...)
	}
	return &s3.GetObjectOutput{}, nil
}

// DeleteObjects mocks the S3 DeleteObjects operation.
func (m *MockS3Client) DeleteObjects(
	ctx context.Context,
	params *s3.DeleteObjectsInput,
	optFns ...func(*s3.Options),
) (*s3.DeleteObjectsOutput, error) {
	if m.DeleteObjectsFunc != nil {
		return m.DeleteObjectsFunc(ctx, params, optFns...)
	}
	return &s3.DeleteObjectsOutput{}, nil
}

// ListObjectsV2 mocks the S3 ListObjectsV2 operation.
func (m *MockS3Client) ListObjectsV2(
	ctx context.Context,
	params *s3.ListObjectsV2Input,
	optFns ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	if m.ListObjectsV2Func != nil {
		return m.ListObjectsV2Func(ctx, params, optFns...)
	}
	return &s3.ListObjectsV2Output{}, nil
}

// Verify the mock satisfies the interface.
var _ s3api.API = (*MockS3Client)(nil)

// FakeBucket is an in-memory bucket backing a MockS3Client for end-to-end
// style tests. Object bodies are stored verbatim; ETags follow the store's
// quoted-MD5 convention.
type FakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte

	// Puts records the keys written, in call order.
	Puts []string
	// Gets records the keys fetched, in call order.
	Gets []string
	// DeleteBatches records the size of each DeleteObjects call.
	DeleteBatches []int
	// ListCalls counts ListObjectsV2 invocations (pages included).
	ListCalls int
	// PageSize caps keys per listing page; zero means 1000.
	PageSize int
	// LastModified is reported for every listed object when non-zero.
	LastModified time.Time
	// FailDeleteKeys marks keys whose deletion reports a per-key error.
	FailDeleteKeys map[string]bool
}

// NewFakeBucket creates an empty fake bucket.
func NewFakeBucket() *FakeBucket {
	return &FakeBucket{objects: make(map[string][]byte)}
}

// Seed stores an object body directly.
func (f *FakeBucket) Seed(key string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = body
}

// Has reports whether the key currently exists.
func (f *FakeBucket) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

// Client returns a MockS3Client backed by this bucket.
func (f *FakeBucket) Client() *MockS3Client {
	return &MockS3Client{
		PutObjectFunc:     f.putObject,
		GetObjectFunc:     f.getObject,
		DeleteObjectsFunc: f.deleteObjects,
		ListObjectsV2Func: f.listObjectsV2,
	}
}

func etagFor(body []byte) string {
	return fmt.Sprintf("%q", fmt.Sprintf("%x", md5.Sum(body)))
}

func (f *FakeBucket) putObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	body, err := readAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(params.Key)
	f.objects[key] = body
	f.Puts = append(f.Puts, key)
	return &s3.PutObjectOutput{ETag: aws.String(etagFor(body))}, nil
}

func (f *FakeBucket) getObject(
	ctx context.Context,
	params *s3.GetObjectInput,
	_ ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(params.Key)
	body, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("NoSuchKey: %s", key)
	}
	f.Gets = append(f.Gets, key)
	return &s3.GetObjectOutput{
		Body:          newBodyReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ETag:          aws.String(etagFor(body)),
	}, nil
}

func (f *FakeBucket) deleteObjects(
	ctx context.Context,
	params *s3.DeleteObjectsInput,
	_ ...func(*s3.Options),
) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &s3.DeleteObjectsOutput{}
	f.DeleteBatches = append(f.DeleteBatches, len(params.Delete.Objects))
	for _, obj := range params.Delete.Objects {
		key := aws.ToString(obj.Key)
		if f.FailDeleteKeys[key] {
			out.Errors = append(out.Errors, types.Error{
				Key:     aws.String(key),
				Code:    aws.String("InternalError"),
				Message: aws.String("simulated delete failure"),
			})
			continue
		}
		delete(f.objects, key)
		out.Deleted = append(out.Deleted, types.DeletedObject{Key: aws.String(key)})
	}
	return out, nil
}

func (f *FakeBucket) listObjectsV2(
	ctx context.Context,
	params *s3.ListObjectsV2Input,
	_ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++

	prefix := aws.ToString(params.Prefix)
	keys := make([]string, 0, len(f.objects))
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := 0
	if params.ContinuationToken != nil {
		token := aws.ToString(params.ContinuationToken)
		for i, key := range keys {
			if key > token {
				start = i
				break
			}
		}
	}

	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}
	end := start + pageSize
	if end > len(keys) {
		end = len(keys)
	}

	out := &s3.ListObjectsV2Output{}
	for _, key := range keys[start:end] {
		body := f.objects[key]
		entry := types.Object{
			Key:  aws.String(key),
			ETag: aws.String(etagFor(body)),
			Size: aws.Int64(int64(len(body))),
		}
		if !f.LastModified.IsZero() {
			entry.LastModified = aws.Time(f.LastModified)
		}
		out.Contents = append(out.Contents, entry)
	}
	if end < len(keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[end-1])
	} else {
		out.IsTruncated = aws.Bool(false)
	}
	return out, nil
}
