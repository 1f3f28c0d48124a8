// Package lister retrieves the full set of remote objects under a prefix,
// abstracting over pagination.
package lister

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	syncerrors "github.com/brownmestizo/grunt-aws-s3/errors"
	"github.com/brownmestizo/grunt-aws-s3/internal/s3api"
	"github.com/brownmestizo/grunt-aws-s3/synctypes"
)

// Lister handles complete listing of remote objects.
type Lister struct {
	client s3api.API
}

// New creates a new Lister.
func New(client s3api.API) *Lister {
	return &Lister{client: client}
}

// ListAll returns every object under the prefix, following pagination until
// the store stops reporting truncation and deduplicating by key with the
// first occurrence winning. A listing failure is fatal to the whole sync run,
// so the error wraps ErrListing.
func (l *Lister) ListAll(ctx context.Context, bucket, prefix string) ([]synctypes.RemoteObject, error) {
	var objects []synctypes.RemoteObject
	seen := make(map[string]struct{})

	var continuationToken *string
	for {
		select {
		case <-ctx.Done():
			return nil, syncerrors.NewError("list", syncerrors.ErrListing).
				WithBucket(bucket).
				WithMessage(ctx.Err().Error())
		default:
		}

		input := &s3.ListObjectsV2Input{
			Bucket:  aws.String(bucket),
			Prefix:  aws.String(prefix),
			MaxKeys: aws.Int32(1000),
		}
		if continuationToken != nil {
			input.ContinuationToken = continuationToken
		}

		page, err := l.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, syncerrors.NewError("list", syncerrors.ErrListing).
				WithBucket(bucket).
				WithMessage(err.Error())
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			objects = append(objects, synctypes.RemoteObject{
				Key:          key,
				ETag:         aws.ToString(obj.ETag),
				LastModified: aws.ToTime(obj.LastModified),
				Size:         aws.ToInt64(obj.Size),
			})
		}

		if !aws.ToBool(page.IsTruncated) {
			break
		}
		continuationToken = page.NextContinuationToken
	}

	return objects, nil
}
