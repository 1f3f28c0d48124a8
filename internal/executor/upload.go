package executor

import (
	"bytes"
	"context"
	"mime"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"

	"github.com/brownmestizo/grunt-aws-s3/synctypes"
)

// defaultContentType is used when content type detection fails.
const defaultContentType = "application/octet-stream"

// executeUpload runs an upload task: one shared listing for the whole batch
// when any item is differential, then a bounded pool of put operations.
func (e *Executor) executeUpload(ctx context.Context, task synctypes.Task) (*synctypes.Result, error) {
	started := time.Now()
	result := &synctypes.Result{
		Kind:  synctypes.TaskUpload,
		Total: len(task.Items),
	}

	needListing := false
	for i := range task.Items {
		if task.Items[i].Differential {
			needListing = true
			break
		}
	}

	// The whole bucket is listed once per batch, not once per file pair.
	server := make(map[string]synctypes.RemoteObject)
	if needListing {
		objects, err := e.lister.ListAll(ctx, e.cfg.Bucket, "")
		if err != nil {
			return nil, err
		}
		for _, obj := range objects {
			server[obj.Key] = obj
		}
	}

	items := make([]synctypes.UploadItem, len(task.Items))
	copy(items, task.Items)

	statuses := make([]synctypes.ObjectStatus, len(items))
	var mu sync.Mutex
	var objErrors []synctypes.ObjectError

	// Revise needTransfer before dispatch so the pool only sees final
	// decisions. Hash comparison only: the batch listing carries no local
	// clock relationship worth trusting for uploads.
	for i := range items {
		item := &items[i]
		obj, exists := server[item.RemoteKey]
		if !exists || !item.Differential {
			continue
		}
		different, err := e.differ.IsDifferent(item.LocalPath, obj.ETag, nil, e.cfg.DatePolicy)
		if err != nil {
			statuses[i] = synctypes.ObjectStatus{Key: item.RemoteKey, State: synctypes.StateFailed}
			objErrors = append(objErrors, synctypes.ObjectError{Key: item.RemoteKey, Message: err.Error()})
			item.NeedTransfer = false
			continue
		}
		item.NeedTransfer = different
		if !different {
			statuses[i] = synctypes.ObjectStatus{Key: item.RemoteKey, State: synctypes.StateSkipped}
		}
	}

	runPool(ctx, e.uploadWorkers(), len(items), func(i int) {
		item := &items[i]
		if statuses[i].State != "" {
			return
		}
		if !item.NeedTransfer {
			statuses[i] = synctypes.ObjectStatus{Key: item.RemoteKey, State: synctypes.StateSkipped}
			return
		}
		if e.cfg.Debug {
			statuses[i] = synctypes.ObjectStatus{Key: item.RemoteKey, State: synctypes.StateTransferred}
			return
		}
		if err := e.putObject(ctx, item); err != nil {
			statuses[i] = synctypes.ObjectStatus{Key: item.RemoteKey, State: synctypes.StateFailed}
			mu.Lock()
			objErrors = append(objErrors, synctypes.ObjectError{Key: item.RemoteKey, Message: err.Error()})
			mu.Unlock()
			return
		}
		statuses[i] = synctypes.ObjectStatus{Key: item.RemoteKey, State: synctypes.StateTransferred}
	})

	for _, status := range statuses {
		switch status.State {
		case synctypes.StateTransferred:
			result.Transferred++
		case synctypes.StateSkipped:
			result.Skipped++
		case synctypes.StateExcluded:
			result.Excluded++
		}
	}
	result.Objects = statuses
	result.Errors = objErrors
	result.Duration = time.Since(started)
	return result, nil
}

// putObject uploads one item, attaching content type, ACL, and the item's
// merged transfer parameters.
func (e *Executor) putObject(ctx context.Context, item *synctypes.UploadItem) error {
	data, err := e.fs.ReadFile(item.LocalPath)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(e.cfg.Bucket),
		Key:         aws.String(item.RemoteKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(e.contentType(item, data)),
	}
	if e.cfg.ACL != "" {
		input.ACL = awstypes.ObjectCannedACL(e.cfg.ACL)
	}
	applyParams(input, item.Params)

	_, err = e.api.PutObject(ctx, input)
	return err
}

// contentType resolves the content type for one item: explicit override,
// then the item's ContentType parameter, then content sniffing with an
// extension fallback.
func (e *Executor) contentType(item *synctypes.UploadItem, data []byte) string {
	if ct, ok := e.cfg.MIMEOverrides[item.LocalPath]; ok {
		return ct
	}
	if ct, ok := e.cfg.MIMEOverrides[path.Ext(item.LocalPath)]; ok {
		return ct
	}
	if ct, ok := item.Params["ContentType"]; ok {
		return ct
	}

	if len(data) > 0 {
		if mt := mimetype.Detect(data); mt != nil && mt.String() != defaultContentType {
			return mt.String()
		}
	}
	if ext := strings.ToLower(path.Ext(item.LocalPath)); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}
	return defaultContentType
}

// applyParams maps allow-listed transfer parameters onto the put request.
// Names were validated during planning; values that fail to parse are
// ignored rather than dropped mid-transfer.
func applyParams(input *s3.PutObjectInput, params map[string]string) {
	for name, value := range params {
		switch name {
		case "CacheControl":
			input.CacheControl = aws.String(value)
		case "ContentDisposition":
			input.ContentDisposition = aws.String(value)
		case "ContentEncoding":
			input.ContentEncoding = aws.String(value)
		case "ContentLanguage":
			input.ContentLanguage = aws.String(value)
		case "ContentLength":
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				input.ContentLength = aws.Int64(n)
			}
		case "ContentMD5":
			input.ContentMD5 = aws.String(value)
		case "Expires":
			if ts, err := parseHTTPDate(value); err == nil {
				input.Expires = aws.Time(ts)
			}
		case "GrantFullControl":
			input.GrantFullControl = aws.String(value)
		case "GrantRead":
			input.GrantRead = aws.String(value)
		case "GrantReadACP":
			input.GrantReadACP = aws.String(value)
		case "GrantWriteACP":
			input.GrantWriteACP = aws.String(value)
		case "Metadata":
			input.Metadata = parseMetadata(value)
		case "ServerSideEncryption":
			input.ServerSideEncryption = awstypes.ServerSideEncryption(value)
		case "StorageClass":
			input.StorageClass = awstypes.StorageClass(value)
		case "WebsiteRedirectLocation":
			input.WebsiteRedirectLocation = aws.String(value)
		}
	}
}

func parseHTTPDate(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC1123, value); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, value)
}

// parseMetadata decodes "k=v,k2=v2" pairs into a user-metadata map.
func parseMetadata(value string) map[string]string {
	meta := make(map[string]string)
	for _, pair := range strings.Split(value, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || k == "" {
			continue
		}
		meta[k] = v
	}
	return meta
}
