package executor

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/brownmestizo/grunt-aws-s3/internal/keymap"
	"github.com/brownmestizo/grunt-aws-s3/internal/patterns"
	"github.com/brownmestizo/grunt-aws-s3/synctypes"
)

// executeDownload runs a download task: list the prefix, reconcile each
// object against the local tree, then fetch the survivors through a bounded
// pool and write them under the working directory.
func (e *Executor) executeDownload(ctx context.Context, task synctypes.Task) (*synctypes.Result, error) {
	started := time.Now()

	objects, err := e.lister.ListAll(ctx, e.cfg.Bucket, task.DestPrefix)
	if err != nil {
		return nil, err
	}

	result := &synctypes.Result{
		Kind:  synctypes.TaskDownload,
		Total: len(objects),
	}

	matcher := patterns.New(task.ExcludePattern, task.FlipExclude)
	decisions := make([]synctypes.Decision, len(objects))
	relPaths := make([]string, len(objects))
	statuses := make([]synctypes.ObjectStatus, len(objects))
	var mu sync.Mutex
	var objErrors []synctypes.ObjectError

	for i, obj := range objects {
		rel := keymap.LocalRelativePath(obj.Key, task.DestPrefix)
		relPaths[i] = rel
		decisions[i].Excluded = matcher.Excluded(rel)

		// Trailing "directory" entries are listing artifacts, not content.
		decisions[i].NeedTransfer = !strings.HasSuffix(obj.Key, "/")

		if !decisions[i].NeedTransfer || decisions[i].Excluded || !task.Differential {
			continue
		}

		localPath := path.Join(task.WorkingDir, rel)
		if _, statErr := e.fs.Stat(localPath); statErr != nil {
			if errors.Is(statErr, os.ErrNotExist) {
				continue // absent locally, always download
			}
			statuses[i] = synctypes.ObjectStatus{Key: obj.Key, State: synctypes.StateFailed}
			objErrors = append(objErrors, synctypes.ObjectError{Key: obj.Key, Message: statErr.Error()})
			decisions[i].NeedTransfer = false
			continue
		}

		policy := e.cfg.DatePolicy
		if policy == "" {
			policy = synctypes.DateOlder
		}
		serverDate := obj.LastModified
		different, diffErr := e.differ.IsDifferent(localPath, obj.ETag, &serverDate, policy)
		if diffErr != nil {
			statuses[i] = synctypes.ObjectStatus{Key: obj.Key, State: synctypes.StateFailed}
			objErrors = append(objErrors, synctypes.ObjectError{Key: obj.Key, Message: diffErr.Error()})
			decisions[i].NeedTransfer = false
			continue
		}
		decisions[i].NeedTransfer = different
	}

	runPool(ctx, e.downloadWorkers(), len(objects), func(i int) {
		if statuses[i].State != "" {
			return
		}
		obj := objects[i]
		switch {
		case decisions[i].Excluded:
			statuses[i] = synctypes.ObjectStatus{Key: obj.Key, State: synctypes.StateExcluded}
		case !decisions[i].NeedTransfer:
			statuses[i] = synctypes.ObjectStatus{Key: obj.Key, State: synctypes.StateSkipped}
		case e.cfg.Debug:
			statuses[i] = synctypes.ObjectStatus{Key: obj.Key, State: synctypes.StateTransferred}
		default:
			if err := e.getObject(ctx, obj.Key, path.Join(task.WorkingDir, relPaths[i])); err != nil {
				statuses[i] = synctypes.ObjectStatus{Key: obj.Key, State: synctypes.StateFailed}
				mu.Lock()
				objErrors = append(objErrors, synctypes.ObjectError{Key: obj.Key, Message: err.Error()})
				mu.Unlock()
				return
			}
			statuses[i] = synctypes.ObjectStatus{Key: obj.Key, State: synctypes.StateTransferred}
		}
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

// getObject fetches one object and writes its body to the local path,
// creating parent directories as needed.
func (e *Executor) getObject(ctx context.Context, key, localPath string) error {
	out, err := e.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return err
	}

	if dir := path.Dir(localPath); dir != "." && dir != "/" {
		if err := e.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return e.fs.WriteFile(localPath, body, 0o644)
}
