package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"

	"github.com/brownmestizo/grunt-aws-s3/internal/keymap"
	"github.com/brownmestizo/grunt-aws-s3/internal/patterns"
	"github.com/brownmestizo/grunt-aws-s3/synctypes"
)

// maxDeleteBatch is the store's cap on keys per batch delete request.
const maxDeleteBatch = 1000

// executeDelete runs a delete task: list the prefix, decide per object, then
// submit the candidate keys in concurrent slices of at most 1000, merging the
// per-slice outcomes back into one ordered list.
func (e *Executor) executeDelete(ctx context.Context, task synctypes.Task) (*synctypes.Result, error) {
	started := time.Now()

	objects, err := e.lister.ListAll(ctx, e.cfg.Bucket, task.DestPrefix)
	if err != nil {
		return nil, err
	}

	result := &synctypes.Result{
		Kind:  synctypes.TaskDelete,
		Total: len(objects),
	}

	var local map[string]bool
	if task.Differential {
		local, err = e.localExistenceSet(task.WorkingDir)
		if err != nil {
			return nil, err
		}
	}

	matcher := patterns.New(task.ExcludePattern, task.FlipExclude)
	var deleteKeys []string
	for _, obj := range objects {
		rel := keymap.LocalRelativePath(obj.Key, task.DestPrefix)

		decision := synctypes.Decision{NeedTransfer: true, Excluded: matcher.Excluded(rel)}
		if task.Differential && !decision.Excluded {
			decision.NeedTransfer = !local[rel]
		}

		switch {
		case decision.Excluded:
			result.Excluded++
			result.Objects = append(result.Objects, synctypes.ObjectStatus{Key: obj.Key, State: synctypes.StateExcluded})
		case !decision.NeedTransfer:
			result.Skipped++
			result.Objects = append(result.Objects, synctypes.ObjectStatus{Key: obj.Key, State: synctypes.StateSkipped})
		default:
			deleteKeys = append(deleteKeys, obj.Key)
		}
	}

	if len(deleteKeys) == 0 {
		result.Duration = time.Since(started)
		return result, nil
	}

	if e.cfg.Debug {
		for _, key := range deleteKeys {
			result.Objects = append(result.Objects, synctypes.ObjectStatus{Key: key, State: synctypes.StateTransferred})
		}
		result.Transferred = len(deleteKeys)
		result.Duration = time.Since(started)
		return result, nil
	}

	outcomes := e.deleteSlices(ctx, deleteKeys)
	for _, outcome := range outcomes {
		result.Objects = append(result.Objects, outcome.statuses...)
		result.Errors = append(result.Errors, outcome.errors...)
		result.Transferred += outcome.deleted
	}
	result.Duration = time.Since(started)
	return result, nil
}

// sliceOutcome holds one delete slice's merged results, kept slice-ordered so
// the combined list stays index-compatible with the candidate list.
type sliceOutcome struct {
	statuses []synctypes.ObjectStatus
	errors   []synctypes.ObjectError
	deleted  int
}

// deleteSlices partitions the keys into batches of at most 1000 and submits
// every batch concurrently, one network call per slice. Failures in one slice
// never cancel the others; all outcomes are collected.
func (e *Executor) deleteSlices(ctx context.Context, keys []string) []sliceOutcome {
	sliceCount := (len(keys) + maxDeleteBatch - 1) / maxDeleteBatch
	outcomes := make([]sliceOutcome, sliceCount)

	var g errgroup.Group
	for s := 0; s < sliceCount; s++ {
		start := s * maxDeleteBatch
		end := start + maxDeleteBatch
		if end > len(keys) {
			end = len(keys)
		}
		slice := keys[start:end]
		s := s

		g.Go(func() error {
			outcomes[s] = e.deleteSlice(ctx, slice)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// deleteSlice submits one batch delete call and classifies every key in it.
func (e *Executor) deleteSlice(ctx context.Context, keys []string) sliceOutcome {
	identifiers := make([]awstypes.ObjectIdentifier, 0, len(keys))
	for i := range keys {
		identifiers = append(identifiers, awstypes.ObjectIdentifier{Key: aws.String(keys[i])})
	}

	out, err := e.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(e.cfg.Bucket),
		Delete: &awstypes.Delete{Objects: identifiers},
	})
	if err != nil {
		// The whole slice failed; every key in it is reported.
		outcome := sliceOutcome{}
		for _, key := range keys {
			outcome.statuses = append(outcome.statuses, synctypes.ObjectStatus{Key: key, State: synctypes.StateFailed})
			outcome.errors = append(outcome.errors, synctypes.ObjectError{Key: key, Message: err.Error()})
		}
		return outcome
	}

	failed := make(map[string]string, len(out.Errors))
	for _, delErr := range out.Errors {
		failed[aws.ToString(delErr.Key)] = aws.ToString(delErr.Message)
	}

	outcome := sliceOutcome{}
	for _, key := range keys {
		if msg, bad := failed[key]; bad {
			outcome.statuses = append(outcome.statuses, synctypes.ObjectStatus{Key: key, State: synctypes.StateFailed})
			outcome.errors = append(outcome.errors, synctypes.ObjectError{Key: key, Message: msg})
			continue
		}
		outcome.statuses = append(outcome.statuses, synctypes.ObjectStatus{Key: key, State: synctypes.StateTransferred})
		outcome.deleted++
	}
	return outcome
}

// localExistenceSet walks the working directory and records every file's
// slash-normalized relative path for the differential decision.
func (e *Executor) localExistenceSet(workingDir string) (map[string]bool, error) {
	set := make(map[string]bool)

	err := e.fs.Walk(workingDir, func(walked string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel := strings.TrimPrefix(filepath.ToSlash(walked), filepath.ToSlash(workingDir))
		rel = strings.TrimPrefix(rel, "/")
		set[rel] = true
		return nil
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return set, nil
		}
		return nil, err
	}
	return set, nil
}
