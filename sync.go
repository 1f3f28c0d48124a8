package s3sync

import (
	"context"

	syncerrors "github.com/brownmestizo/grunt-aws-s3/errors"
	"github.com/brownmestizo/grunt-aws-s3/internal/planner"
	"github.com/brownmestizo/grunt-aws-s3/synctypes"
)

// Plan expands the given sync specs into the ordered task list Run would
// execute, without touching the store. Consecutive upload specs coalesce
// into one task; configuration errors surface here.
func (c *Client) Plan(specs []synctypes.SyncSpec) ([]synctypes.Task, error) {
	return c.planner.Plan(specs, planner.Defaults{
		Differential: c.cfg.Differential,
		Params:       c.cfg.DefaultParams,
	})
}

// Run plans and executes the given sync specs.
//
// Tasks run strictly in planning order, one at a time; concurrency lives
// inside each task's object pool, never across tasks. The first fatal error
// (bad configuration, listing failure) aborts the run and returns the results
// of the tasks already completed alongside the error. A task that completes
// with per-object failures also aborts the run: its result is included and
// the returned error wraps ErrTaskFailed.
func (c *Client) Run(ctx context.Context, specs []synctypes.SyncSpec) ([]synctypes.Result, error) {
	tasks, err := c.Plan(specs)
	if err != nil {
		return nil, err
	}

	results := make([]synctypes.Result, 0, len(tasks))
	for _, task := range tasks {
		result, err := c.executor.Execute(ctx, task)
		if err != nil {
			return results, err
		}
		results = append(results, *result)
		if result.Failed() {
			return results, syncerrors.NewError("run", syncerrors.ErrTaskFailed).
				WithBucket(c.cfg.Bucket).
				WithMessage(result.Summary())
		}
	}
	return results, nil
}
