// Package planner converts declarative sync specs into an ordered sequence
// of homogeneous task units.
//
// Consecutive upload specs coalesce into a single upload task so the
// downstream differential listing happens once per contiguous run of uploads
// rather than once per file pair. All configuration errors are raised here,
// before any network activity.
package planner

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	syncerrors "github.com/brownmestizo/grunt-aws-s3/errors"
	"github.com/brownmestizo/grunt-aws-s3/internal/keymap"
	"github.com/brownmestizo/grunt-aws-s3/internal/validation"
	"github.com/brownmestizo/grunt-aws-s3/synctypes"
)

// Defaults carries the client-level settings specs inherit when silent.
type Defaults struct {
	// Differential is the global differential default
	Differential bool

	// Params are the default transfer parameters, already allow-list
	// validated by the client
	Params map[string]string
}

// Planner expands sync specs into tasks.
type Planner struct {
	fs fs.Filesystem
}

// New creates a planner resolving local sources through the given filesystem.
func New(filesystem fs.Filesystem) *Planner {
	return &Planner{fs: filesystem}
}

// Plan produces the ordered task list for the given specs.
func (p *Planner) Plan(specs []synctypes.SyncSpec, defaults Defaults) ([]synctypes.Task, error) {
	var tasks []synctypes.Task
	var pending []synctypes.UploadItem

	flush := func() {
		if len(pending) > 0 {
			tasks = append(tasks, synctypes.Task{Kind: synctypes.TaskUpload, Items: pending})
			pending = nil
		}
	}

	for i := range specs {
		spec := &specs[i]
		switch spec.Action {
		case synctypes.ActionUpload:
			items, err := p.expandUpload(spec, defaults)
			if err != nil {
				return nil, err
			}
			pending = append(pending, items...)

		case synctypes.ActionDelete:
			flush()
			task, err := deleteTask(spec, defaults)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, task)

		case synctypes.ActionDownload:
			flush()
			task, err := downloadTask(spec, defaults)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, task)

		default:
			return nil, syncerrors.NewConfigError("plan", "unknown action "+string(spec.Action))
		}
	}
	flush()

	return tasks, nil
}

// expandUpload turns one upload spec into its per-file items.
func (p *Planner) expandUpload(spec *synctypes.SyncSpec, defaults Defaults) ([]synctypes.UploadItem, error) {
	if err := validation.ValidateParams(spec.Params); err != nil {
		return nil, err
	}
	if keymap.IsRoot(spec.DestPrefix) {
		// Root destinations contribute no objects; placeholder "empty
		// directory" objects are never created.
		return nil, nil
	}

	params := mergeParams(defaults.Params, spec.Params)
	differential := resolveBool(spec.Differential, defaults.Differential)

	var items []synctypes.UploadItem
	for _, src := range spec.SourcePaths {
		files, err := p.expandSource(spec.WorkingDir, src)
		if err != nil {
			return nil, err
		}
		for _, rel := range files {
			key := keymap.RemoteKey(rel, spec.DestPrefix)
			if key == "" {
				continue
			}
			items = append(items, synctypes.UploadItem{
				LocalPath:    joinLocal(spec.WorkingDir, rel),
				RemoteKey:    key,
				Params:       params,
				Differential: differential,
				NeedTransfer: true,
			})
		}
	}
	return items, nil
}

// expandSource resolves one source path to the relative file paths it names.
// A directory source walks recursively; a plain file names itself.
func (p *Planner) expandSource(workingDir, src string) ([]string, error) {
	full := joinLocal(workingDir, src)

	info, err := p.fs.Stat(full)
	if err != nil {
		return nil, syncerrors.NewError("plan", syncerrors.ErrLocalIO).
			WithKey(full).
			WithMessage(err.Error())
	}

	if !info.IsDir() {
		return []string{normalize(src)}, nil
	}

	var files []string
	err = p.fs.Walk(full, func(walked string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		files = append(files, relativeTo(workingDir, walked))
		return nil
	})
	if err != nil {
		return nil, syncerrors.NewError("plan", syncerrors.ErrLocalIO).
			WithKey(full).
			WithMessage(err.Error())
	}
	return files, nil
}

func deleteTask(spec *synctypes.SyncSpec, defaults Defaults) (synctypes.Task, error) {
	if spec.DestPrefix == "" {
		return synctypes.Task{}, syncerrors.NewConfigError("plan", "delete spec requires a destination")
	}
	if keymap.IsRoot(spec.DestPrefix) {
		return synctypes.Task{}, syncerrors.NewConfigError("plan", "refusing to delete the store root")
	}
	differential := resolveBool(spec.Differential, defaults.Differential)
	if differential && spec.WorkingDir == "" {
		return synctypes.Task{}, syncerrors.NewConfigError("plan", "differential delete requires a working directory")
	}
	return synctypes.Task{
		Kind:           synctypes.TaskDelete,
		DestPrefix:     spec.DestPrefix,
		WorkingDir:     spec.WorkingDir,
		ExcludePattern: spec.ExcludePattern,
		FlipExclude:    spec.FlipExclude,
		Differential:   differential,
	}, nil
}

func downloadTask(spec *synctypes.SyncSpec, defaults Defaults) (synctypes.Task, error) {
	if spec.DestPrefix == "" {
		return synctypes.Task{}, syncerrors.NewConfigError("plan", "download spec requires a destination")
	}
	if spec.WorkingDir == "" {
		return synctypes.Task{}, syncerrors.NewConfigError("plan", "download spec requires a working directory")
	}
	if len(spec.SourcePaths) > 0 {
		return synctypes.Task{}, syncerrors.NewConfigError("plan", "download spec must not specify sources")
	}
	return synctypes.Task{
		Kind:           synctypes.TaskDownload,
		DestPrefix:     spec.DestPrefix,
		WorkingDir:     spec.WorkingDir,
		ExcludePattern: spec.ExcludePattern,
		FlipExclude:    spec.FlipExclude,
		Differential:   resolveBool(spec.Differential, defaults.Differential),
	}, nil
}

// mergeParams overlays spec params on task defaults, spec values winning.
func mergeParams(defaults, overrides map[string]string) map[string]string {
	if len(defaults) == 0 && len(overrides) == 0 {
		return nil
	}
	merged := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

func resolveBool(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}

func normalize(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(p), "./")
}

func joinLocal(workingDir, p string) string {
	if workingDir == "" || path.IsAbs(p) {
		return normalize(p)
	}
	return path.Join(normalize(workingDir), normalize(p))
}

// relativeTo strips the working directory from a walked path, leaving the
// spec-relative form keys are derived from.
func relativeTo(workingDir, walked string) string {
	walked = normalize(walked)
	if workingDir == "" {
		return walked
	}
	base := normalize(workingDir)
	return strings.TrimPrefix(strings.TrimPrefix(walked, base), "/")
}
