package s3sync

import (
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"gopkg.in/yaml.v3"

	syncerrors "github.com/brownmestizo/grunt-aws-s3/errors"
	"github.com/brownmestizo/grunt-aws-s3/synctypes"
)

// specFile is the YAML document shape for a declarative spec file.
type specFile struct {
	Specs []specEntry `yaml:"specs"`
}

// specEntry is one sync spec in file form.
type specEntry struct {
	Action       string            `yaml:"action"`
	Cwd          string            `yaml:"cwd"`
	Src          []string          `yaml:"src"`
	Dest         string            `yaml:"dest"`
	Exclude      string            `yaml:"exclude"`
	FlipExclude  bool              `yaml:"flipExclude"`
	Differential *bool             `yaml:"differential"`
	Params       map[string]string `yaml:"params"`
}

// LoadSpecs reads a YAML spec file and returns its sync specs in file order.
// Actions and destinations are validated during planning, not here; the only
// errors raised are file and YAML syntax problems.
func LoadSpecs(filesystem fs.Filesystem, path string) ([]synctypes.SyncSpec, error) {
	data, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, syncerrors.NewError("loadSpecs", syncerrors.ErrLocalIO).
			WithKey(path).
			WithMessage(err.Error())
	}

	var file specFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, syncerrors.NewConfigError("loadSpecs", err.Error())
	}

	specs := make([]synctypes.SyncSpec, 0, len(file.Specs))
	for _, entry := range file.Specs {
		specs = append(specs, synctypes.SyncSpec{
			Action:         synctypes.Action(entry.Action),
			SourcePaths:    entry.Src,
			DestPrefix:     entry.Dest,
			WorkingDir:     entry.Cwd,
			ExcludePattern: entry.Exclude,
			FlipExclude:    entry.FlipExclude,
			Differential:   entry.Differential,
			Params:         entry.Params,
		})
	}
	return specs, nil
}
