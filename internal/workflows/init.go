package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/shroud/internal/configs"
	kerrors "github.com/PolarWolf314/shroud/internal/errors"

	"github.com/spf13/afero"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	Environment

	// Path of the config file to write. Defaults to shroud.toml.
	Path string

	// Force overwrites an existing file.
	Force bool
}

// InitResult names the config file written.
type InitResult struct {
	Path string
}

// Init writes the current configuration to a shroud.toml so it can be edited.
//
// Returns ErrConfigExists if the file exists and Force is unset.
func Init(ctx context.Context, opts InitOptions) (*InitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := opts.Path
	if path == "" {
		path = configs.FileName
	}

	exists, err := afero.Exists(opts.fs(), path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", kerrors.ErrIO, path, err)
	}
	if exists && !opts.Force {
		return nil, fmt.Errorf("%w: %s already exists", kerrors.ErrConfigExists, path)
	}

	if err := configs.SaveTOML(opts.fs(), path, opts.Config); err != nil {
		return nil, fmt.Errorf("%w: failed to write %s: %v", kerrors.ErrIO, path, err)
	}

	opts.Logger.Infof("Wrote %s", path)
	return &InitResult{Path: path}, nil
}
