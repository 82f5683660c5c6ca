package configs

import (
	"fmt"

	kerrors "github.com/PolarWolf314/shroud/internal/errors"
	"github.com/PolarWolf314/shroud/internal/utils"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

// ResolveFile picks the config file to load. An explicit path must exist.
// Otherwise shroud.toml is searched for from dir upwards, and an empty path
// means none was found.
func ResolveFile(fs afero.Fs, explicit, dir string) (string, error) {
	if explicit != "" {
		exists, err := afero.Exists(fs, explicit)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", kerrors.ErrIO, explicit, err)
		}
		if !exists {
			return "", fmt.Errorf("%w: config file %s", kerrors.ErrFileNotFound, explicit)
		}
		return explicit, nil
	}

	return utils.FindUp(fs, dir, FileName)
}

// Sources returns the standard chain in precedence order: the config file
// when configPath is set, then the environment, then flags.
func Sources(fs afero.Fs, configPath string, flagSet *pflag.FlagSet) []*Source {
	var sources []*Source
	if configPath != "" {
		sources = append(sources, NewTOMLFileSource(fs, configPath))
	}
	sources = append(sources, NewEnvVarSource())
	if flagSet != nil {
		sources = append(sources, NewPFlagSource(flagSet))
	}
	return sources
}
