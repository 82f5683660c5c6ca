package cmd

import (
	"context"
	"errors"

	"github.com/PolarWolf314/shroud/internal/configs"
	kerrors "github.com/PolarWolf314/shroud/internal/errors"
	"github.com/PolarWolf314/shroud/internal/ui"
	"github.com/PolarWolf314/shroud/internal/workflows"

	"github.com/spf13/cobra"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
}

// resetInitCommandState resets the init command's global state for testing.
func resetInitCommandState() {
	initForce = false
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a shroud.toml with the current settings",
	Long: `Writes the configuration shroud would use right now, including any
flags and SHROUD_* variables, to shroud.toml in the working directory (or
the path given with --config) so it can be edited.

Relative paths in the file are resolved against the directory it is in.

Examples:
  shroud init
  shroud init --program firefox --plain-dir profile`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting init command")
		spinner, cleanup := startSpinner("Writing " + configs.FileName + "...")
		defer cleanup()

		result, err := workflows.Init(context.Background(), workflows.InitOptions{
			Environment: workflows.Environment{Fs: env.Fs, Config: fileConfig, Logger: Logger},
			Path:        configPath,
			Force:       initForce,
		})
		if err != nil {
			if errors.Is(err, kerrors.ErrConfigExists) {
				spinner.FinalMSG = ui.Failed("%s already exists", ui.Path.Sprint(pathOrDefault(configPath))) + "\n" +
					ui.Hint("To overwrite it, run %s", ui.Code.Sprint("shroud init --force"))
				return reported
			}
			spinner.FinalMSG = formatError("write the config file", err)
			return failure(err)
		}

		Logger.Infof("Init command completed successfully")
		spinner.FinalMSG = ui.Done("Wrote %s", ui.Path.Sprint(result.Path)) + "\n" +
			ui.Hint("Run %s to create your key pair", ui.Code.Sprint("shroud keygen"))
		return nil
	},
}

func pathOrDefault(path string) string {
	if path == "" {
		return configs.FileName
	}
	return path
}
