package cmd

import (
	"context"
	"errors"
	"fmt"

	kerrors "github.com/PolarWolf314/shroud/internal/errors"
	"github.com/PolarWolf314/shroud/internal/ui"
	"github.com/PolarWolf314/shroud/internal/workflows"

	"github.com/spf13/cobra"
)

func init() {
	addPassphraseFlag(decryptCmd)
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt <source> <destination>",
	Short: "Encrypt a single file with the public key",
	Long: `Encrypts source into destination with the public key at key_path.
The source is left in place. No passphrase is needed.

Example:
  shroud encrypt notes.txt notes.txt.enc`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting encrypt command")
		spinner, cleanup := startSpinner("Encrypting " + args[0] + "...")
		defer cleanup()

		result, err := workflows.EncryptOne(context.Background(), workflows.FileOptions{
			Environment: env,
			Source:      args[0],
			Destination: args[1],
		})
		if err != nil {
			spinner.FinalMSG = formatFileError("encrypt", args[0], err)
			return failure(err)
		}

		spinner.FinalMSG = ui.Done("Encrypted %s to %s", ui.Path.Sprint(result.Source), ui.Path.Sprint(result.Destination))
		return nil
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt <source> <destination>",
	Short: "Decrypt a single file with the private key",
	Long: `Decrypts source, written by shroud encrypt or lock, into destination
with the key pair at key_path.

Example:
  shroud decrypt notes.txt.enc notes.txt`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting decrypt command")

		passphrase, err := resolvePassphrase(false)
		if err != nil {
			fmt.Println(formatError("decrypt", err))
			return failure(err)
		}

		spinner, cleanup := startSpinner("Decrypting " + args[0] + "...")
		defer cleanup()

		result, err := workflows.DecryptOne(context.Background(), workflows.FileOptions{
			Environment: env,
			Source:      args[0],
			Destination: args[1],
			Passphrase:  passphrase,
		})
		if err != nil {
			spinner.FinalMSG = formatFileError("decrypt", args[0], err)
			return failure(err)
		}

		spinner.FinalMSG = ui.Done("Decrypted %s to %s", ui.Path.Sprint(result.Source), ui.Path.Sprint(result.Destination))
		return nil
	},
}

func formatFileError(action, source string, err error) string {
	if errors.Is(err, kerrors.ErrFileNotFound) {
		// err names whichever file is missing, the source or a key.
		return ui.Failed("Failed to %s %s: %s", action, ui.Path.Sprint(source), err.Error())
	}
	return formatError(action+" "+source, err)
}
