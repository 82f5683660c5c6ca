package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/shroud/internal/ui"
	"github.com/PolarWolf314/shroud/internal/workflows"

	"github.com/spf13/cobra"
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Encrypt the plain profile and remove the plain files",
	Long: `Encrypts every profile file in plain_dir back into encrypted_dir with the
public key, then deletes the plain copy. Backups made by unlock are put back.

Locking only needs the public key, so no passphrase is asked for.`,
	Args: cobra.NoArgs,
	RunE: runLock,
}

func runLock(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting lock command")
	spinner, cleanup := startSpinner("Encrypting profile...")
	defer cleanup()

	result, err := workflows.Lock(context.Background(), workflows.LockOptions{Environment: env})
	if err != nil {
		spinner.FinalMSG = formatError("lock", err)
		return failure(err)
	}

	Logger.Infof("Lock command completed successfully")
	finalMessage := ui.Done("Encrypted %d files into %s", len(result.Report.Processed), ui.Path.Sprint(env.Config.EncryptedDir)) + "\n"
	if n := len(result.Report.Restored); n > 0 {
		finalMessage += fmt.Sprintf("    %d plain files were restored from backup\n", n)
	}
	if len(result.Report.Processed) == 0 {
		finalMessage += ui.Hint("Nothing was unlocked; run %s first", ui.Code.Sprint("shroud unlock"))
	}

	spinner.FinalMSG = finalMessage
	return nil
}
