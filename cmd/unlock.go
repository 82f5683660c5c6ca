package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/shroud/internal/secrets"
	"github.com/PolarWolf314/shroud/internal/ui"
	"github.com/PolarWolf314/shroud/internal/utils"
	"github.com/PolarWolf314/shroud/internal/workflows"

	"github.com/spf13/cobra"
)

func init() {
	addPassphraseFlag(unlockCmd)
}

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Decrypt the profile into the plain directory",
	Long: `Decrypts every file in encrypted_dir into plain_dir. Plain files that
already exist are copied aside with backup_suffix first and put back by lock.

If there is no key pair yet and auto_generate is on, one is created with
the passphrase you enter.

The profile stays decrypted until you run shroud lock. Prefer shroud run,
which locks the profile again as soon as the program exits.`,
	Args: cobra.NoArgs,
	RunE: runUnlock,
}

// needsNewKey reports whether opening the profile will create a key pair,
// in which case the passphrase is confirmed.
func needsNewKey() bool {
	return env.Config.AutoGenerate && !secrets.NewKeyStore(env.Fs).Exists(env.Config.KeyPath)
}

func runUnlock(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting unlock command")

	passphrase, err := resolvePassphrase(needsNewKey())
	if err != nil {
		fmt.Println(formatError("unlock", err))
		return failure(err)
	}

	spinner, cleanup := startSpinner("Decrypting profile...")
	defer cleanup()

	result, err := workflows.Unlock(context.Background(), workflows.UnlockOptions{
		Environment: env,
		Passphrase:  passphrase,
	})
	if err != nil {
		msg := formatError("unlock", err)
		if result != nil && result.Report != nil && len(result.Report.Processed) > 0 {
			msg += "\n" + ui.Warning.Sprint("Warning: ") + "these files were already decrypted:" + utils.FormatPaths(result.Report.Processed) +
				ui.Hint("Run %s to encrypt them again", ui.Code.Sprint("shroud lock"))
		}
		spinner.FinalMSG = msg
		return failure(err)
	}

	Logger.Infof("Unlock command completed successfully")
	finalMessage := ""
	if result.Generated {
		finalMessage += ui.Done("Created a new key pair at %s", ui.Path.Sprint(env.Config.KeyPath)) + "\n"
	}
	finalMessage += ui.Done("Decrypted %d files into %s", len(result.Report.Processed), ui.Path.Sprint(env.Config.PlainDir)) + "\n"
	if n := len(result.Report.BackedUp); n > 0 {
		finalMessage += fmt.Sprintf("    %d existing files were backed up with suffix %s\n", n, ui.Code.Sprint(env.Config.BackupSuffix))
	}
	finalMessage += ui.Hint("Run %s when you are done", ui.Code.Sprint("shroud lock"))

	spinner.FinalMSG = finalMessage
	return nil
}
