package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	kerrors "github.com/PolarWolf314/shroud/internal/errors"
	"github.com/PolarWolf314/shroud/internal/ui"
	"github.com/PolarWolf314/shroud/internal/utils"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

// noPassphrase is shared by every command that stores or opens the private
// key.
var noPassphrase bool

func addPassphraseFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&noPassphrase, "no-passphrase", false, "store or open the private key without a passphrase")
}

func resetPassphraseState() {
	noPassphrase = false
}

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		// If we can't set spinner color, just continue without it.
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stderr)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// resolvePassphrase returns the passphrase for the private key, or nil when
// it is stored unencrypted. SHROUD_PASSPHRASE wins over the prompt. An empty
// answer at the prompt also means no passphrase, so a key saved under an
// empty passphrase opens only with SHROUD_PASSPHRASE="". newKey asks twice.
func resolvePassphrase(newKey bool) (*string, error) {
	if noPassphrase {
		Logger.Debugf("Passphrase disabled by --no-passphrase")
		return nil, nil
	}
	if p := utils.PassphraseFromEnv(); p != nil {
		Logger.Debugf("Using passphrase from %s", utils.PassphraseEnv)
		return p, nil
	}

	var raw []byte
	var err error
	if newKey {
		raw, err = utils.ReadNewPassphrase("New passphrase (empty for none): ", "Confirm passphrase: ")
	} else {
		raw, err = utils.ReadPassphrase("Passphrase (empty for none): ")
	}
	if err != nil {
		return nil, err
	}
	defer clear(raw)

	if len(raw) == 0 {
		return nil, nil
	}
	passphrase := string(raw)
	return &passphrase, nil
}

// formatError renders the failures every workflow can return.
func formatError(action string, err error) string {
	switch {
	case errors.Is(err, kerrors.ErrPassphraseMismatch):
		return ui.Failed("Passphrases do not match") + "\n" +
			ui.Hint("Run the command again and enter the same passphrase twice")

	case errors.Is(err, kerrors.ErrPassphraseRequired):
		return ui.Failed("A passphrase is required but cannot be prompted for") + "\n" +
			ui.Hint("Set %s, or pass %s if the key is unprotected",
				ui.Code.Sprint(utils.PassphraseEnv), ui.Flag.Sprint("--no-passphrase"))

	case errors.Is(err, kerrors.ErrInvalidKey):
		return ui.Failed("Could not open the private key. Is the passphrase right?") + "\n" +
			ui.Hint("Use %s if the key was stored without one", ui.Flag.Sprint("--no-passphrase")) + "\n" +
			ui.Hint("A key saved with an empty passphrase opens only with %s", ui.Code.Sprint(utils.PassphraseEnv+`=""`)) + "\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrFileNotFound):
		return ui.Failed("Failed to %s: %s", action, err.Error()) + "\n" +
			ui.Hint("Run %s to create a key pair", ui.Code.Sprint("shroud keygen"))

	case errors.Is(err, kerrors.ErrInvalidCiphertext):
		return ui.Failed("Failed to %s: an encrypted file is damaged or was encrypted for another key", action) + "\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrProfileNotConfigured):
		return ui.Failed("No profile directories found") + "\n" +
			ui.Hint("Check %s and %s in %s, or run %s",
				ui.Code.Sprint("encrypted_dir"), ui.Code.Sprint("plain_dir"),
				ui.Path.Sprint("shroud.toml"), ui.Code.Sprint("shroud init"))

	case errors.Is(err, kerrors.ErrNoFilesFound):
		return ui.Failed("No profile files to %s", action)

	default:
		return ui.Failed("Failed to %s: %s", action, err.Error())
	}
}

// isExpectedError returns true if err is a user-facing condition rather than
// a bug or system failure.
func isExpectedError(err error) bool {
	for _, target := range []error{
		kerrors.ErrPassphraseMismatch,
		kerrors.ErrPassphraseRequired,
		kerrors.ErrInvalidKey,
		kerrors.ErrFileNotFound,
		kerrors.ErrInvalidCiphertext,
		kerrors.ErrProfileNotConfigured,
		kerrors.ErrNoFilesFound,
		kerrors.ErrKeysExist,
		kerrors.ErrConfigExists,
		kerrors.ErrKeyGeneration,
		kerrors.ErrProcessFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// failure turns a displayed error into the command's return value.
func failure(err error) error {
	if isExpectedError(err) {
		return reported
	}
	return err
}
