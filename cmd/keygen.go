package cmd

import (
	"context"
	"errors"
	"fmt"

	kerrors "github.com/PolarWolf314/shroud/internal/errors"
	"github.com/PolarWolf314/shroud/internal/secrets"
	"github.com/PolarWolf314/shroud/internal/ui"
	"github.com/PolarWolf314/shroud/internal/utils"
	"github.com/PolarWolf314/shroud/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	keygenForce  bool
	keygenImport string
)

func init() {
	keygenCmd.Flags().BoolVarP(&keygenForce, "force", "f", false, "overwrite an existing key pair")
	keygenCmd.Flags().StringVar(&keygenImport, "import", "", "adopt an existing RSA private key (OpenSSH or PEM) instead of generating one")
	addPassphraseFlag(keygenCmd)
}

// resetKeygenCommandState resets the keygen command's global state for testing.
func resetKeygenCommandState() {
	keygenForce = false
	keygenImport = ""
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Create the RSA key pair that protects the profile",
	Long: `Creates an RSA key pair at key_path. The public key is written to
<key_path>.pub; the private key is encrypted under your passphrase.

An existing key can be imported with --import, for example an OpenSSH key
from ~/.ssh. Its own passphrase is asked for if it has one.

Examples:
  shroud keygen
  shroud keygen --no-passphrase
  shroud keygen --import ~/.ssh/id_rsa
  shroud keygen --force --key-bits 4096`,
	Args: cobra.NoArgs,
	RunE: runKeygen,
}

func runKeygen(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting keygen command")

	if !keygenForce && env.Config.KeyPath != "" {
		if secrets.NewKeyStore(env.Fs).Exists(env.Config.KeyPath) {
			// Fail before prompting for a passphrase that would be thrown away.
			fmt.Println(formatKeygenError(kerrors.ErrKeysExist))
			return reported
		}
	}

	passphrase, err := resolvePassphrase(true)
	if err != nil {
		fmt.Println(formatError("create the key pair", err))
		return failure(err)
	}

	spinner, cleanup := startSpinner("Creating key pair...")
	defer cleanup()

	opts := workflows.KeygenOptions{
		Environment: env,
		Passphrase:  passphrase,
		ImportPath:  keygenImport,
		Force:       keygenForce,
	}

	result, err := workflows.Keygen(context.Background(), opts)
	if errors.Is(err, kerrors.ErrPassphraseRequired) && keygenImport != "" && utils.IsTerminal() {
		spinner.Stop()
		importPassphrase, readErr := utils.ReadPassphrase("Passphrase for " + keygenImport + ": ")
		if !verbose && !debug {
			spinner.Restart()
		}
		if readErr != nil {
			err = readErr
		} else {
			defer clear(importPassphrase)
			opts.ImportPassphrase = importPassphrase
			result, err = workflows.Keygen(context.Background(), opts)
		}
	}
	if err != nil {
		spinner.FinalMSG = formatKeygenError(err)
		return failure(err)
	}

	Logger.Infof("Keygen command completed successfully")
	verb := "Created"
	if result.Imported {
		verb = "Imported"
	}
	finalMessage := ui.Done("%s a %d-bit key pair", verb, result.Bits) + "\n" +
		"    private key: " + ui.Path.Sprint(result.KeyPath) + "\n" +
		"    public key:  " + ui.Path.Sprint(result.PublicKeyPath) + "\n"
	if !result.Protected {
		finalMessage += ui.Warning.Sprint("Warning: ") + "the private key is stored without a passphrase\n"
	}
	finalMessage += ui.Hint("Run %s to open the profile", ui.Code.Sprint("shroud run"))

	spinner.FinalMSG = finalMessage
	return nil
}

func formatKeygenError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrKeysExist):
		return ui.Failed("A key pair already exists at %s", ui.Path.Sprint(env.Config.KeyPath)) + "\n" +
			ui.Hint("To replace it, run %s", ui.Code.Sprint("shroud keygen --force")) + "\n" +
			ui.Warning.Sprint("Warning: ") + "files encrypted for the old key can no longer be decrypted"

	case errors.Is(err, kerrors.ErrKeyGeneration):
		return ui.Failed("Key generation failed: %s", err.Error()) + "\n" +
			ui.Hint("Use %s of at least 1024", ui.Flag.Sprint("--key-bits"))

	case errors.Is(err, kerrors.ErrPassphraseRequired) && keygenImport != "":
		return ui.Failed("%s is protected by a passphrase", ui.Path.Sprint(keygenImport)) + "\n" +
			ui.Hint("Run the command in a terminal to enter it")

	case errors.Is(err, kerrors.ErrFileNotFound) && keygenImport != "":
		return ui.Failed("Key to import not found: %s", ui.Path.Sprint(keygenImport))

	case errors.Is(err, kerrors.ErrInvalidKey) && keygenImport != "":
		return ui.Failed("Could not import %s: %s", ui.Path.Sprint(keygenImport), err.Error())

	default:
		return formatError("create the key pair", err)
	}
}
