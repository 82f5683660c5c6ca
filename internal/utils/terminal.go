package utils

import (
	"bytes"
	"fmt"
	"os"

	kerrors "github.com/PolarWolf314/shroud/internal/errors"

	"golang.org/x/term"
)

// PassphraseEnv holds a passphrase for non-interactive use.
const PassphraseEnv = "SHROUD_PASSPHRASE"

// ReadPassphrase prompts the user for a passphrase without echoing input.
// Returns an error if stdin is not a terminal.
func ReadPassphrase(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%w: stdin is not a terminal (set %s)", kerrors.ErrPassphraseRequired, PassphraseEnv)
	}

	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}

	return passphrase, nil
}

// ReadNewPassphrase prompts twice and fails with ErrPassphraseMismatch when
// the entries differ.
func ReadNewPassphrase(prompt, confirmPrompt string) ([]byte, error) {
	first, err := ReadPassphrase(prompt)
	if err != nil {
		return nil, err
	}
	second, err := ReadPassphrase(confirmPrompt)
	if err != nil {
		return nil, err
	}
	defer clear(second)

	if !bytes.Equal(first, second) {
		clear(first)
		return nil, kerrors.ErrPassphraseMismatch
	}
	return first, nil
}

// PassphraseFromEnv returns the passphrase set in SHROUD_PASSPHRASE, or nil
// when the variable is unset. An empty value is a valid passphrase.
func PassphraseFromEnv() *string {
	value, ok := os.LookupEnv(PassphraseEnv)
	if !ok {
		return nil
	}
	return &value
}

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
