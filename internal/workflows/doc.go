// Package workflows provides high-level orchestration for shroud commands.
//
// Workflows coordinate the configs, secrets, profile, process and audit
// packages to implement complete user-facing features. Each workflow handles
// a single command's business logic, independent of CLI concerns like flag
// parsing, prompts, spinners and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Reads passphrases
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Resolving paths from the loaded configuration
//   - Loading or generating key pairs
//   - Performing the core operation
//   - Recording audit trail entries
//
// # Available Workflows
//
//   - Keygen: Generates or imports the key pair
//   - Unlock: Decrypts the profile, generating keys on first use
//   - Lock: Encrypts the profile with the public key only
//   - Run: Unlock, run the program, then Lock no matter how it ended
//   - EncryptOne, DecryptOne: Single-file encryption
//   - Init: Writes a shroud.toml
//   - Log: Reads the audit trail
//
// # Error Handling
//
// Workflows return sentinel errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching:
//
//	result, err := workflows.Unlock(ctx, opts)
//	if errors.Is(err, kerrors.ErrInvalidKey) {
//	    // Wrong passphrase
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// Cancelling it stops file processing between files and terminates a running
// program; Run still locks the profile afterwards.
package workflows
