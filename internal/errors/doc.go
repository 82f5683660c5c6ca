// Package errors defines the sentinel errors returned by shroud.
//
// Lower layers wrap these with context using fmt.Errorf and the %w verb, so
// callers match on them with errors.Is rather than by string.
//
// # Error Categories
//
//   - Key errors: ErrKeyGeneration, ErrInvalidKey, ErrKeysExist
//   - Artifact errors: ErrInvalidCiphertext, ErrPayloadTooLarge
//   - File errors: ErrFileNotFound, ErrIO, ErrNoFilesFound, ErrConfigExists
//   - Session errors: ErrPassphraseRequired, ErrPassphraseMismatch,
//     ErrProfileNotConfigured, ErrProcessFailed
//
// # Usage
//
// Wrap a sentinel with the details of what failed:
//
//	return fmt.Errorf("%w: %s: %v", kerrors.ErrIO, path, err)
//
// Handle errors in the CLI layer:
//
//	result, err := workflows.Unlock(ctx, opts)
//	if errors.Is(err, kerrors.ErrInvalidKey) {
//	    // Wrong passphrase or a corrupted private key file.
//	}
//
// Import this package as kerrors to avoid shadowing the standard library.
package errors
