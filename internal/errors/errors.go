package errors

import "errors"

// Cryptographic core errors.
var (
	// ErrKeyGeneration is returned when a key pair cannot be generated,
	// typically because the requested modulus size is too small.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrFileNotFound is returned when a key file or source file is missing.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidKey is returned when key material cannot be parsed. A wrong
	// passphrase on a protected private key surfaces as this error.
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidCiphertext is returned when the wrapped-key prefix of an
	// artifact is truncated or does not unwrap.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")

	// ErrPayloadTooLarge is returned when a symmetric key is too long to be
	// wrapped by the given public key.
	ErrPayloadTooLarge = errors.New("payload too large for key")

	// ErrIO is returned for read, write and permission failures.
	ErrIO = errors.New("i/o error")
)

// Orchestration errors.
var (
	ErrPassphraseRequired   = errors.New("passphrase required")
	ErrPassphraseMismatch   = errors.New("passphrases do not match")
	ErrKeysExist            = errors.New("key files already exist")
	ErrConfigExists         = errors.New("config file already exists")
	ErrProfileNotConfigured = errors.New("profile not configured")
	ErrNoFilesFound         = errors.New("no files found")
	ErrProcessFailed        = errors.New("program failed")
)
