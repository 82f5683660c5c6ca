// Package utils provides small helpers shared by the shroud commands.
//
// # Filesystem Utilities
//
//   - FindUp: finds the nearest shroud.toml from a directory upwards
//   - FormatPaths: formats file paths for human-readable output
//
// # Terminal Utilities
//
//   - ReadPassphrase: reads a passphrase without echo
//   - ReadNewPassphrase: reads and confirms a new passphrase
//   - PassphraseFromEnv: reads SHROUD_PASSPHRASE for scripted use
//   - IsTerminal: checks whether stdin is a terminal
package utils
