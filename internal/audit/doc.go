// Package audit keeps a log of shroud operations.
//
// Every keygen, unlock, lock, run, encrypt and decrypt appends one JSON
// object per line to:
//
//	<directory of key_path>/shroud-audit.jsonl
//
// unless audit_log names another file. The log lives outside the encrypted
// directory so it is never mistaken for a profile file.
//
// Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - Run ID shared by all entries of one command invocation
//   - Operation name and the files it touched
//   - The error text when the operation failed
//
// # Failure Handling
//
// Audit logging is best-effort. Operations never fail because logging failed.
//
// # Reading Logs
//
// Trail.Entries and ParseEntries skip malformed lines, which can be left
// behind by partial writes.
package audit
