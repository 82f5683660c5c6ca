// Package secrets provides the cryptographic operations behind shroud.
//
// # Encryption Architecture
//
// shroud uses a hybrid scheme:
//
//  1. Every file gets a fresh random AES key (256 bits by default)
//  2. The AES key is wrapped with the RSA public key (PKCS#1 v1.5)
//  3. The file is streamed through AES-CTR under the AES key
//
// The artifact is the wrapped key followed by the ciphertext. The wrapped key
// is always exactly as long as the RSA modulus (256 bytes for a 2048-bit key),
// whatever the AES key size.
//
// # Key Management
//
// A key pair is stored as two PEM files:
//   - <path>.pub holds the PKCS#1 public key, never encrypted
//   - <path> holds the PKCS#1 private key, optionally encrypted
//
// When a passphrase is set, the private key file is the AES-CTR encryption
// of its PEM bytes under SHA-256(passphrase). There is no salt, header or
// integrity tag, so the file looks like random bytes. A wrong passphrase
// yields bytes that do not parse as a key and is reported as ErrInvalidKey.
//
// # Security Considerations
//
// The scheme provides confidentiality only. Nothing detects tampering: a
// modified ciphertext byte silently decrypts to a modified plaintext byte.
//
// The AES-CTR counter always starts at 1, so the keystream depends only on
// the key. Per-file keys are random and used once. The passphrase-derived key
// is the same every time a pair is saved under the same passphrase.
//
// Key material is zeroed after use on a best-effort basis.
package secrets
