// Package profile locks and unlocks an application profile directory.
//
// A Layout pairs an encrypted directory with the plain directory an
// application reads, for example:
//
//	encrypted_profile/places.sqlite  <->  Data/profile/places.sqlite
//
// Unlocking decrypts every encrypted file into the plain tree. A plain file
// that already exists is copied to <file>.plain first. Locking encrypts each
// plain file back, deletes the plain copy and moves any backup into place.
//
// Files are processed by a bounded pool of workers sharing one key pair.
package profile
