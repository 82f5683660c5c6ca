package workflows

import (
	"context"

	"github.com/PolarWolf314/shroud/internal/audit"
)

// FileOptions configures single-file encryption and decryption.
type FileOptions struct {
	Environment

	Source      string
	Destination string

	// Passphrase opens the private key. Only DecryptOne uses it.
	Passphrase *string
}

// FileResult names the file written.
type FileResult struct {
	Source      string
	Destination string
}

// EncryptOne encrypts Source into Destination with the configured public key.
// Source is left in place.
func EncryptOne(ctx context.Context, opts FileOptions) (result *FileResult, err error) {
	defer func() {
		opts.record(audit.Entry{Operation: "encrypt", Files: []string{opts.Destination}}, err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pub, err := opts.keyStore().LoadPublic(opts.Config.KeyPath)
	if err != nil {
		return nil, err
	}

	if err := opts.fileCipher().EncryptFile(opts.Source, opts.Destination, pub); err != nil {
		return nil, err
	}
	opts.Logger.Infof("Encrypted %s to %s", opts.Source, opts.Destination)
	return &FileResult{Source: opts.Source, Destination: opts.Destination}, nil
}

// DecryptOne decrypts Source into Destination with the configured key pair.
func DecryptOne(ctx context.Context, opts FileOptions) (result *FileResult, err error) {
	defer func() {
		opts.record(audit.Entry{Operation: "decrypt", Files: []string{opts.Destination}}, err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keys, err := opts.keyStore().Load(opts.Config.KeyPath, opts.Passphrase)
	if err != nil {
		return nil, err
	}
	defer keys.Wipe()

	if err := opts.fileCipher().DecryptFile(opts.Source, opts.Destination, keys.Public, keys.Private); err != nil {
		return nil, err
	}
	opts.Logger.Infof("Decrypted %s to %s", opts.Source, opts.Destination)
	return &FileResult{Source: opts.Source, Destination: opts.Destination}, nil
}
