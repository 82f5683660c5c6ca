package workflows

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"

	"github.com/PolarWolf314/shroud/internal/audit"
	kerrors "github.com/PolarWolf314/shroud/internal/errors"
	"github.com/PolarWolf314/shroud/internal/secrets"

	"github.com/spf13/afero"
)

// KeygenOptions configures the keygen workflow.
type KeygenOptions struct {
	Environment

	// Passphrase protects the stored private key. Nil stores it unencrypted.
	Passphrase *string

	// ImportPath names an existing RSA private key (OpenSSH or PEM) to adopt
	// instead of generating a new one.
	ImportPath string

	// ImportPassphrase unlocks a protected key at ImportPath.
	ImportPassphrase []byte

	// Force overwrites an existing key pair.
	Force bool
}

// KeygenResult describes the stored key pair.
type KeygenResult struct {
	KeyPath       string
	PublicKeyPath string
	Bits          int
	Imported      bool
	Protected     bool
}

// Keygen creates the key pair at the configured key_path.
//
// Returns ErrKeysExist if a private key is already there and Force is unset.
// Returns ErrPassphraseRequired if the key to import is protected and no
// import passphrase was given.
func Keygen(ctx context.Context, opts KeygenOptions) (result *KeygenResult, err error) {
	path := opts.Config.KeyPath
	defer func() {
		opts.record(audit.Entry{Operation: "keygen"}, err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store := opts.keyStore()
	if store.Exists(path) && !opts.Force {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrKeysExist, path)
	}

	var kp *secrets.KeyPair
	if opts.ImportPath != "" {
		kp, err = importKeyPair(opts.fs(), opts.ImportPath, opts.ImportPassphrase)
		if err != nil {
			return nil, err
		}
		if err := store.Save(path, kp, opts.Passphrase); err != nil {
			kp.Wipe()
			return nil, err
		}
	} else {
		opts.Logger.Infof("Generating %d-bit RSA key pair", opts.Config.KeyBits)
		kp, err = store.Generate(path, opts.Config.KeyBits, opts.Passphrase)
		if err != nil {
			return nil, err
		}
	}
	defer kp.Wipe()

	opts.Logger.Infof("Key pair written to %s", path)
	return &KeygenResult{
		KeyPath:       path,
		PublicKeyPath: secrets.PublicKeyPath(path),
		Bits:          kp.Public.N.BitLen(),
		Imported:      opts.ImportPath != "",
		Protected:     opts.Passphrase != nil,
	}, nil
}

func importKeyPair(fs afero.Fs, path string, passphrase []byte) (*secrets.KeyPair, error) {
	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrFileNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", kerrors.ErrIO, path, err)
	}
	defer secrets.ZeroBytes(data)

	priv, err := secrets.ParseOpenSSHPrivateKey(data, passphrase)
	if err != nil {
		return nil, err
	}
	if priv.N.BitLen() < secrets.MinKeyBits {
		return nil, fmt.Errorf("%w: imported key is %d bits, need at least %d", kerrors.ErrInvalidKey, priv.N.BitLen(), secrets.MinKeyBits)
	}
	return &secrets.KeyPair{Public: &priv.PublicKey, Private: priv}, nil
}
