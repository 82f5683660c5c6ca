package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/shroud/internal/audit"
	kerrors "github.com/PolarWolf314/shroud/internal/errors"
	"github.com/PolarWolf314/shroud/internal/profile"
	"github.com/PolarWolf314/shroud/internal/secrets"
)

// UnlockOptions configures the unlock workflow.
type UnlockOptions struct {
	Environment

	// Passphrase opens the private key, and protects it when a new pair is
	// generated. Nil means the key is stored unencrypted.
	Passphrase *string
}

// UnlockResult contains the outcome of an unlock.
type UnlockResult struct {
	// Generated is set when no key pair existed and a new one was created.
	Generated bool

	// Entries is every profile file considered.
	Entries []profile.Entry

	Report *profile.Report
}

// Unlock decrypts the profile into the plain directory.
//
// When no key pair exists yet and auto_generate is on, a new pair is created
// with the given passphrase, as on the very first run.
//
// Returns ErrFileNotFound if there is no key pair and auto_generate is off.
// Returns ErrInvalidKey if the passphrase is wrong.
// Returns ErrInvalidCiphertext if an encrypted file is damaged.
func Unlock(ctx context.Context, opts UnlockOptions) (*UnlockResult, error) {
	result, keys, err := unlock(ctx, opts)
	keys.Wipe()
	return result, err
}

// unlock leaves the key pair to the caller, who must wipe it.
func unlock(ctx context.Context, opts UnlockOptions) (result *UnlockResult, keys *secrets.KeyPair, err error) {
	result = &UnlockResult{}
	defer func() {
		entry := audit.Entry{Operation: "unlock"}
		if result.Report != nil {
			entry.Files = result.Report.Processed
		}
		opts.record(entry, err)
	}()

	entries, err := opts.layout().Entries(opts.fs())
	if err != nil {
		return result, nil, err
	}
	result.Entries = entries

	keys, generated, err := loadOrGenerate(opts.Environment, opts.Passphrase)
	if err != nil {
		return result, nil, err
	}
	result.Generated = generated

	report, err := opts.session(keys).DecryptAll(ctx, entries)
	result.Report = report
	if err != nil {
		return result, keys, err
	}

	opts.Logger.Infof("All files decrypted")
	return result, keys, nil
}

func loadOrGenerate(env Environment, passphrase *string) (*secrets.KeyPair, bool, error) {
	store := env.keyStore()
	path := env.Config.KeyPath

	if !store.Exists(path) {
		if !env.Config.AutoGenerate {
			return nil, false, fmt.Errorf("%w: no key pair at %s", kerrors.ErrFileNotFound, path)
		}
		env.Logger.Infof("Generating new RSA keys")
		keys, err := store.Generate(path, env.Config.KeyBits, passphrase)
		if err != nil {
			return nil, false, err
		}
		return keys, true, nil
	}

	env.Logger.Infof("Loading RSA keys")
	keys, err := store.Load(path, passphrase)
	if err != nil {
		return nil, false, err
	}
	env.Logger.Infof("Keys loaded")
	return keys, false, nil
}
