package workflows

import (
	"context"

	"github.com/PolarWolf314/shroud/internal/audit"
	"github.com/PolarWolf314/shroud/internal/profile"
	"github.com/PolarWolf314/shroud/internal/secrets"
)

// LockOptions configures the lock workflow. Locking needs only the public
// key, so there is no passphrase.
type LockOptions struct {
	Environment

	// Entries limits the lock to these entries. Nil locks the whole layout.
	Entries []profile.Entry
}

// LockResult contains the outcome of a lock.
type LockResult struct {
	Entries []profile.Entry
	Report  *profile.Report
}

// Lock encrypts the plain profile back into the encrypted directory and
// removes the plain files.
//
// Returns ErrFileNotFound if the public key is missing.
func Lock(ctx context.Context, opts LockOptions) (result *LockResult, err error) {
	result = &LockResult{}
	defer func() {
		entry := audit.Entry{Operation: "lock"}
		if result.Report != nil {
			entry.Files = result.Report.Processed
		}
		opts.record(entry, err)
	}()

	entries := opts.Entries
	if entries == nil {
		if entries, err = opts.layout().Entries(opts.fs()); err != nil {
			return result, err
		}
	}
	result.Entries = entries

	pub, err := opts.keyStore().LoadPublic(opts.Config.KeyPath)
	if err != nil {
		return result, err
	}

	report, err := opts.session(&secrets.KeyPair{Public: pub}).EncryptAll(ctx, entries)
	result.Report = report
	if err != nil {
		return result, err
	}

	opts.Logger.Infof("All files encrypted")
	return result, nil
}
