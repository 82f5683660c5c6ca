package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	kerrors "github.com/PolarWolf314/shroud/internal/errors"
	logger "github.com/PolarWolf314/shroud/internal/logging"
	"github.com/PolarWolf314/shroud/internal/secrets"
	"github.com/PolarWolf314/shroud/internal/ui"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Session moves a profile between its encrypted and plain layouts.
type Session struct {
	Fs     afero.Fs
	Layout Layout

	// Cipher defaults to a FileCipher on Fs.
	Cipher *secrets.FileCipher

	// Keys must hold a private key for DecryptAll. EncryptAll only needs the
	// public half.
	Keys *secrets.KeyPair

	Logger logger.Logger

	// Workers is the number of files processed at once. Values below 1 mean 1.
	Workers int
}

// Report lists what a pass did, each slice sorted.
type Report struct {
	// Processed holds the files written: plain paths for DecryptAll,
	// encrypted paths for EncryptAll.
	Processed []string

	// Skipped holds entries with nothing to process.
	Skipped []string

	// BackedUp holds plain files copied aside before decryption.
	BackedUp []string

	// Restored holds plain files put back from their backup after encryption.
	Restored []string
}

// DecryptAll decrypts each entry whose encrypted file exists into its plain
// path. A plain file already present is first copied to its backup path.
func (s *Session) DecryptAll(ctx context.Context, entries []Entry) (*Report, error) {
	if s.Keys == nil || s.Keys.Public == nil || s.Keys.Private == nil {
		return nil, fmt.Errorf("%w: decrypting the profile needs the private key", kerrors.ErrInvalidKey)
	}

	return s.run(ctx, entries, func(i int, e Entry, r *report) error {
		if !s.isFile(e.Encrypted) {
			r.add(&r.Skipped, e.Encrypted)
			return nil
		}

		backedUp := false
		if s.isFile(e.Plain) {
			s.Logger.Infof("Backing up %s", filepath.Base(e.Plain))
			if err := copyFile(s.Fs, e.Plain, e.Backup); err != nil {
				return err
			}
			backedUp = true
		}

		if err := s.Fs.MkdirAll(filepath.Dir(e.Plain), 0700); err != nil {
			return fmt.Errorf("%w: failed to create %s: %v", kerrors.ErrIO, filepath.Dir(e.Plain), err)
		}

		s.Logger.Infof("%s Decrypting %s", ui.Progress(i+1, len(entries)), e.Encrypted)
		if err := s.cipher().DecryptFile(e.Encrypted, e.Plain, s.Keys.Public, s.Keys.Private); err != nil {
			// The plain file is still in place, so the copy is not needed.
			if backedUp {
				_ = s.Fs.Remove(e.Backup)
			}
			return fmt.Errorf("failed to decrypt %s: %w", e.Encrypted, err)
		}
		if backedUp {
			r.add(&r.BackedUp, e.Backup)
		}
		r.add(&r.Processed, e.Plain)
		return nil
	})
}

// EncryptAll encrypts each entry whose plain file exists, removes the plain
// file and restores its backup if one was made.
func (s *Session) EncryptAll(ctx context.Context, entries []Entry) (*Report, error) {
	if s.Keys == nil || s.Keys.Public == nil {
		return nil, fmt.Errorf("%w: encrypting the profile needs the public key", kerrors.ErrInvalidKey)
	}

	return s.run(ctx, entries, func(i int, e Entry, r *report) error {
		if !s.isFile(e.Plain) {
			s.Logger.Debugf("Skipping %s", e.Plain)
			r.add(&r.Skipped, e.Plain)
			return nil
		}

		if err := s.Fs.MkdirAll(filepath.Dir(e.Encrypted), 0700); err != nil {
			return fmt.Errorf("%w: failed to create %s: %v", kerrors.ErrIO, filepath.Dir(e.Encrypted), err)
		}

		s.Logger.Infof("%s Encrypting %s", ui.Progress(i+1, len(entries)), e.Encrypted)
		if err := s.cipher().EncryptFile(e.Plain, e.Encrypted, s.Keys.Public); err != nil {
			return fmt.Errorf("failed to encrypt %s: %w", e.Plain, err)
		}
		r.add(&r.Processed, e.Encrypted)

		if err := s.Fs.Remove(e.Plain); err != nil {
			return fmt.Errorf("%w: failed to remove %s: %v", kerrors.ErrIO, e.Plain, err)
		}

		if s.isFile(e.Backup) {
			s.Logger.Infof("Recovering backup %s", filepath.Base(e.Plain))
			if err := s.Fs.Rename(e.Backup, e.Plain); err != nil {
				return fmt.Errorf("%w: failed to restore %s: %v", kerrors.ErrIO, e.Backup, err)
			}
			r.add(&r.Restored, e.Plain)
		}
		return nil
	})
}

// run fans fn out over the entries. The first failure cancels entries that
// have not started yet.
func (s *Session) run(ctx context.Context, entries []Entry, fn func(int, Entry, *report) error) (*Report, error) {
	workers := s.Workers
	if workers < 1 {
		workers = 1
	}

	r := &report{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, e := range entries {
		if gctx.Err() != nil {
			break
		}
		i, e := i, e
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(i, e, r)
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return r.sorted(), err
}

func (s *Session) cipher() *secrets.FileCipher {
	if s.Cipher != nil {
		return s.Cipher
	}
	return secrets.NewFileCipher(s.Fs)
}

func (s *Session) isFile(path string) bool {
	info, err := s.Fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

type report struct {
	mu sync.Mutex
	Report
}

func (r *report) add(list *[]string, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*list = append(*list, path)
}

func (r *report) sorted() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.Report
	for _, list := range [][]string{out.Processed, out.Skipped, out.BackedUp, out.Restored} {
		sort.Strings(list)
	}
	return &out
}

func copyFile(fsys afero.Fs, src, dst string) error {
	in, err := fsys.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", kerrors.ErrFileNotFound, src)
		}
		return fmt.Errorf("%w: failed to open %s: %v", kerrors.ErrIO, src, err)
	}
	defer in.Close()

	out, err := fsys.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", kerrors.ErrIO, dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("%w: failed to copy %s: %v", kerrors.ErrIO, src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: failed to close %s: %v", kerrors.ErrIO, dst, err)
	}
	return nil
}
