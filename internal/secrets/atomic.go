package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/shroud/internal/errors"

	"github.com/spf13/afero"
)

const tempSuffix = ".tmp"

// IsTempFile reports whether path looks like an unfinished output of this
// package, such as one left behind by a crash.
func IsTempFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && strings.HasSuffix(base, tempSuffix)
}

// stagedFile is a complete temporary file waiting to be renamed onto dst.
type stagedFile struct {
	fs  afero.Fs
	tmp string
	dst string
}

// stage writes a temporary file in dst's directory with mode perm. Nothing
// is left behind when it fails.
func stage(fsys afero.Fs, dst string, perm os.FileMode, write func(w io.Writer) error) (*stagedFile, error) {
	dir := filepath.Dir(dst)
	tmp, err := afero.TempFile(fsys, dir, "."+filepath.Base(dst)+".*"+tempSuffix)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create temporary file in %s: %v", kerrors.ErrIO, dir, err)
	}
	f := &stagedFile{fs: fsys, tmp: tmp.Name(), dst: dst}

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		f.discard()
		return nil, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		f.discard()
		return nil, fmt.Errorf("%w: failed to sync %s: %v", kerrors.ErrIO, f.tmp, err)
	}
	if err := tmp.Close(); err != nil {
		f.discard()
		return nil, fmt.Errorf("%w: failed to close %s: %v", kerrors.ErrIO, f.tmp, err)
	}
	// An existing dst keeps its own mode only until the rename replaces it.
	if err := fsys.Chmod(f.tmp, perm); err != nil {
		f.discard()
		return nil, fmt.Errorf("%w: failed to set permissions on %s: %v", kerrors.ErrIO, f.tmp, err)
	}
	return f, nil
}

// commit renames the temporary file onto its destination.
func (f *stagedFile) commit() error {
	if err := f.fs.Rename(f.tmp, f.dst); err != nil {
		return fmt.Errorf("%w: failed to move output into %s: %v", kerrors.ErrIO, f.dst, err)
	}
	return nil
}

// discard removes the temporary file. It does nothing after a commit.
func (f *stagedFile) discard() {
	_ = f.fs.Remove(f.tmp)
}

// writeAtomic runs write against a temporary file in dst's directory and
// renames it onto dst once write and close both succeed.
func writeAtomic(fsys afero.Fs, dst string, perm os.FileMode, write func(w io.Writer) error) error {
	f, err := stage(fsys, dst, perm, write)
	if err != nil {
		return err
	}
	if err := f.commit(); err != nil {
		f.discard()
		return err
	}
	return nil
}

func writeBytes(data []byte) func(w io.Writer) error {
	return func(w io.Writer) error {
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("%w: %v", kerrors.ErrIO, err)
		}
		return nil
	}
}
