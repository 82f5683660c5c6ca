package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	kerrors "github.com/PolarWolf314/shroud/internal/errors"
	"github.com/PolarWolf314/shroud/internal/secrets"

	"github.com/spf13/afero"
)

// Layout maps an encrypted directory onto the plain directory a program
// reads its profile from.
type Layout struct {
	EncryptedDir string
	PlainDir     string

	// DefaultFiles are paths relative to EncryptedDir that are always
	// considered, whether or not an encrypted copy exists yet.
	DefaultFiles []string

	// BackupSuffix names the copy of a pre-existing plain file.
	BackupSuffix string

	// MaxDepth limits how deep EncryptedDir is scanned. -1 is unlimited.
	MaxDepth int
}

// Entry is one profile file in its three locations.
type Entry struct {
	Encrypted string
	Plain     string
	Backup    string
}

// Entries returns every file under EncryptedDir plus DefaultFiles,
// deduplicated and sorted by relative path. It fails with ErrNoFilesFound
// when both are empty.
func (l Layout) Entries(fsys afero.Fs) ([]Entry, error) {
	if l.EncryptedDir == "" || l.PlainDir == "" {
		return nil, kerrors.ErrProfileNotConfigured
	}

	files, err := ListFiles(fsys, l.EncryptedDir, l.MaxDepth)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(files)+len(l.DefaultFiles))
	for _, f := range files {
		if secrets.IsTempFile(f) {
			continue
		}
		rel, err := filepath.Rel(l.EncryptedDir, f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is outside %s", kerrors.ErrIO, f, l.EncryptedDir)
		}
		seen[rel] = struct{}{}
	}
	for _, f := range l.DefaultFiles {
		seen[filepath.Clean(filepath.FromSlash(f))] = struct{}{}
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("%w: %s is empty and no default files are configured", kerrors.ErrNoFilesFound, l.EncryptedDir)
	}

	rels := make([]string, 0, len(seen))
	for rel := range seen {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	entries := make([]Entry, len(rels))
	for i, rel := range rels {
		entries[i] = l.entry(rel)
	}
	return entries, nil
}

func (l Layout) entry(rel string) Entry {
	suffix := l.BackupSuffix
	if suffix == "" {
		suffix = DefaultBackupSuffix
	}
	plain := filepath.Join(l.PlainDir, rel)
	return Entry{
		Encrypted: filepath.Join(l.EncryptedDir, rel),
		Plain:     plain,
		Backup:    plain + suffix,
	}
}

// DefaultBackupSuffix is used when a Layout leaves BackupSuffix empty.
const DefaultBackupSuffix = ".plain"

// ListFiles returns the regular files under root, walking each directory in
// name order. A maxDepth
// of 0 lists root only, -1 descends without limit. A root that is a file
// lists itself; a missing root lists nothing.
func ListFiles(fsys afero.Fs, root string, maxDepth int) ([]string, error) {
	info, err := fsys.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to stat %s: %v", kerrors.ErrIO, root, err)
	}
	if !info.IsDir() {
		if info.Mode().IsRegular() {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	if err := listDir(fsys, root, maxDepth, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func listDir(fsys afero.Fs, dir string, depth int, files *[]string) error {
	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("%w: failed to read %s: %v", kerrors.ErrIO, dir, err)
	}

	for _, info := range infos {
		path := filepath.Join(dir, info.Name())
		switch {
		case info.IsDir():
			if depth != 0 {
				if err := listDir(fsys, path, depth-1, files); err != nil {
					return err
				}
			}
		case info.Mode().IsRegular():
			*files = append(*files, path)
		}
	}
	return nil
}

