package profile_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	kerrors "github.com/PolarWolf314/shroud/internal/errors"
	"github.com/PolarWolf314/shroud/internal/profile"
	"github.com/PolarWolf314/shroud/internal/secrets"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	keysOnce sync.Once
	keys     *secrets.KeyPair
	keysErr  error
)

func testKeys(t *testing.T) *secrets.KeyPair {
	t.Helper()
	keysOnce.Do(func() {
		keys, keysErr = secrets.GenerateKeyPair(secrets.MinKeyBits)
	})
	require.NoError(t, keysErr)
	return keys
}

func testLayout() profile.Layout {
	return profile.Layout{
		EncryptedDir: p("/enc"),
		PlainDir:     p("/plain"),
		DefaultFiles: []string{"prefs.js", "sessionstore-backups/recovery.js"},
		BackupSuffix: ".plain",
		MaxDepth:     -1,
	}
}

func newSession(fs afero.Fs, kp *secrets.KeyPair, workers int) *profile.Session {
	return &profile.Session{
		Fs:      fs,
		Layout:  testLayout(),
		Keys:    kp,
		Workers: workers,
	}
}

func TestSession_LockUnlockCycle(t *testing.T) {
	kp := testKeys(t)
	fs := afero.NewMemMapFs()
	session := newSession(fs, kp, 1)
	ctx := context.Background()

	// First run: plain profile exists, nothing is encrypted yet.
	writeFile(t, fs, "/plain/prefs.js", "user_pref(1)")
	writeFile(t, fs, "/plain/sessionstore-backups/recovery.js", "{}")

	entries, err := session.Layout.Entries(fs)
	require.NoError(t, err)

	report, err := session.EncryptAll(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, []string{p("/enc/prefs.js"), p("/enc/sessionstore-backups/recovery.js")}, report.Processed)
	assert.Empty(t, report.Restored)
	assert.False(t, exists(t, fs, "/plain/prefs.js"), "plain file must be removed after encryption")
	assert.NotEqual(t, "user_pref(1)", readFile(t, fs, "/enc/prefs.js"))

	// Unlock restores the plain files.
	entries, err = session.Layout.Entries(fs)
	require.NoError(t, err)
	report, err = session.DecryptAll(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, []string{p("/plain/prefs.js"), p("/plain/sessionstore-backups/recovery.js")}, report.Processed)
	assert.Empty(t, report.BackedUp)
	assert.Equal(t, "user_pref(1)", readFile(t, fs, "/plain/prefs.js"))
	assert.Equal(t, "{}", readFile(t, fs, "/plain/sessionstore-backups/recovery.js"))
	assert.True(t, exists(t, fs, "/enc/prefs.js"), "encrypted files are kept while unlocked")

	// The program edits the profile, then it is locked again.
	writeFile(t, fs, "/plain/prefs.js", "user_pref(2)")
	report, err = session.EncryptAll(ctx, entries)
	require.NoError(t, err)
	assert.Len(t, report.Processed, 2)

	report, err = session.DecryptAll(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, "user_pref(2)", readFile(t, fs, "/plain/prefs.js"))
}

func TestSession_BackupAndRestore(t *testing.T) {
	kp := testKeys(t)
	fs := afero.NewMemMapFs()
	session := newSession(fs, kp, 1)
	ctx := context.Background()

	writeFile(t, fs, "/plain/prefs.js", "secret")
	entries, err := session.Layout.Entries(fs)
	require.NoError(t, err)
	_, err = session.EncryptAll(ctx, entries)
	require.NoError(t, err)

	// A stray plain copy appears while the profile is locked.
	writeFile(t, fs, "/plain/prefs.js", "stray")

	report, err := session.DecryptAll(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, []string{p("/plain/prefs.js.plain")}, report.BackedUp)
	assert.Equal(t, "stray", readFile(t, fs, "/plain/prefs.js.plain"))
	assert.Equal(t, "secret", readFile(t, fs, "/plain/prefs.js"))

	report, err = session.EncryptAll(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, []string{p("/plain/prefs.js")}, report.Restored)
	assert.Equal(t, "stray", readFile(t, fs, "/plain/prefs.js"))
	assert.False(t, exists(t, fs, "/plain/prefs.js.plain"))

	report, err = session.DecryptAll(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, "secret", readFile(t, fs, "/plain/prefs.js"))
}

func TestSession_SkipsMissingFiles(t *testing.T) {
	kp := testKeys(t)
	fs := afero.NewMemMapFs()
	session := newSession(fs, kp, 1)

	entries, err := session.Layout.Entries(fs)
	require.NoError(t, err)

	report, err := session.DecryptAll(context.Background(), entries)
	require.NoError(t, err)
	assert.Empty(t, report.Processed)
	assert.Equal(t, []string{p("/enc/prefs.js"), p("/enc/sessionstore-backups/recovery.js")}, report.Skipped)

	report, err = session.EncryptAll(context.Background(), entries)
	require.NoError(t, err)
	assert.Empty(t, report.Processed)
	assert.Len(t, report.Skipped, 2)
	assert.False(t, exists(t, fs, "/enc"), "nothing to encrypt should create nothing")
}

func TestSession_EncryptNeedsOnlyPublicKey(t *testing.T) {
	kp := testKeys(t)
	fs := afero.NewMemMapFs()
	session := newSession(fs, &secrets.KeyPair{Public: kp.Public}, 1)

	writeFile(t, fs, "/plain/prefs.js", "data")
	entries, err := session.Layout.Entries(fs)
	require.NoError(t, err)

	_, err = session.EncryptAll(context.Background(), entries)
	require.NoError(t, err)

	_, err = session.DecryptAll(context.Background(), entries)
	assert.ErrorIs(t, err, kerrors.ErrInvalidKey)
}

func TestSession_InvalidArtifact(t *testing.T) {
	kp := testKeys(t)
	fs := afero.NewMemMapFs()
	session := newSession(fs, kp, 1)

	writeFile(t, fs, "/enc/prefs.js", "too short to hold a wrapped key")
	entries, err := session.Layout.Entries(fs)
	require.NoError(t, err)

	_, err = session.DecryptAll(context.Background(), entries)
	assert.ErrorIs(t, err, kerrors.ErrInvalidCiphertext)
	assert.ErrorContains(t, err, p("/enc/prefs.js"))
	assert.False(t, exists(t, fs, "/plain/prefs.js"))
}

func TestSession_Workers(t *testing.T) {
	kp := testKeys(t)
	fs := afero.NewMemMapFs()
	session := newSession(fs, kp, 4)
	session.Layout.DefaultFiles = nil

	var expected []string
	for i := 0; i < 12; i++ {
		writeFile(t, fs, fmt.Sprintf("/plain/file%02d", i), fmt.Sprintf("content %d", i))
		expected = append(expected, p(fmt.Sprintf("/enc/file%02d", i)))
	}

	// Entries come from the encrypted side, so seed them from the plain names.
	for i := 0; i < 12; i++ {
		session.Layout.DefaultFiles = append(session.Layout.DefaultFiles, fmt.Sprintf("file%02d", i))
	}
	entries, err := session.Layout.Entries(fs)
	require.NoError(t, err)

	report, err := session.EncryptAll(context.Background(), entries)
	require.NoError(t, err)
	assert.Equal(t, expected, report.Processed, "report is sorted regardless of completion order")

	report, err = session.DecryptAll(context.Background(), entries)
	require.NoError(t, err)
	assert.Len(t, report.Processed, 12)
	for i := 0; i < 12; i++ {
		assert.Equal(t, fmt.Sprintf("content %d", i), readFile(t, fs, fmt.Sprintf("/plain/file%02d", i)))
	}
}

func TestSession_CancelledContext(t *testing.T) {
	kp := testKeys(t)
	fs := afero.NewMemMapFs()
	session := newSession(fs, kp, 1)

	writeFile(t, fs, "/plain/prefs.js", "data")
	entries, err := session.Layout.Entries(fs)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := session.EncryptAll(ctx, entries)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Processed)
	assert.True(t, exists(t, fs, "/plain/prefs.js"))
}
