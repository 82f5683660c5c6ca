package secrets

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	kerrors "github.com/PolarWolf314/shroud/internal/errors"

	"github.com/spf13/afero"
)

// writeTestFile is a helper to write test files on fs.
func writeTestFile(t *testing.T, fs afero.Fs, path string, content []byte) {
	t.Helper()
	if err := afero.WriteFile(fs, path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func readTestFile(t *testing.T, fs afero.Fs, path string) []byte {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return data
}

func TestFileCipher_RoundTrip(t *testing.T) {
	kp := testKeyPair(t)

	sizes := []int{0, 1, 100, streamChunkSize, streamChunkSize*3 + 7, 4 << 20}
	for _, size := range sizes {
		fs := afero.NewMemMapFs()
		c := NewFileCipher(fs)
		plaintext := randomBytes(t, size)
		writeTestFile(t, fs, "/profile/places.sqlite", plaintext)

		if err := c.EncryptFile("/profile/places.sqlite", "/encrypted/places.sqlite", kp.Public); err != nil {
			t.Fatalf("EncryptFile(%d bytes) failed: %v", size, err)
		}

		artifact := readTestFile(t, fs, "/encrypted/places.sqlite")
		if len(artifact) != kp.Public.Size()+size {
			t.Errorf("artifact is %d bytes, want prefix %d + %d", len(artifact), kp.Public.Size(), size)
		}

		if err := c.DecryptFile("/encrypted/places.sqlite", "/restored/places.sqlite", kp.Public, kp.Private); err != nil {
			t.Fatalf("DecryptFile(%d bytes) failed: %v", size, err)
		}

		if !bytes.Equal(readTestFile(t, fs, "/restored/places.sqlite"), plaintext) {
			t.Errorf("round trip of %d bytes did not reproduce the plaintext", size)
		}

		// The source is never removed.
		if exists, _ := afero.Exists(fs, "/profile/places.sqlite"); !exists {
			t.Error("EncryptFile should not delete the source file")
		}
	}
}

func TestFileCipher_PrefixLengthIndependentOfKeySize(t *testing.T) {
	kp := testKeyPair(t)
	if ArtifactPrefixSize(kp.Public) != 256 {
		t.Fatalf("ArtifactPrefixSize = %d, want 256 for a 2048-bit key", ArtifactPrefixSize(kp.Public))
	}

	plaintext := []byte("cookies")
	for _, bits := range []int{128, 192, 256} {
		fs := afero.NewMemMapFs()
		c := &FileCipher{Fs: fs, KeyBits: bits}
		writeTestFile(t, fs, "/plain", plaintext)

		if err := c.EncryptFile("/plain", "/enc", kp.Public); err != nil {
			t.Fatalf("EncryptFile with %d-bit key failed: %v", bits, err)
		}
		artifact := readTestFile(t, fs, "/enc")
		if len(artifact)-len(plaintext) != 256 {
			t.Errorf("%d-bit key: prefix is %d bytes, want 256", bits, len(artifact)-len(plaintext))
		}

		unwrapped, err := UnwrapKey(artifact[:256], kp.Private)
		if err != nil {
			t.Fatalf("UnwrapKey failed: %v", err)
		}
		if len(unwrapped) != bits/8 {
			t.Errorf("unwrapped key is %d bytes, want %d", len(unwrapped), bits/8)
		}

		if err := c.DecryptFile("/enc", "/out", kp.Public, kp.Private); err != nil {
			t.Fatalf("DecryptFile failed: %v", err)
		}
		if !bytes.Equal(readTestFile(t, fs, "/out"), plaintext) {
			t.Errorf("%d-bit key: round trip failed", bits)
		}
	}
}

func TestFileCipher_FreshKeyPerEncryption(t *testing.T) {
	kp := testKeyPair(t)
	fs := afero.NewMemMapFs()
	c := NewFileCipher(fs)
	plaintext := []byte("user_pref(\"browser.startup.homepage\", \"about:blank\");")
	writeTestFile(t, fs, "/prefs.js", plaintext)

	if err := c.EncryptFile("/prefs.js", "/a", kp.Public); err != nil {
		t.Fatalf("EncryptFile failed: %v", err)
	}
	if err := c.EncryptFile("/prefs.js", "/b", kp.Public); err != nil {
		t.Fatalf("EncryptFile failed: %v", err)
	}

	a, b := readTestFile(t, fs, "/a"), readTestFile(t, fs, "/b")
	if bytes.Equal(a, b) {
		t.Fatal("encrypting the same file twice should produce different artifacts")
	}
	if bytes.Equal(a[kp.Public.Size():], b[kp.Public.Size():]) {
		t.Error("ciphertexts should differ because each artifact uses a fresh key")
	}

	for _, name := range []string{"/a", "/b"} {
		if err := c.DecryptFile(name, name+".out", kp.Public, kp.Private); err != nil {
			t.Fatalf("DecryptFile(%s) failed: %v", name, err)
		}
		if !bytes.Equal(readTestFile(t, fs, name+".out"), plaintext) {
			t.Errorf("%s did not decrypt to the original", name)
		}
	}
}

// Artifacts carry no integrity tag, so tampering with the ciphertext body is
// not detected.
func TestFileCipher_TamperNotDetected(t *testing.T) {
	kp := testKeyPair(t)
	fs := afero.NewMemMapFs()
	c := NewFileCipher(fs)
	plaintext := bytes.Repeat([]byte("session data "), 100)
	writeTestFile(t, fs, "/sessionstore.js", plaintext)

	if err := c.EncryptFile("/sessionstore.js", "/enc", kp.Public); err != nil {
		t.Fatalf("EncryptFile failed: %v", err)
	}

	artifact := readTestFile(t, fs, "/enc")
	offset := 10
	artifact[kp.Public.Size()+offset] ^= 0x80
	writeTestFile(t, fs, "/enc", artifact)

	if err := c.DecryptFile("/enc", "/out", kp.Public, kp.Private); err != nil {
		t.Fatalf("DecryptFile should not detect tampering, got: %v", err)
	}

	got := readTestFile(t, fs, "/out")
	if len(got) != len(plaintext) {
		t.Fatalf("decrypted length = %d, want %d", len(got), len(plaintext))
	}
	for i := range plaintext {
		want := plaintext[i]
		if i == offset {
			want ^= 0x80
		}
		if got[i] != want {
			t.Errorf("byte %d = %#x, want %#x", i, got[i], want)
		}
	}
}

func TestFileCipher_DecryptInvalidPrefix(t *testing.T) {
	kp := testKeyPair(t)

	tests := []struct {
		name     string
		artifact []byte
	}{
		{"empty", nil},
		{"truncated prefix", make([]byte, 100)},
		{"one byte short", make([]byte, 255)},
		{"garbage prefix", append(bytes.Repeat([]byte{0xff}, 256), []byte("body")...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			c := NewFileCipher(fs)
			writeTestFile(t, fs, "/enc", tt.artifact)
			writeTestFile(t, fs, "/out", []byte("existing"))

			err := c.DecryptFile("/enc", "/out", kp.Public, kp.Private)
			if !errors.Is(err, kerrors.ErrInvalidCiphertext) {
				t.Fatalf("DecryptFile error = %v, want ErrInvalidCiphertext", err)
			}
			if got := readTestFile(t, fs, "/out"); string(got) != "existing" {
				t.Errorf("destination was modified: %q", got)
			}
			assertNoTempFiles(t, fs, "/")
		})
	}
}

func TestFileCipher_DecryptDoesNotCreateDestinationOnFailure(t *testing.T) {
	kp := testKeyPair(t)
	fs := afero.NewMemMapFs()
	c := NewFileCipher(fs)
	writeTestFile(t, fs, "/enc", make([]byte, 10))

	if err := c.DecryptFile("/enc", "/out", kp.Public, kp.Private); err == nil {
		t.Fatal("DecryptFile should fail on a truncated artifact")
	}
	if exists, _ := afero.Exists(fs, "/out"); exists {
		t.Error("destination should not be created when unwrapping fails")
	}
}

func TestFileCipher_MissingSource(t *testing.T) {
	kp := testKeyPair(t)
	fs := afero.NewMemMapFs()
	c := NewFileCipher(fs)

	if err := c.EncryptFile("/missing", "/enc", kp.Public); !errors.Is(err, kerrors.ErrFileNotFound) {
		t.Errorf("EncryptFile error = %v, want ErrFileNotFound", err)
	}
	if err := c.DecryptFile("/missing", "/out", kp.Public, kp.Private); !errors.Is(err, kerrors.ErrFileNotFound) {
		t.Errorf("DecryptFile error = %v, want ErrFileNotFound", err)
	}
	for _, name := range []string{"/enc", "/out"} {
		if exists, _ := afero.Exists(fs, name); exists {
			t.Errorf("%s should not be created", name)
		}
	}
}

func TestFileCipher_WrongPrivateKey(t *testing.T) {
	kp := testKeyPair(t)
	other, err := GenerateKeyPair(DefaultKeyBits)
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}

	fs := afero.NewMemMapFs()
	c := NewFileCipher(fs)
	writeTestFile(t, fs, "/plain", []byte("secret"))
	if err := c.EncryptFile("/plain", "/enc", kp.Public); err != nil {
		t.Fatalf("EncryptFile failed: %v", err)
	}

	// With overwhelming probability the wrong key fails the padding check.
	err = c.DecryptFile("/enc", "/out", other.Public, other.Private)
	if err == nil {
		t.Skip("wrong key happened to produce valid padding")
	}
	if !errors.Is(err, kerrors.ErrInvalidCiphertext) {
		t.Errorf("DecryptFile error = %v, want ErrInvalidCiphertext", err)
	}
}

func TestFileCipher_UnwritableDestination(t *testing.T) {
	kp := testKeyPair(t)
	base := afero.NewMemMapFs()
	writeTestFile(t, base, "/plain", []byte("secret"))

	c := NewFileCipher(afero.NewReadOnlyFs(base))
	if err := c.EncryptFile("/plain", "/enc", kp.Public); !errors.Is(err, kerrors.ErrIO) {
		t.Errorf("EncryptFile error = %v, want ErrIO", err)
	}
}

func TestFileCipher_OverwritesDestination(t *testing.T) {
	kp := testKeyPair(t)
	fs := afero.NewMemMapFs()
	c := NewFileCipher(fs)
	writeTestFile(t, fs, "/plain", []byte("new contents"))
	writeTestFile(t, fs, "/out", []byte("old contents that are longer"))

	if err := c.EncryptFile("/plain", "/enc", kp.Public); err != nil {
		t.Fatalf("EncryptFile failed: %v", err)
	}
	if err := c.DecryptFile("/enc", "/out", kp.Public, kp.Private); err != nil {
		t.Fatalf("DecryptFile failed: %v", err)
	}
	if got := readTestFile(t, fs, "/out"); string(got) != "new contents" {
		t.Errorf("destination = %q, want %q", got, "new contents")
	}
	assertNoTempFiles(t, fs, "/")
}

func TestEncryptDecryptFile_OnDisk(t *testing.T) {
	kp := testKeyPair(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "cookies.sqlite")
	enc := filepath.Join(dir, "cookies.sqlite.enc")
	out := filepath.Join(dir, "cookies.sqlite.out")

	plaintext := randomBytes(t, 1<<20+3)
	writeTestFile(t, afero.NewOsFs(), src, plaintext)

	if err := EncryptFile(src, enc, kp.Public); err != nil {
		t.Fatalf("EncryptFile failed: %v", err)
	}
	if err := DecryptFile(enc, out, kp.Public, kp.Private); err != nil {
		t.Fatalf("DecryptFile failed: %v", err)
	}
	if !bytes.Equal(readTestFile(t, afero.NewOsFs(), out), plaintext) {
		t.Error("on-disk round trip did not reproduce the plaintext")
	}
	assertNoTempFiles(t, afero.NewOsFs(), dir)
}

func assertNoTempFiles(t *testing.T, fs afero.Fs, dir string) {
	t.Helper()
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		t.Fatalf("failed to read %s: %v", dir, err)
	}
	for _, e := range entries {
		if IsTempFile(e.Name()) {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestIsTempFile(t *testing.T) {
	for name, want := range map[string]bool{
		".places.sqlite.123456.tmp":     true,
		"dir/.prefs.js.42.tmp":          true,
		"places.sqlite":                 false,
		".hidden":                       false,
		"notes.tmp":                     false,
		"sessionstore-backups/recovery": false,
	} {
		if got := IsTempFile(name); got != want {
			t.Errorf("IsTempFile(%q) = %v, want %v", name, got, want)
		}
	}
}
