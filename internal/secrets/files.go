package secrets

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"io"
	"io/fs"

	kerrors "github.com/PolarWolf314/shroud/internal/errors"

	"github.com/spf13/afero"
)

// ArtifactPrefixSize returns the length of the wrapped-key prefix of every
// artifact encrypted for pub. It does not depend on the symmetric key size.
func ArtifactPrefixSize(pub *rsa.PublicKey) int {
	return pub.Size()
}

// FileCipher encrypts and decrypts single files. An artifact is laid out as
//
//	[wrapped key: modulus bytes][AES-CTR ciphertext: rest of file]
//
// with no magic bytes, version or length fields. Output is written to a
// temporary file next to the destination and renamed into place, so the
// destination is never left half written.
type FileCipher struct {
	Fs afero.Fs

	// KeyBits is the size of the per-file AES key: 128, 192 or 256.
	KeyBits int
}

// NewFileCipher returns a FileCipher on fs using 256-bit per-file keys.
func NewFileCipher(fs afero.Fs) *FileCipher {
	return &FileCipher{Fs: fs, KeyBits: SymmetricKeyBits}
}

var defaultFileCipher = NewFileCipher(afero.NewOsFs())

// EncryptFile encrypts src into dst for the holder of pub. src is left in place.
func (c *FileCipher) EncryptFile(src, dst string, pub *rsa.PublicKey) error {
	in, err := c.open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	keyBits := c.KeyBits
	if keyBits == 0 {
		keyBits = SymmetricKeyBits
	}

	symKey, err := CreateSymmetricKey(keyBits)
	if err != nil {
		return err
	}
	defer ZeroBytes(symKey)

	wrapped, err := WrapKey(symKey, pub)
	if err != nil {
		return err
	}

	return writeAtomic(c.Fs, dst, 0600, func(w io.Writer) error {
		if _, err := w.Write(wrapped); err != nil {
			return fmt.Errorf("%w: failed to write key prefix: %v", kerrors.ErrIO, err)
		}
		_, err := EncryptStream(symKey, in, w)
		return err
	})
}

// DecryptFile decrypts the artifact src into dst. If the key prefix cannot be
// read or unwrapped, dst is not touched.
func (c *FileCipher) DecryptFile(src, dst string, pub *rsa.PublicKey, priv *rsa.PrivateKey) error {
	if pub == nil {
		return fmt.Errorf("%w: no public key", kerrors.ErrInvalidKey)
	}

	in, err := c.open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	prefix := make([]byte, ArtifactPrefixSize(pub))
	if _, err := io.ReadFull(in, prefix); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %s is shorter than its %d byte key prefix",
				kerrors.ErrInvalidCiphertext, src, len(prefix))
		}
		return fmt.Errorf("%w: failed to read key prefix from %s: %v", kerrors.ErrIO, src, err)
	}

	symKey, err := UnwrapKey(prefix, priv)
	if err != nil {
		return fmt.Errorf("failed to unwrap key of %s: %w", src, err)
	}
	defer ZeroBytes(symKey)

	return writeAtomic(c.Fs, dst, 0600, func(w io.Writer) error {
		_, err := DecryptStream(symKey, in, w)
		return err
	})
}

func (c *FileCipher) open(path string) (afero.File, error) {
	f, err := c.Fs.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: failed to open %s: %v", kerrors.ErrIO, path, err)
	}
	return f, nil
}

// EncryptFile encrypts src into dst on the local filesystem.
func EncryptFile(src, dst string, pub *rsa.PublicKey) error {
	return defaultFileCipher.EncryptFile(src, dst, pub)
}

// DecryptFile decrypts src into dst on the local filesystem.
func DecryptFile(src, dst string, pub *rsa.PublicKey, priv *rsa.PrivateKey) error {
	return defaultFileCipher.DecryptFile(src, dst, pub, priv)
}
