package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"io"

	kerrors "github.com/PolarWolf314/shroud/internal/errors"
)

const (
	// SymmetricKeyBits is the default size of a per-file key.
	SymmetricKeyBits = 256

	// pkcs1Overhead is the minimum PKCS#1 v1.5 padding length.
	pkcs1Overhead = 11

	// streamChunkSize bounds every read from and write to a stream.
	streamChunkSize = 8192
)

// initialCounter is the first AES-CTR counter block, the 128-bit big-endian
// integer 1. There is no per-message nonce: the keystream depends only on the key.
var initialCounter = [aes.BlockSize]byte{aes.BlockSize - 1: 1}

// DerivePassphraseKey derives the AES-256 key that protects the private key
// file. It is a bare SHA-256 of the passphrase with no salt or stretching.
func DerivePassphraseKey(passphrase string) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	return sum[:]
}

// CreateSymmetricKey generates a new random AES key of the given size.
func CreateSymmetricKey(bits int) ([]byte, error) {
	switch bits {
	case 128, 192, 256:
	default:
		return nil, fmt.Errorf("%w: unsupported symmetric key size of %d bits", kerrors.ErrInvalidKey, bits)
	}

	symKey := make([]byte, bits/8)
	if _, err := rand.Read(symKey); err != nil {
		return nil, fmt.Errorf("failed to generate symmetric key: %w", err)
	}

	return symKey, nil
}

func newKeystream(key []byte) (cipher.Stream, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidKey, err)
	}
	iv := initialCounter
	return cipher.NewCTR(block, iv[:]), nil
}

// EncryptStream copies r to w through AES-CTR under key, in chunks of at
// most 8 KiB. It returns the number of bytes written.
func EncryptStream(key []byte, r io.Reader, w io.Writer) (int64, error) {
	stream, err := newKeystream(key)
	if err != nil {
		return 0, err
	}

	buf := make([]byte, streamChunkSize)
	defer ZeroBytes(buf)

	var written int64
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			stream.XORKeyStream(buf[:n], buf[:n])
			m, err := w.Write(buf[:n])
			written += int64(m)
			if err == nil && m != n {
				err = io.ErrShortWrite
			}
			if err != nil {
				return written, fmt.Errorf("%w: streaming cipher: %v", kerrors.ErrIO, err)
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, fmt.Errorf("%w: streaming cipher: %v", kerrors.ErrIO, readErr)
		}
	}
}

// DecryptStream is the inverse of EncryptStream. CTR mode is its own inverse,
// so this is the same transform.
func DecryptStream(key []byte, r io.Reader, w io.Writer) (int64, error) {
	return EncryptStream(key, r, w)
}

// EncryptBytes encrypts a whole buffer with the same keystream EncryptStream uses.
func EncryptBytes(key, data []byte) ([]byte, error) {
	stream, err := newKeystream(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(data))
	stream.XORKeyStream(out, data)
	return out, nil
}

// DecryptBytes is the inverse of EncryptBytes.
func DecryptBytes(key, data []byte) ([]byte, error) {
	return EncryptBytes(key, data)
}

// MaxWrapSize returns the longest payload pub can wrap.
func MaxWrapSize(pub *rsa.PublicKey) int {
	return pub.Size() - pkcs1Overhead
}

// WrapKey encrypts a symmetric key with an RSA public key using PKCS#1 v1.5.
// The result is always pub.Size() bytes long.
func WrapKey(symKey []byte, pub *rsa.PublicKey) ([]byte, error) {
	if pub == nil {
		return nil, fmt.Errorf("%w: no public key", kerrors.ErrInvalidKey)
	}
	if len(symKey) > MaxWrapSize(pub) {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d byte limit of a %d bit key",
			kerrors.ErrPayloadTooLarge, len(symKey), MaxWrapSize(pub), pub.N.BitLen())
	}

	wrapped, err := rsa.EncryptPKCS1v15(rand.Reader, pub, symKey)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap symmetric key: %w", err)
	}
	return wrapped, nil
}

// UnwrapKey decrypts a wrapped symmetric key with an RSA private key.
func UnwrapKey(wrapped []byte, priv *rsa.PrivateKey) ([]byte, error) {
	if priv == nil {
		return nil, fmt.Errorf("%w: no private key", kerrors.ErrInvalidKey)
	}
	if len(wrapped) != priv.Size() {
		return nil, fmt.Errorf("%w: wrapped key is %d bytes, expected %d",
			kerrors.ErrInvalidCiphertext, len(wrapped), priv.Size())
	}

	symKey, err := rsa.DecryptPKCS1v15(rand.Reader, priv, wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidCiphertext, err)
	}
	return symKey, nil
}
