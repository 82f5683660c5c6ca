package secrets

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	kerrors "github.com/PolarWolf314/shroud/internal/errors"

	"github.com/spf13/afero"
)

// PublicKeyPath returns the path of the public half of the key pair stored at path.
func PublicKeyPath(path string) string {
	return path + ".pub"
}

// KeyStore persists key pairs as two files: the private key at path and the
// public key at path + ".pub". When a passphrase is given the private key file
// holds the AES-CTR encryption of its PEM encoding under
// DerivePassphraseKey(passphrase), with no header or integrity tag.
type KeyStore struct {
	Fs afero.Fs
}

// NewKeyStore returns a KeyStore backed by fs.
func NewKeyStore(fs afero.Fs) *KeyStore {
	return &KeyStore{Fs: fs}
}

var defaultKeyStore = NewKeyStore(afero.NewOsFs())

// Generate creates a new key pair of the given size and saves it at path.
func (s *KeyStore) Generate(path string, bits int, passphrase *string) (*KeyPair, error) {
	kp, err := GenerateKeyPair(bits)
	if err != nil {
		return nil, err
	}

	if err := s.Save(path, kp, passphrase); err != nil {
		return nil, err
	}
	return kp, nil
}

// Save writes kp to path and path + ".pub", overwriting existing files.
func (s *KeyStore) Save(path string, kp *KeyPair, passphrase *string) error {
	if kp == nil || kp.Public == nil || kp.Private == nil {
		return fmt.Errorf("%w: incomplete key pair", kerrors.ErrInvalidKey)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := s.Fs.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("%w: failed to create key directory %s: %v", kerrors.ErrIO, dir, err)
		}
	}

	privBytes := MarshalPrivateKey(kp.Private)
	defer ZeroBytes(privBytes)

	out := privBytes
	if passphrase != nil {
		passKey := DerivePassphraseKey(*passphrase)
		defer ZeroBytes(passKey)

		encrypted, err := EncryptBytes(passKey, privBytes)
		if err != nil {
			return err
		}
		out = encrypted
	}

	// Both halves are staged before either replaces a file, so a failed write
	// leaves the previous pair loadable.
	private, err := stage(s.Fs, path, 0600, writeBytes(out))
	if err != nil {
		return fmt.Errorf("failed to write private key to %s: %w", path, err)
	}
	defer private.discard()

	publicPath := PublicKeyPath(path)
	// #nosec G306 -- public keys are not secret
	public, err := stage(s.Fs, publicPath, 0644, writeBytes(MarshalPublicKey(kp.Public)))
	if err != nil {
		return fmt.Errorf("failed to write public key to %s: %w", publicPath, err)
	}
	defer public.discard()

	previous, readErr := afero.ReadFile(s.Fs, path)
	defer ZeroBytes(previous)

	if err := private.commit(); err != nil {
		return fmt.Errorf("failed to write private key to %s: %w", path, err)
	}
	if err := public.commit(); err != nil {
		if readErr == nil {
			_ = writeAtomic(s.Fs, path, 0600, writeBytes(previous))
		} else {
			_ = s.Fs.Remove(path)
		}
		return fmt.Errorf("failed to write public key to %s: %w", publicPath, err)
	}
	return nil
}

// Load reads the key pair stored at path. A passphrase must be given exactly
// when one was used to save the pair; a wrong passphrase returns ErrInvalidKey.
func (s *KeyStore) Load(path string, passphrase *string) (*KeyPair, error) {
	pub, err := s.LoadPublic(path)
	if err != nil {
		return nil, err
	}

	keyBytes, err := s.readKeyFile(path)
	if err != nil {
		return nil, err
	}
	defer ZeroBytes(keyBytes)

	if passphrase != nil {
		passKey := DerivePassphraseKey(*passphrase)
		defer ZeroBytes(passKey)

		decrypted, err := DecryptBytes(passKey, keyBytes)
		if err != nil {
			return nil, err
		}
		defer ZeroBytes(decrypted)
		keyBytes = decrypted
	}

	priv, err := ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to load private key from %s: %w", path, err)
	}

	if !priv.PublicKey.Equal(pub) {
		wipePrivateKey(priv)
		return nil, fmt.Errorf("%w: %s does not match %s", kerrors.ErrInvalidKey, path, PublicKeyPath(path))
	}

	return &KeyPair{Public: pub, Private: priv}, nil
}

// LoadPublic reads only the public half of the key pair stored at path.
func (s *KeyStore) LoadPublic(path string) (*rsa.PublicKey, error) {
	publicPath := PublicKeyPath(path)
	data, err := s.readKeyFile(publicPath)
	if err != nil {
		return nil, err
	}

	pub, err := ParsePublicKey(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load public key from %s: %w", publicPath, err)
	}
	return pub, nil
}

// Exists reports whether a private key file is present at path.
func (s *KeyStore) Exists(path string) bool {
	info, err := s.Fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (s *KeyStore) readKeyFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(s.Fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: failed to read %s: %v", kerrors.ErrIO, path, err)
	}
	return data, nil
}

// GenerateKeyPairFiles creates a key pair on the local filesystem.
func GenerateKeyPairFiles(path string, bits int, passphrase *string) (*KeyPair, error) {
	return defaultKeyStore.Generate(path, bits, passphrase)
}

// SaveKeyPairFiles writes an existing key pair to the local filesystem.
func SaveKeyPairFiles(path string, kp *KeyPair, passphrase *string) error {
	return defaultKeyStore.Save(path, kp, passphrase)
}

// LoadKeyPairFiles reads a key pair from the local filesystem.
func LoadKeyPairFiles(path string, passphrase *string) (*KeyPair, error) {
	return defaultKeyStore.Load(path, passphrase)
}

// LoadPublicKeyFile reads the public key stored next to path.
func LoadPublicKeyFile(path string) (*rsa.PublicKey, error) {
	return defaultKeyStore.LoadPublic(path)
}

// KeyFilesExist reports whether a private key file exists at path.
func KeyFilesExist(path string) bool {
	return defaultKeyStore.Exists(path)
}
