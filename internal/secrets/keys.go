package secrets

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	kerrors "github.com/PolarWolf314/shroud/internal/errors"

	"golang.org/x/crypto/ssh"
)

const (
	// DefaultKeyBits is the RSA modulus size used when none is configured.
	DefaultKeyBits = 2048

	// MinKeyBits is the smallest modulus GenerateKeyPair accepts.
	MinKeyBits = 1024

	publicKeyPEMType  = "RSA PUBLIC KEY"
	privateKeyPEMType = "RSA PRIVATE KEY"
)

// KeyPair holds a matching RSA public and private key.
type KeyPair struct {
	Public  *rsa.PublicKey
	Private *rsa.PrivateKey
}

// GenerateKeyPair creates a new RSA key pair with a modulus of the given size.
func GenerateKeyPair(bits int) (*KeyPair, error) {
	if bits < MinKeyBits {
		return nil, fmt.Errorf("%w: modulus of %d bits is below the %d bit minimum",
			kerrors.ErrKeyGeneration, bits, MinKeyBits)
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrKeyGeneration, err)
	}

	return &KeyPair{Public: &privateKey.PublicKey, Private: privateKey}, nil
}

// Wipe clears the private half of the pair. The public key stays usable.
func (kp *KeyPair) Wipe() {
	if kp == nil || kp.Private == nil {
		return
	}
	wipePrivateKey(kp.Private)
	kp.Private = nil
}

// MarshalPublicKey encodes a public key as PEM-armoured PKCS#1.
func MarshalPublicKey(pub *rsa.PublicKey) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  publicKeyPEMType,
		Bytes: x509.MarshalPKCS1PublicKey(pub),
	})
}

// MarshalPrivateKey encodes a private key as PEM-armoured PKCS#1.
func MarshalPrivateKey(priv *rsa.PrivateKey) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  privateKeyPEMType,
		Bytes: x509.MarshalPKCS1PrivateKey(priv),
	})
}

// ParsePublicKey decodes an RSA public key. It accepts PEM PKCS#1, PEM PKIX
// and bare PKCS#1 DER.
func ParsePublicKey(data []byte) (*rsa.PublicKey, error) {
	blockType, der := pemOrDER(data)

	switch blockType {
	case publicKeyPEMType, "":
		pub, err := x509.ParsePKCS1PublicKey(der)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse public key: %v", kerrors.ErrInvalidKey, err)
		}
		return pub, nil
	case "PUBLIC KEY":
		parsed, err := x509.ParsePKIXPublicKey(der)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse public key: %v", kerrors.ErrInvalidKey, err)
		}
		pub, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an RSA public key", kerrors.ErrInvalidKey)
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("%w: unexpected PEM block %q", kerrors.ErrInvalidKey, blockType)
	}
}

// ParsePrivateKey decodes an RSA private key. It accepts PEM PKCS#1, PEM
// PKCS#8 and bare PKCS#1 DER. Bytes produced by decrypting a key file with
// the wrong passphrase fail here with ErrInvalidKey.
func ParsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	blockType, der := pemOrDER(data)

	var priv *rsa.PrivateKey
	switch blockType {
	case privateKeyPEMType, "":
		key, err := x509.ParsePKCS1PrivateKey(der)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse private key: %v", kerrors.ErrInvalidKey, err)
		}
		priv = key
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(der)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse private key: %v", kerrors.ErrInvalidKey, err)
		}
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an RSA private key", kerrors.ErrInvalidKey)
		}
		priv = key
	default:
		return nil, fmt.Errorf("%w: unexpected PEM block %q", kerrors.ErrInvalidKey, blockType)
	}

	if err := priv.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidKey, err)
	}
	return priv, nil
}

// ParseOpenSSHPrivateKey imports an existing RSA key in OpenSSH or PEM form.
// A nil passphrase on an encrypted key returns ErrPassphraseRequired.
func ParseOpenSSHPrivateKey(data, passphrase []byte) (*rsa.PrivateKey, error) {
	var (
		raw interface{}
		err error
	)
	if len(passphrase) > 0 {
		raw, err = ssh.ParseRawPrivateKeyWithPassphrase(data, passphrase)
	} else {
		raw, err = ssh.ParseRawPrivateKey(data)
	}
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			return nil, kerrors.ErrPassphraseRequired
		}
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidKey, err)
	}

	priv, ok := raw.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: expected an RSA key, got %T", kerrors.ErrInvalidKey, raw)
	}
	return priv, nil
}

// pemOrDER returns the type and body of the first PEM block in data, or an
// empty type and data itself when data is not PEM.
func pemOrDER(data []byte) (string, []byte) {
	block, _ := pem.Decode(data)
	if block == nil {
		return "", data
	}
	return block.Type, block.Bytes
}
