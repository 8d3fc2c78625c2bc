// Package vault encrypts saved session state with a passphrase.
//
// Blobs are salt(16) || nonce(24) || ciphertext||tag(16). The key is derived
// per blob with Argon2id from the passphrase and the blob's salt, then used
// with XChaCha20-Poly1305.
package vault

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const saltSize = 16

var (
	// ErrNoPassphrase is returned when a vault is built without a passphrase.
	ErrNoPassphrase = errors.New("vault passphrase not configured")

	// ErrMalformed is returned for blobs too short to hold salt, nonce and tag.
	ErrMalformed = errors.New("malformed vault blob")

	// ErrDecrypt is returned when authentication fails: wrong passphrase or
	// tampered data.
	ErrDecrypt = errors.New("vault decryption failed")
)

// Cipher encrypts and decrypts opaque payloads.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(blob []byte) ([]byte, error)
}

// Params are the Argon2id cost parameters.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultParams follow the argon2 package's recommended IDKey settings.
var DefaultParams = Params{Time: 1, Memory: 64 * 1024, Threads: 4}

// Vault is the passphrase-based Cipher.
type Vault struct {
	passphrase []byte
	params     Params
	rand       io.Reader
}

// New returns a Vault using DefaultParams.
func New(passphrase string) (*Vault, error) {
	return NewWithParams(passphrase, DefaultParams)
}

// NewWithParams returns a Vault with explicit key derivation costs.
func NewWithParams(passphrase string, params Params) (*Vault, error) {
	if passphrase == "" {
		return nil, ErrNoPassphrase
	}
	return &Vault{passphrase: []byte(passphrase), params: params, rand: rand.Reader}, nil
}

func (v *Vault) key(salt []byte) []byte {
	return argon2.IDKey(v.passphrase, salt, v.params.Time, v.params.Memory, v.params.Threads, chacha20poly1305.KeySize)
}

// Encrypt seals plaintext under a fresh salt and nonce.
func (v *Vault) Encrypt(plaintext []byte) ([]byte, error) {
	header := make([]byte, saltSize+chacha20poly1305.NonceSizeX)
	if _, err := io.ReadFull(v.rand, header); err != nil {
		return nil, fmt.Errorf("read salt and nonce: %w", err)
	}
	salt, nonce := header[:saltSize], header[saltSize:]

	aead, err := chacha20poly1305.NewX(v.key(salt))
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	return aead.Seal(header, nonce, plaintext, nil), nil
}

// Decrypt opens a blob produced by Encrypt.
func (v *Vault) Decrypt(blob []byte) ([]byte, error) {
	if len(blob) < saltSize+chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return nil, ErrMalformed
	}
	salt := blob[:saltSize]
	nonce := blob[saltSize : saltSize+chacha20poly1305.NonceSizeX]
	ciphertext := blob[saltSize+chacha20poly1305.NonceSizeX:]

	aead, err := chacha20poly1305.NewX(v.key(salt))
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
