package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"github.com/gabrielbaute/octopus-photos/config"

	"golang.org/x/crypto/pbkdf2"
)

const (
	vaultSaltSize = 16
	vaultKeySize  = 32
)

var errBlobTooShort = errors.New("vault blob shorter than nonce")

func newVaultSalt() ([]byte, error) {
	salt := make([]byte, vaultSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

func deriveVaultKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, config.AppConfig.Vault.KDFIterations, vaultKeySize, sha256.New)
}

// sealBlob encrypts plaintext with AES-GCM and prepends the fresh nonce, so
// the blob is self-contained given the key.
func sealBlob(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func openBlob(key, blob []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(blob) < gcm.NonceSize() {
		return nil, errBlobTooShort
	}
	return gcm.Open(nil, blob[:gcm.NonceSize()], blob[gcm.NonceSize():], nil)
}
