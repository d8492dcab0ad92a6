package model

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. The stored digest is hex(salt) followed by hex(key):
// a fixed-length hex string, never the plaintext.
const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	saltLen      = 16
	keyLen       = 32
	digestHexLen = (saltLen + keyLen) * 2
	saltHexLen   = saltLen * 2
)

// HashPassword derives a salted scrypt digest of the plaintext password.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return "", fmt.Errorf("deriving key: %w", err)
	}

	return hex.EncodeToString(salt) + hex.EncodeToString(key), nil
}

// VerifyPassword reports whether the plaintext password matches a stored
// digest produced by HashPassword.
func VerifyPassword(password, digest string) bool {
	if len(digest) != digestHexLen {
		return false
	}
	salt, err := hex.DecodeString(digest[:saltHexLen])
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(digest[saltHexLen:])
	if err != nil {
		return false
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(key, want) == 1
}
