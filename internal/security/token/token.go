package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// DefaultBytes es la entropía de los tokens de verificación.
const DefaultBytes = 32

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
func GenerateOpaqueToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = DefaultBytes
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("token: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SHA256Base64URL devuelve sha256(input) en base64url sin padding.
// Es la forma en que los tokens se guardan e indexan.
func SHA256Base64URL(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// NewVerification genera un token de verificación y su hash.
func NewVerification() (plain, hash string, err error) {
	plain, err = GenerateOpaqueToken(DefaultBytes)
	if err != nil {
		return "", "", err
	}
	return plain, SHA256Base64URL(plain), nil
}
