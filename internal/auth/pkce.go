package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// randomBytes is the entropy for PKCE verifiers and state values. 32 bytes
// encodes to 43 base64url characters, above the RFC 7636 minimum.
const randomBytes = 32

// PKCE holds a generated code verifier and its S256 challenge.
type PKCE struct {
	Verifier  string
	Challenge string
}

// GeneratePKCE creates a fresh PKCE pair: a base64url-encoded random
// verifier and the base64url-encoded SHA-256 of it.
func GeneratePKCE() (PKCE, error) {
	buf := make([]byte, randomBytes)
	if _, err := rand.Read(buf); err != nil {
		return PKCE{}, fmt.Errorf("generating PKCE verifier: %w", err)
	}

	verifier := base64.RawURLEncoding.EncodeToString(buf)
	sum := sha256.Sum256([]byte(verifier))

	return PKCE{
		Verifier:  verifier,
		Challenge: base64.RawURLEncoding.EncodeToString(sum[:]),
	}, nil
}

// GenerateState creates a random state value binding an authorization
// response back to the request that started it.
func GenerateState() (string, error) {
	buf := make([]byte, randomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
