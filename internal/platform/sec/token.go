// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// # Opaque Tokens

const (
	// SessionTokenLength is the byte length of a session token (128 bits, 32 hex chars).
	SessionTokenLength = 16

	// SecretLength is the byte length of the out-of-band verification secret.
	SecretLength = 16
)

// GenerateSecureToken returns length bytes from crypto/rand rendered as lowercase hex.
//
// The output is opaque and unguessable; it is never derived from a counter or clock.
func GenerateSecureToken(length int) (string, error) {
	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buffer), nil
}

// GenerateSessionToken returns a new session token.
func GenerateSessionToken() (string, error) {
	return GenerateSecureToken(SessionTokenLength)
}

// GenerateSecret returns a new verification secret.
func GenerateSecret() (string, error) {
	return GenerateSecureToken(SecretLength)
}
