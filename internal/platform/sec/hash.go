// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sec provides the cryptographic primitives used by the identity core.

# Salted Hash Scheme

A password is never hashed on its own. The per-user salt is split in half; the
first half is prepended and the second half appended to the plaintext before
the SHA-512 digest is taken:

	hash = hex(SHA512(salt[:n/2] + password + salt[n/2:]))

The scheme is kept bit-compatible with hashes already stored by earlier
deployments, which is why it is not a password KDF.
*/
package sec

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
)

// SaltLength is the number of random bytes behind a salt (rendered as 32 hex chars).
const SaltLength = 16

// CalculateSaltedHash computes the hex-encoded salted SHA-512 digest of password.
//
// The function is deterministic: identical inputs always yield identical output.
func CalculateSaltedHash(salt, password string) string {
	prefix, suffix := splitSalt(salt)

	digest := sha512.New()
	digest.Write([]byte(prefix))
	digest.Write([]byte(password))
	digest.Write([]byte(suffix))

	return hex.EncodeToString(digest.Sum(nil))
}

// CheckSaltedHash recomputes the salted hash of password and compares it to
// expectedHash in constant time.
func CheckSaltedHash(salt, password, expectedHash string) bool {
	return ConstantTimeEqual(CalculateSaltedHash(salt, password), expectedHash)
}

// GenerateSalt returns a fresh 128-bit random salt.
func GenerateSalt() (string, error) {
	return GenerateSecureToken(SaltLength)
}

// ConstantTimeEqual compares two strings without leaking the position of the
// first differing byte.
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// splitSalt cuts the salt in half. For odd lengths the extra byte goes to the suffix.
func splitSalt(salt string) (prefix, suffix string) {
	half := len(salt) / 2
	return salt[:half], salt[half:]
}
