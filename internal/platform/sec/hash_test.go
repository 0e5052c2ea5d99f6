// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HacMan137/BackSite/internal/platform/sec"
)

/*
TestCalculateSaltedHash_Layout verifies the salt is split around the password.
*/
func TestCalculateSaltedHash_Layout(t *testing.T) {
	sum := sha512.Sum512([]byte("abcd" + "hunter2" + "efgh"))
	expected := hex.EncodeToString(sum[:])

	assert.Equal(t, expected, sec.CalculateSaltedHash("abcdefgh", "hunter2"))
}

/*
TestCalculateSaltedHash_Deterministic checks that identical inputs give identical output.
*/
func TestCalculateSaltedHash_Deterministic(t *testing.T) {
	salt, err := sec.GenerateSalt()
	require.NoError(t, err)

	first := sec.CalculateSaltedHash(salt, "correct horse battery staple")
	second := sec.CalculateSaltedHash(salt, "correct horse battery staple")

	assert.Equal(t, first, second)
	assert.Len(t, first, 128)
}

/*
TestCalculateSaltedHash_SingleCharacterChanges flips each character of the password
and of the salt in turn and expects a distinct digest every time.
*/
func TestCalculateSaltedHash_SingleCharacterChanges(t *testing.T) {
	salt := "0123456789abcdef0123456789abcdef"
	password := "s3cret-Passw0rd"
	base := sec.CalculateSaltedHash(salt, password)

	seen := map[string]bool{base: true}

	mutate := func(value string, index int) string {
		raw := []byte(value)
		if raw[index] == 'x' {
			raw[index] = 'y'
		} else {
			raw[index] = 'x'
		}
		return string(raw)
	}

	for i := range password {
		hash := sec.CalculateSaltedHash(salt, mutate(password, i))
		assert.False(t, seen[hash], "password mutation at %d collided", i)
		seen[hash] = true
	}

	for i := range salt {
		hash := sec.CalculateSaltedHash(mutate(salt, i), password)
		assert.False(t, seen[hash], "salt mutation at %d collided", i)
		seen[hash] = true
	}
}

/*
TestCheckSaltedHash tests the constant-time verification helper.
*/
func TestCheckSaltedHash(t *testing.T) {
	salt := "feedfacecafebeef"
	hash := sec.CalculateSaltedHash(salt, "password")

	tests := []struct {
		name     string
		password string
		expected bool
	}{
		{"matching_password", "password", true},
		{"wrong_password", "Password", false},
		{"empty_password", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sec.CheckSaltedHash(salt, tt.password, hash))
		})
	}
}

/*
TestGenerateSecureToken ensures tokens are hex encoded and not repeated.
*/
func TestGenerateSecureToken(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		token, err := sec.GenerateSessionToken()
		require.NoError(t, err)
		assert.Len(t, token, 2*sec.SessionTokenLength)

		_, err = hex.DecodeString(token)
		assert.NoError(t, err)

		assert.False(t, seen[token])
		seen[token] = true
	}
}
