// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered unique identifiers for user accounts.

It wraps the standard UUID library to specifically generate Version 7 values,
which are naturally ordered by creation time and keep PostgreSQL B-tree
indexes compact.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
func New() string {

	// Create a new version 7 UUID (time-sortable)
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}

// # Parsing

// Valid reports whether value is a well-formed UUID of any version.
func Valid(value string) bool {
	return uuid.Validate(value) == nil
}
