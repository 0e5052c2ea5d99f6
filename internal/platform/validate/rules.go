// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"fmt"
	"net/mail"
	"unicode/utf8"
)

// EmailPattern is the address shape accepted at registration.
const EmailPattern = `\w+@\w+\.\w{1,}`

// MinLen returns a custom validator rejecting strings shorter than min characters.
func MinLen(min int) ValidatorFunc {
	return func(value any, field string) (bool, string) {
		text, _ := value.(string)
		if utf8.RuneCountInString(text) < min {
			return false, fmt.Sprintf("%s must be at least %d characters", field, min)
		}
		return true, ""
	}
}

// MaxLen returns a custom validator rejecting strings longer than max characters.
func MaxLen(max int) ValidatorFunc {
	return func(value any, field string) (bool, string) {
		text, _ := value.(string)
		if utf8.RuneCountInString(text) > max {
			return false, fmt.Sprintf("%s must be at most %d characters", field, max)
		}
		return true, ""
	}
}

// Email rejects values that are not a valid RFC 5322 address.
func Email(value any, field string) (bool, string) {
	text, _ := value.(string)
	if _, err := mail.ParseAddress(text); err != nil {
		return false, fmt.Sprintf("%s must be a valid email address", field)
	}
	return true, ""
}

// All chains validators; the first failure wins.
func All(validators ...ValidatorFunc) ValidatorFunc {
	return func(value any, field string) (bool, string) {
		for _, validator := range validators {
			if ok, message := validator(value, field); !ok {
				return false, message
			}
		}
		return true, ""
	}
}
