// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate checks inbound request bodies against declarative schemas.
//
// # Architecture
//
// A [Schema] is an ordered list of [Field] declarations. Each field carries at
// most one rule of each kind (type, pattern, custom) and is either required or
// optional. [Schema.Validate] walks the fields in declaration order and stops at
// the first failure; there is no aggregation of multiple errors.
//
// Fields not declared in the schema are ignored and never forwarded.
//
// Over HTTP the schema runs as a middleware stage ([Body]) before any handler
// logic; handlers then read the validated values with [Bind].
package validate

import (
	"fmt"
	"math"
	"regexp"

	"github.com/HacMan137/BackSite/internal/platform/apperr"
)

// Type names a JSON primitive a field value must have.
type Type string

const (
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeObject  Type = "object"
	TypeArray   Type = "array"
)

// ValidatorFunc is a custom rule. It receives the value and the field name and
// returns ok=true, or ok=false with a client-facing failure message.
type ValidatorFunc func(value any, field string) (ok bool, message string)

// Field declares one key of the expected request body.
type Field struct {
	Name     string
	Required bool

	// Type, when set, is checked before any other rule.
	Type Type

	// Pattern must match the whole string value.
	Pattern        *regexp.Regexp
	PatternMessage string

	Custom ValidatorFunc
}

// Schema is an ordered set of field declarations.
type Schema []Field

// # Field Constructors

// Require declares a required field of the given type.
func Require(name string, kind Type) Field {
	return Field{Name: name, Required: true, Type: kind}
}

// Optional declares an optional field of the given type.
//
// A missing optional field is filled with "" and its pattern and custom rules
// still run against that value.
func Optional(name string, kind Type) Field {
	return Field{Name: name, Type: kind}
}

// Matching adds a full-match pattern rule. An empty message selects the default.
//
// The expression is anchored at both ends if it is not already.
func (field Field) Matching(expression, message string) Field {
	field.Pattern = regexp.MustCompile(anchor(expression))
	field.PatternMessage = message
	return field
}

// With adds a custom validator.
func (field Field) With(validator ValidatorFunc) Field {
	field.Custom = validator
	return field
}

// # Validation

/*
Validate checks input against the schema.

Parameters:
  - input: map[string]any (the decoded JSON object)

Returns:
  - map[string]any: Only the declared fields, with their validated values
  - error: *apperr.AppError (VALIDATION_ERROR) for the first failing field
*/
func (schema Schema) Validate(input map[string]any) (map[string]any, error) {
	validated := make(map[string]any, len(schema))

	for _, field := range schema {
		value, present := input[field.Name]

		if !present {
			if field.Required {
				return nil, fail(field.Name, fmt.Sprintf("Missing required key %s", field.Name))
			}

			// Optional-missing: the empty default is injected and the
			// field's rules still run against it. A pattern that rejects ""
			// therefore rejects the omission too.
			if message, ok := field.checkRules(""); !ok {
				return nil, fail(field.Name, message)
			}
			validated[field.Name] = ""
			continue
		}

		if message, ok := field.check(value); !ok {
			return nil, fail(field.Name, message)
		}

		validated[field.Name] = value
	}

	return validated, nil
}

func (field Field) check(value any) (string, bool) {
	if field.Type != "" && !isType(value, field.Type) {
		return fmt.Sprintf("Expected %s to be of type %s", field.Name, field.Type), false
	}
	return field.checkRules(value)
}

// checkRules runs the pattern and custom rules, skipping the type check.
func (field Field) checkRules(value any) (string, bool) {
	if field.Pattern != nil {
		text, isString := value.(string)
		if !isString || !field.Pattern.MatchString(text) {
			if field.PatternMessage != "" {
				return field.PatternMessage, false
			}
			return fmt.Sprintf("%s does not match the input requirements", field.Name), false
		}
	}

	if field.Custom != nil {
		if ok, message := field.Custom(value, field.Name); !ok {
			if message == "" {
				message = fmt.Sprintf("%s does not match the input requirements", field.Name)
			}
			return message, false
		}
	}

	return "", true
}

// isType reports whether a decoded JSON value has the declared primitive type.
func isType(value any, kind Type) bool {
	switch kind {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeNumber:
		switch value.(type) {
		case float64, float32, int, int64, int32:
			return true
		}
		return false
	case TypeInteger:
		switch number := value.(type) {
		case int, int64, int32:
			return true
		case float64:
			return number == math.Trunc(number) && !math.IsInf(number, 0)
		}
		return false
	case TypeObject:
		_, ok := value.(map[string]any)
		return ok
	case TypeArray:
		_, ok := value.([]any)
		return ok
	default:
		return false
	}
}

func fail(field, message string) *apperr.AppError {
	return apperr.ValidationError(message, apperr.FieldError{Field: field, Message: message})
}

func anchor(expression string) string {
	return `^(?:` + expression + `)$`
}
