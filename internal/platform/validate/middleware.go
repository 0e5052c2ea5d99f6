// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"fmt"
	"net/http"

	"github.com/mitchellh/mapstructure"

	"github.com/HacMan137/BackSite/internal/platform/ctxutil"
	requestutil "github.com/HacMan137/BackSite/internal/platform/request"
	"github.com/HacMan137/BackSite/internal/platform/respond"
)

/*
Body returns a middleware that decodes the JSON body, validates it against
schema and stores the validated fields in the request context.

On failure the request is answered with 400 and next is never invoked.
*/
func Body(schema Schema) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			input, err := requestutil.DecodeObject(request)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			validated, err := schema.Validate(input)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			next.ServeHTTP(writer, request.WithContext(ctxutil.WithPayload(request.Context(), validated)))
		})
	}
}

/*
Bind copies the validated fields of the request into target.

Field names are matched against the `json` struct tags of target, so input
structs can share their tags with the wire format.

Parameters:
  - request: *http.Request (must have passed through [Body])
  - target: any (pointer to a struct)
*/
func Bind(request *http.Request, target any) error {
	return Decode(ctxutil.GetPayload(request.Context()), target)
}

// Decode expands a field map into target using its `json` tags.
func Decode(fields map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  target,
	})
	if err != nil {
		return fmt.Errorf("validate: build decoder: %w", err)
	}

	if err := decoder.Decode(fields); err != nil {
		return fmt.Errorf("validate: decode fields: %w", err)
	}
	return nil
}
