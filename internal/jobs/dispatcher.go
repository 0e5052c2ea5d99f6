// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/mitchellh/mapstructure"
)

// ErrUnknownCommand is returned for envelopes outside the command table.
var ErrUnknownCommand = errors.New("jobs: unknown command")

// Handlers binds every [Command] to its implementation.
type Handlers struct {
	SendVerificationEmail func(context context.Context, params VerificationEmailParams) error
}

// Dispatcher decodes envelopes and runs the matching handler.
type Dispatcher struct {
	handlers Handlers
	logger   *slog.Logger
}

// NewDispatcher constructs a new [Dispatcher].
func NewDispatcher(handlers Handlers, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{handlers: handlers, logger: logger}
}

/*
Dispatch runs one message.

Every failure (bad JSON, unknown command, bad params, handler error, handler
panic) is logged here and returned; it never propagates as a panic. The
consumer ignores the returned error and moves on to the next message.
*/
func (dispatcher *Dispatcher) Dispatch(context context.Context, body []byte) (err error) {
	envelope, err := DecodeEnvelope(body)
	if err != nil {
		dispatcher.logger.ErrorContext(context, "job_envelope_invalid", slog.Any("error", err), slog.Int("body_bytes", len(body)))
		return err
	}

	logger := dispatcher.logger.With(slog.String("command", string(envelope.Command)))
	logger.DebugContext(context, "job_received", slog.Any("params", redactParams(envelope.Params)))

	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("jobs: handler panic: %v", recovered)
			logger.ErrorContext(context, "job_handler_panicked",
				slog.Any("panic", recovered),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	switch envelope.Command {
	case CommandSendVerificationEmail:
		var params VerificationEmailParams
		if err := decodeParams(envelope.Params, &params); err != nil {
			logger.ErrorContext(context, "job_params_invalid", slog.Any("error", err))
			return err
		}
		err = dispatcher.run(context, logger, func() error {
			return dispatcher.handlers.SendVerificationEmail(context, params)
		}, dispatcher.handlers.SendVerificationEmail == nil)

	default:
		logger.WarnContext(context, "job_command_unknown")
		return fmt.Errorf("%w: %q", ErrUnknownCommand, envelope.Command)
	}

	return err
}

func (dispatcher *Dispatcher) run(context context.Context, logger *slog.Logger, handler func() error, missing bool) error {
	if missing {
		logger.ErrorContext(context, "job_handler_missing")
		return fmt.Errorf("jobs: no handler registered")
	}

	if err := handler(); err != nil {
		logger.ErrorContext(context, "job_handler_failed",
			slog.Any("error", err),
			slog.String("stack", string(debug.Stack())),
		)
		return err
	}

	logger.InfoContext(context, "job_completed")
	return nil
}

// redactedKeys lists params that must never reach the logs.
var redactedKeys = []string{"secret", "password"}

// redactParams returns a copy of params with sensitive values masked.
func redactParams(params map[string]any) map[string]any {
	masked := make(map[string]any, len(params))
	for key, value := range params {
		masked[key] = value
	}
	for _, key := range redactedKeys {
		if _, ok := masked[key]; ok {
			masked[key] = "[REDACTED]"
		}
	}
	return masked
}

// decodeParams expands the params object into a typed struct.
//
// Unknown keys and missing keys are both rejected.
func decodeParams(params map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		ErrorUnset:  true,
		Result:      target,
	})
	if err != nil {
		return fmt.Errorf("jobs: build params decoder: %w", err)
	}

	if err := decoder.Decode(params); err != nil {
		return fmt.Errorf("jobs: decode params: %w", err)
	}
	return nil
}
