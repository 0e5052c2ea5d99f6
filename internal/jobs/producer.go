// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs

import (
	stdctx "context"
	"log/slog"
	"time"
)

// publishTimeout bounds one whole enqueue attempt (dial, declare, publish, close).
const publishTimeout = 10 * time.Second

// Producer publishes command envelopes.
//
// It keeps no connection between calls; every [Producer.Enqueue] dials,
// publishes and closes.
type Producer struct {
	broker Broker
	logger *slog.Logger
}

// NewProducer constructs a new [Producer].
func NewProducer(broker Broker, logger *slog.Logger) *Producer {
	return &Producer{broker: broker, logger: logger}
}

/*
Enqueue publishes {command, params} to the durable queue.

It never returns an error: any failure is logged with full detail and
reported as false so the caller can tell the user to try again later.

Parameters:
  - context: context.Context
  - command: Command
  - params: map[string]any (the command's named arguments)
  - queue: string

Returns:
  - bool: true once the broker accepted the message
*/
func (producer *Producer) Enqueue(context stdctx.Context, command Command, params map[string]any, queue string) bool {
	logger := producer.logger.With(slog.String("command", string(command)), slog.String("queue", queue))

	body, err := Envelope{Command: command, Params: params}.Encode()
	if err != nil {
		logger.ErrorContext(context, "enqueue_failed", slog.String("stage", "encode"), slog.Any("error", err))
		return false
	}

	// An enqueue attempt is bounded and never retried.
	attemptCtx, cancel := stdctx.WithTimeout(context, publishTimeout)
	defer cancel()

	channel, err := producer.broker.Dial(attemptCtx)
	if err != nil {
		logger.ErrorContext(context, "enqueue_failed", slog.String("stage", "dial"), slog.Any("error", err))
		return false
	}
	defer func() {
		if err := channel.Close(); err != nil {
			logger.WarnContext(context, "enqueue_close_failed", slog.Any("error", err))
		}
	}()

	if err := channel.DeclareQueue(attemptCtx, queue); err != nil {
		logger.ErrorContext(context, "enqueue_failed", slog.String("stage", "declare"), slog.Any("error", err))
		return false
	}

	if err := channel.Publish(attemptCtx, queue, body); err != nil {
		logger.ErrorContext(context, "enqueue_failed", slog.String("stage", "publish"), slog.Any("error", err))
		return false
	}

	logger.DebugContext(context, "enqueue_succeeded")
	return true
}
