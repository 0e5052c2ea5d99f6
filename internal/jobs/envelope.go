// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package jobs dispatches out-of-band side effects over a message queue.

# Architecture

  - Producer: called synchronously from request handling. One fresh broker
    connection per call; failures are reported as false, never as errors.
  - Consumer: one long-lived listener per process. Reconnects forever with a
    fixed backoff, consumes with auto-ack and dispatches each envelope through
    a closed command table.
  - Broker: the transport seam. RabbitMQ (amqp091-go) is the default; Redis
    lists are the alternative.

Delivery is at-most-once: a message is acknowledged as soon as it is
delivered, before its handler runs. There is no retry or dead-letter queue.
*/
package jobs

import (
	"encoding/json"
	"fmt"
)

// Command names a side effect the consumer knows how to run.
type Command string

// The closed command table. Anything else is logged and dropped.
const (
	CommandSendVerificationEmail Command = "sendVerificationEmail"
)

// Envelope is the wire shape exchanged over the queue.
type Envelope struct {
	Command Command        `json:"command"`
	Params  map[string]any `json:"params"`
}

// Encode serializes the envelope as JSON.
func (envelope Envelope) Encode() ([]byte, error) {
	if envelope.Params == nil {
		envelope.Params = map[string]any{}
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("jobs: encode envelope: %w", err)
	}
	return body, nil
}

// DecodeEnvelope parses a message body.
func DecodeEnvelope(body []byte) (Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Envelope{}, fmt.Errorf("jobs: decode envelope: %w", err)
	}
	return envelope, nil
}
