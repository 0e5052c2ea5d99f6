// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/HacMan137/BackSite/internal/platform/config"
)

// # Transport Contracts

// Broker opens connections to a message broker.
type Broker interface {

	// Dial opens a new connection. Each call returns an independent [Channel].
	Dial(context context.Context) (Channel, error)
}

// Channel is one open broker connection.
type Channel interface {

	// DeclareQueue makes sure a durable queue named name exists.
	DeclareQueue(context context.Context, name string) error

	// Publish appends body to queue as a persistent message.
	Publish(context context.Context, queue string, body []byte) error

	/*
		Consume subscribes to queue with automatic acknowledgement.

		The returned channel is closed when context is cancelled or when the
		underlying connection is lost; the caller tells the two apart by
		checking context.
	*/
	Consume(context context.Context, queue string) (<-chan Delivery, error)

	// Close releases the connection. Safe to call more than once.
	Close() error
}

// Delivery is one message handed to the consumer.
type Delivery struct {
	Body []byte
}

// NewBroker returns the broker selected by driver ([config.BrokerAMQP] or [config.BrokerRedis]).
func NewBroker(driver string, cfg *config.Config, logger *slog.Logger) (Broker, error) {
	switch driver {
	case config.BrokerAMQP:
		return NewAMQPBroker(cfg.AMQPURL), nil
	case config.BrokerRedis:
		return NewRedisBroker(cfg.RedisURL, logger), nil
	default:
		return nil, fmt.Errorf("jobs: unsupported broker driver %q", driver)
	}
}

// Ping dials the broker once and hangs up. Used by readiness probes.
func Ping(context context.Context, broker Broker) error {
	channel, err := broker.Dial(context)
	if err != nil {
		return err
	}
	return channel.Close()
}
