// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/HacMan137/BackSite/internal/platform/redis"
)

const (
	// redisQueuePrefix namespaces queue lists in a shared Redis.
	redisQueuePrefix = "jobs:queue:"

	// redisPopTimeout is how long one BRPOP blocks before re-checking for shutdown.
	redisPopTimeout = 5 * time.Second
)

// RedisBroker queues jobs on Redis lists: LPUSH to publish, BRPOP to consume.
//
// A popped element is gone, which matches the auto-ack semantics of the AMQP broker.
type RedisBroker struct {
	url    string
	logger *slog.Logger
}

// NewRedisBroker returns a broker for the given redis:// URL.
func NewRedisBroker(url string, logger *slog.Logger) *RedisBroker {
	return &RedisBroker{url: url, logger: logger}
}

// Dial opens a new client and checks it with a ping.
func (broker *RedisBroker) Dial(context context.Context) (Channel, error) {
	client, err := redis.NewClient(context, broker.url, broker.logger)
	if err != nil {
		return nil, err
	}
	return &redisChannel{client: client}, nil
}

type redisChannel struct {
	client *goredis.Client
}

// DeclareQueue is a no-op: lists spring into existence on first push.
func (channel *redisChannel) DeclareQueue(context.Context, string) error {
	return nil
}

func (channel *redisChannel) Publish(context context.Context, queue string, body []byte) error {
	if err := channel.client.LPush(context, redisQueuePrefix+queue, body).Err(); err != nil {
		return fmt.Errorf("redis: publish to %s: %w", queue, err)
	}
	return nil
}

func (channel *redisChannel) Consume(context context.Context, queue string) (<-chan Delivery, error) {
	key := redisQueuePrefix + queue
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for context.Err() == nil {
			result, err := channel.client.BRPop(context, redisPopTimeout, key).Result()
			if errors.Is(err, goredis.Nil) {
				continue
			}
			if err != nil {
				// Cancellation or a lost connection; either way the stream ends.
				return
			}

			// result is [key, value]
			select {
			case out <- Delivery{Body: []byte(result[1])}:
			case <-context.Done():
				return
			}
		}
	}()

	return out, nil
}

func (channel *redisChannel) Close() error {
	err := channel.client.Close()
	if errors.Is(err, goredis.ErrClosed) {
		return nil
	}
	return err
}
