// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs

import (
	stdctx "context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/HacMan137/BackSite/internal/platform/constants"
)

// State is the lifecycle position of a [Consumer].
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (state State) String() string {
	switch state {
	case StateStopped:
		return "STOPPED"
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	default:
		return fmt.Sprintf("State(%d)", int32(state))
	}
}

// ErrAlreadyStarted is returned by Start on a consumer that is not STOPPED.
var ErrAlreadyStarted = errors.New("jobs: consumer already started")

// Consumer is the long-running queue listener.
//
// It owns its broker connection exclusively; the producer never shares it.
type Consumer struct {
	broker        Broker
	queue         string
	dispatcher    *Dispatcher
	retryInterval time.Duration
	logger        *slog.Logger

	mu     sync.Mutex
	state  State
	cancel stdctx.CancelFunc
	done   chan struct{}
}

// ConsumerOption customizes a [Consumer].
type ConsumerOption func(*Consumer)

// WithRetryInterval overrides the fixed reconnect backoff.
func WithRetryInterval(interval time.Duration) ConsumerOption {
	return func(consumer *Consumer) {
		if interval > 0 {
			consumer.retryInterval = interval
		}
	}
}

// NewConsumer constructs a STOPPED consumer for queue.
func NewConsumer(broker Broker, queue string, dispatcher *Dispatcher, logger *slog.Logger, options ...ConsumerOption) *Consumer {
	consumer := &Consumer{
		broker:        broker,
		queue:         queue,
		dispatcher:    dispatcher,
		retryInterval: constants.DefaultBrokerRetryInterval,
		logger:        logger.With(slog.String("queue", queue)),
	}
	for _, option := range options {
		option(consumer)
	}
	return consumer
}

// State returns the current lifecycle state.
func (consumer *Consumer) State() State {
	consumer.mu.Lock()
	defer consumer.mu.Unlock()
	return consumer.state
}

/*
Start launches the listener task and returns immediately.

The consumer moves STOPPED → STARTING; it becomes RUNNING once subscribed.
The listener lives until [Consumer.Stop] or until context is cancelled.
*/
func (consumer *Consumer) Start(context stdctx.Context) error {
	consumer.mu.Lock()
	defer consumer.mu.Unlock()

	if consumer.state != StateStopped {
		return ErrAlreadyStarted
	}

	runCtx, cancel := stdctx.WithCancel(context)
	consumer.cancel = cancel
	consumer.done = make(chan struct{})
	consumer.state = StateStarting

	go consumer.run(runCtx, consumer.done)

	consumer.logger.Info("consumer_started")
	return nil
}

/*
Stop signals the listener to stop consuming and waits for it to exit.

Safe to call during active delivery and on a consumer that is already
stopped. context bounds the wait; when it expires the consumer stays
STOPPING until the listener exits, and a later Stop waits on the same
listener.
*/
func (consumer *Consumer) Stop(context stdctx.Context) error {
	consumer.mu.Lock()
	if consumer.state == StateStopped {
		consumer.mu.Unlock()
		return nil
	}
	consumer.state = StateStopping
	cancel, done := consumer.cancel, consumer.done
	consumer.mu.Unlock()

	cancel()

	select {
	case <-done:
		return nil
	case <-context.Done():
		return fmt.Errorf("jobs: consumer did not stop: %w", context.Err())
	}
}

// run is the listener task: connect, consume until the stream ends, repeat.
func (consumer *Consumer) run(context stdctx.Context, done chan<- struct{}) {
	// The listener owns the final transition: the consumer is STOPPED
	// whenever it exits, whoever asked it to.
	defer func() {
		consumer.mu.Lock()
		consumer.state = StateStopped
		consumer.mu.Unlock()
		close(done)
		consumer.logger.Info("consumer_stopped")
	}()

	for {
		channel, deliveries, err := consumer.subscribe(context)
		if err != nil {
			if context.Err() != nil {
				return
			}

			consumer.logger.Warn("consumer_connect_failed",
				slog.Any("error", err),
				slog.Duration("retry_in", consumer.retryInterval),
			)

			// Retry forever; only Stop ends this loop.
			select {
			case <-context.Done():
				return
			case <-time.After(consumer.retryInterval):
				continue
			}
		}

		consumer.transition(StateStarting, StateRunning)
		consumer.logger.Info("consumer_connected")

		for delivery := range deliveries {
			_ = consumer.dispatcher.Dispatch(context, delivery.Body)
		}

		if err := channel.Close(); err != nil {
			consumer.logger.Debug("consumer_close_failed", slog.Any("error", err))
		}

		if context.Err() != nil {
			return
		}

		consumer.transition(StateRunning, StateStarting)
		consumer.logger.Warn("consumer_connection_lost")
	}
}

func (consumer *Consumer) subscribe(context stdctx.Context) (Channel, <-chan Delivery, error) {
	channel, err := consumer.broker.Dial(context)
	if err != nil {
		return nil, nil, err
	}

	if err := channel.DeclareQueue(context, consumer.queue); err != nil {
		_ = channel.Close()
		return nil, nil, err
	}

	deliveries, err := channel.Consume(context, consumer.queue)
	if err != nil {
		_ = channel.Close()
		return nil, nil, err
	}

	return channel, deliveries, nil
}

// transition moves from → to unless Stop has intervened.
func (consumer *Consumer) transition(from, to State) {
	consumer.mu.Lock()
	defer consumer.mu.Unlock()
	if consumer.state == from {
		consumer.state = to
	}
}
