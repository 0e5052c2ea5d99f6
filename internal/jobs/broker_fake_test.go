// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/HacMan137/BackSite/internal/jobs"
)

var errBrokerDown = errors.New("connection refused")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// fakeBroker is an in-memory broker. Published bodies land on a shared
// buffered channel that Consume drains.
type fakeBroker struct {
	mu        sync.Mutex
	down      bool
	dials     int
	published [][]byte
	queue     chan jobs.Delivery
	closed    int
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{queue: make(chan jobs.Delivery, 64)}
}

func (broker *fakeBroker) setDown(down bool) {
	broker.mu.Lock()
	defer broker.mu.Unlock()
	broker.down = down
}

func (broker *fakeBroker) dialCount() int {
	broker.mu.Lock()
	defer broker.mu.Unlock()
	return broker.dials
}

func (broker *fakeBroker) closeCount() int {
	broker.mu.Lock()
	defer broker.mu.Unlock()
	return broker.closed
}

func (broker *fakeBroker) messages() [][]byte {
	broker.mu.Lock()
	defer broker.mu.Unlock()
	return append([][]byte(nil), broker.published...)
}

func (broker *fakeBroker) deliver(body string) {
	broker.queue <- jobs.Delivery{Body: []byte(body)}
}

func (broker *fakeBroker) Dial(context context.Context) (jobs.Channel, error) {
	broker.mu.Lock()
	defer broker.mu.Unlock()
	broker.dials++
	if broker.down {
		return nil, errBrokerDown
	}
	return &fakeChannel{broker: broker}, nil
}

type fakeChannel struct {
	broker *fakeBroker
	once   sync.Once
}

func (channel *fakeChannel) DeclareQueue(context context.Context, name string) error {
	return nil
}

func (channel *fakeChannel) Publish(context context.Context, queue string, body []byte) error {
	channel.broker.mu.Lock()
	defer channel.broker.mu.Unlock()
	channel.broker.published = append(channel.broker.published, body)
	return nil
}

func (channel *fakeChannel) Consume(context context.Context, queue string) (<-chan jobs.Delivery, error) {
	out := make(chan jobs.Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-context.Done():
				return
			case delivery := <-channel.broker.queue:
				select {
				case out <- delivery:
				case <-context.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (channel *fakeChannel) Close() error {
	channel.once.Do(func() {
		channel.broker.mu.Lock()
		channel.broker.closed++
		channel.broker.mu.Unlock()
	})
	return nil
}
