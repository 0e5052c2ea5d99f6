// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HacMan137/BackSite/internal/jobs"
	"github.com/HacMan137/BackSite/internal/platform/constants"
)

type collector struct {
	mu    sync.Mutex
	names []string
}

func (c *collector) handle(ctx context.Context, params jobs.VerificationEmailParams) error {
	if params.Username == "panic" {
		panic("handler bug")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = append(c.names, params.Username)
	return nil
}

func (c *collector) seen() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.names...)
}

func newTestConsumer(broker jobs.Broker, handled *collector, interval time.Duration) *jobs.Consumer {
	dispatcher := jobs.NewDispatcher(jobs.Handlers{SendVerificationEmail: handled.handle}, discardLogger())
	return jobs.NewConsumer(broker, constants.QueueEmailJobs, dispatcher, discardLogger(), jobs.WithRetryInterval(interval))
}

func verificationBody(username string) string {
	return `{"command":"sendVerificationEmail","params":{"username":"` + username + `","email":"x@y.com","secret":"s"}}`
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "STOPPED", jobs.StateStopped.String())
	assert.Equal(t, "STARTING", jobs.StateStarting.String())
	assert.Equal(t, "RUNNING", jobs.StateRunning.String())
	assert.Equal(t, "STOPPING", jobs.StateStopping.String())
}

func TestConsumer_ContinuesAfterBadMessages(t *testing.T) {
	broker := newFakeBroker()
	handled := &collector{}
	consumer := newTestConsumer(broker, handled, 10*time.Millisecond)

	require.NoError(t, consumer.Start(context.Background()))
	require.Eventually(t, func() bool { return consumer.State() == jobs.StateRunning }, time.Second, 5*time.Millisecond)

	broker.deliver(verificationBody("first"))
	broker.deliver(`{"command":"unknownThing","params":{}}`)
	broker.deliver(`garbage`)
	broker.deliver(verificationBody("panic"))
	broker.deliver(verificationBody("second"))

	require.Eventually(t, func() bool { return len(handled.seen()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"first", "second"}, handled.seen())
	assert.Equal(t, jobs.StateRunning, consumer.State())

	require.NoError(t, consumer.Stop(context.Background()))
	assert.Equal(t, jobs.StateStopped, consumer.State())
}

func TestConsumer_RetriesUntilBrokerIsUp(t *testing.T) {
	broker := newFakeBroker()
	broker.setDown(true)
	handled := &collector{}
	consumer := newTestConsumer(broker, handled, 5*time.Millisecond)

	require.NoError(t, consumer.Start(context.Background()))
	require.Eventually(t, func() bool { return broker.dialCount() >= 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, jobs.StateStarting, consumer.State())

	broker.setDown(false)
	require.Eventually(t, func() bool { return consumer.State() == jobs.StateRunning }, time.Second, 5*time.Millisecond)

	broker.deliver(verificationBody("late"))
	require.Eventually(t, func() bool { return len(handled.seen()) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, consumer.Stop(context.Background()))
}

func TestConsumer_StopWhileRetrying(t *testing.T) {
	broker := newFakeBroker()
	broker.setDown(true)
	consumer := newTestConsumer(broker, &collector{}, time.Hour)

	require.NoError(t, consumer.Start(context.Background()))
	require.Eventually(t, func() bool { return broker.dialCount() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, consumer.Stop(ctx))
	assert.Equal(t, jobs.StateStopped, consumer.State())
}

func TestConsumer_Lifecycle(t *testing.T) {
	broker := newFakeBroker()
	consumer := newTestConsumer(broker, &collector{}, 10*time.Millisecond)

	assert.Equal(t, jobs.StateStopped, consumer.State())
	require.NoError(t, consumer.Stop(context.Background()), "stopping a stopped consumer is a no-op")

	require.NoError(t, consumer.Start(context.Background()))
	assert.ErrorIs(t, consumer.Start(context.Background()), jobs.ErrAlreadyStarted)

	require.NoError(t, consumer.Stop(context.Background()))
	assert.Equal(t, jobs.StateStopped, consumer.State())
	assert.Equal(t, broker.dialCount(), broker.closeCount())

	// A stopped consumer can be started again.
	require.NoError(t, consumer.Start(context.Background()))
	require.NoError(t, consumer.Stop(context.Background()))
}

/*
TestConsumer_StopTimeoutThenStopAgain blocks the listener inside a handler so
the first Stop gives up. The consumer must not be wedged in STOPPING: a later
Stop waits for the same listener and the consumer can start again.
*/
func TestConsumer_StopTimeoutThenStopAgain(t *testing.T) {
	broker := newFakeBroker()
	entered := make(chan struct{})
	release := make(chan struct{})

	blocking := func(ctx context.Context, params jobs.VerificationEmailParams) error {
		close(entered)
		<-release
		return nil
	}
	dispatcher := jobs.NewDispatcher(jobs.Handlers{SendVerificationEmail: blocking}, discardLogger())
	consumer := jobs.NewConsumer(broker, constants.QueueEmailJobs, dispatcher, discardLogger(), jobs.WithRetryInterval(10*time.Millisecond))

	require.NoError(t, consumer.Start(context.Background()))
	broker.deliver(verificationBody("slow"))
	<-entered

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, consumer.Stop(short), context.DeadlineExceeded)
	assert.Equal(t, jobs.StateStopping, consumer.State())
	assert.ErrorIs(t, consumer.Start(context.Background()), jobs.ErrAlreadyStarted)

	close(release)

	require.NoError(t, consumer.Stop(context.Background()))
	assert.Equal(t, jobs.StateStopped, consumer.State())

	require.NoError(t, consumer.Start(context.Background()))
	require.NoError(t, consumer.Stop(context.Background()))
}
