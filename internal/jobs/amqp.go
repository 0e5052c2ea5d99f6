// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpDialTimeout bounds the TCP + handshake phase of a connection attempt.
const amqpDialTimeout = 10 * time.Second

// AMQPBroker connects to RabbitMQ.
type AMQPBroker struct {
	url string
}

// NewAMQPBroker returns a broker for the given amqp:// URL.
func NewAMQPBroker(url string) *AMQPBroker {
	return &AMQPBroker{url: url}
}

// Dial opens a connection and a channel on it.
func (broker *AMQPBroker) Dial(_ context.Context) (Channel, error) {
	connection, err := amqp.DialConfig(broker.url, amqp.Config{
		Dial:      amqp.DefaultDial(amqpDialTimeout),
		Heartbeat: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("amqp: dial: %w", err)
	}

	channel, err := connection.Channel()
	if err != nil {
		_ = connection.Close()
		return nil, fmt.Errorf("amqp: open channel: %w", err)
	}

	return &amqpChannel{connection: connection, channel: channel}, nil
}

type amqpChannel struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	closeOnce  sync.Once
}

func (channel *amqpChannel) DeclareQueue(_ context.Context, name string) error {
	// durable, not auto-deleted, not exclusive, wait for the server
	if _, err := channel.channel.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("amqp: declare queue %s: %w", name, err)
	}
	return nil
}

func (channel *amqpChannel) Publish(context context.Context, queue string, body []byte) error {
	err := channel.channel.PublishWithContext(context, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("amqp: publish to %s: %w", queue, err)
	}
	return nil
}

func (channel *amqpChannel) Consume(context context.Context, queue string) (<-chan Delivery, error) {
	// auto-ack: the server forgets the message as soon as it is delivered
	deliveries, err := channel.channel.Consume(queue, "", true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("amqp: consume %s: %w", queue, err)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-context.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					return
				}
				select {
				case out <- Delivery{Body: delivery.Body}:
				case <-context.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (channel *amqpChannel) Close() error {
	var err error
	channel.closeOnce.Do(func() {
		_ = channel.channel.Close()
		if !channel.connection.IsClosed() {
			err = channel.connection.Close()
		}
	})
	return err
}
