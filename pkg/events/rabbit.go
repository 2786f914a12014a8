package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Rabbit owns one AMQP connection and channel bound to a durable queue.
// The API publishes on it and the notifier consumes from it.
type Rabbit struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
}

func DialRabbit(url, queue string) (*Rabbit, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Rabbit{conn: conn, ch: ch, Queue: queue}, nil
}

func (r *Rabbit) Close() {
	if r == nil {
		return
	}
	if r.ch != nil {
		_ = r.ch.Close()
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
}

// typed lets the AMQP Type property be filled from the payload.
type typed interface{ EventType() string }

func (e UserRegistered) EventType() string { return e.Type }

// PublishJSON publishes body as a persistent JSON message on the queue.
func (r *Rabbit) PublishJSON(ctx context.Context, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         b,
	}
	if t, ok := body.(typed); ok {
		msg.Type = t.EventType()
	}
	return r.ch.PublishWithContext(ctx, "", r.Queue, false, false, msg)
}

// Consume starts a manual-ack consumer with the given prefetch.
func (r *Rabbit) Consume(prefetch int) (<-chan amqp.Delivery, error) {
	if err := r.ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}
	return r.ch.Consume(r.Queue, "", false, false, false, false, nil)
}

// NotifyClose reports when the connection drops.
func (r *Rabbit) NotifyClose() <-chan *amqp.Error {
	return r.conn.NotifyClose(make(chan *amqp.Error, 1))
}
