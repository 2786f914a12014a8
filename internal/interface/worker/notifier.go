package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devfolio-api/pkg/events"
	"github.com/oksasatya/devfolio-api/pkg/helpers"
	"github.com/oksasatya/devfolio-api/pkg/mailer"
	mailtpl "github.com/oksasatya/devfolio-api/pkg/mailer/templates"
)

// ErrDrop marks a message that can never succeed; it is not requeued.
var ErrDrop = errors.New("drop message")

// ErrDeliveriesClosed is returned by Serve when the broker ends the
// consumer while the connection is still up.
var ErrDeliveriesClosed = errors.New("delivery channel closed")

const sendTimeout = 15 * time.Second

// Notifier turns account events into emails.
type Notifier struct {
	Mail     mailer.Sender
	AppName  string
	LoginURL string
	Logger   *logrus.Logger
}

func NewNotifier(mail mailer.Sender, appName, loginURL string, logger *logrus.Logger) *Notifier {
	return &Notifier{Mail: mail, AppName: appName, LoginURL: loginURL, Logger: logger}
}

// Handle processes one message body.
func (n *Notifier) Handle(ctx context.Context, body []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return fmt.Errorf("%w: bad json: %v", ErrDrop, err)
	}
	switch head.Type {
	case events.TypeUserRegistered:
		var ev events.UserRegistered
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("%w: bad %s: %v", ErrDrop, head.Type, err)
		}
		return n.welcome(ctx, ev)
	default:
		return fmt.Errorf("%w: unknown event type %q", ErrDrop, head.Type)
	}
}

func (n *Notifier) welcome(ctx context.Context, ev events.UserRegistered) error {
	if ev.Email == "" {
		return fmt.Errorf("%w: %s without email", ErrDrop, ev.Type)
	}
	data := mailtpl.NewWelcomeData(n.AppName, ev.Username, ev.Email,
		mailtpl.WithTime(ev.OccurredAt),
		mailtpl.WithLoginURL(n.LoginURL),
	)
	subject, text, html, err := mailtpl.Render(mailtpl.Welcome, data)
	if err != nil {
		return fmt.Errorf("%w: render welcome: %v", ErrDrop, err)
	}

	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := n.Mail.Send(c, mailer.Message{To: ev.Email, Subject: subject, Text: text, HTML: html}); err != nil {
		return fmt.Errorf("send welcome: %w", err)
	}
	helpers.LogInfo(n.Logger, "welcome email sent", logrus.Fields{"user_id": ev.UserID})
	return nil
}

// Run consumes deliveries until ctx is done or the channel closes.
// Failures marked ErrDrop are rejected; other failures are requeued.
func (n *Notifier) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			n.settle(d, n.Handle(ctx, d.Body))
		}
	}
}

// Serve runs the consumer until ctx is done, the connection reports closed,
// or the delivery channel ends. Only a cancelled ctx yields a nil error.
func (n *Notifier) Serve(ctx context.Context, deliveries <-chan amqp.Delivery, closed <-chan *amqp.Error) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		n.Run(runCtx, deliveries)
		close(done)
	}()

	select {
	case <-ctx.Done():
		<-done
		return nil
	case amqpErr := <-closed:
		cancel()
		<-done
		if amqpErr == nil {
			return errors.New("broker connection closed")
		}
		return fmt.Errorf("broker connection closed: %w", amqpErr)
	case <-done:
		if ctx.Err() != nil {
			return nil
		}
		return ErrDeliveriesClosed
	}
}

func (n *Notifier) settle(d amqp.Delivery, err error) {
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrDrop):
		helpers.LogError(n.Logger, "dropping message", err, logrus.Fields{"message_id": d.MessageId})
		_ = d.Nack(false, false)
	default:
		helpers.LogError(n.Logger, "message failed, requeueing", err, logrus.Fields{"message_id": d.MessageId})
		_ = d.Nack(false, true)
	}
}
