package mailer

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Message is a rendered email. HTML is optional; Text is the fallback body.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Mailgun sends through the Mailgun HTTP API.
type Mailgun struct {
	client mg.Mailgun
	Sender string
}

func NewMailgun(domain, apiKey, sender string) (*Mailgun, error) {
	if domain == "" || apiKey == "" || sender == "" {
		return nil, errors.New("mailgun domain, api key and sender are required")
	}
	return &Mailgun{client: mg.NewMailgun(domain, apiKey), Sender: sender}, nil
}

// SetAPIBase points the client at another endpoint. The base must end with
// the API version segment, e.g. https://api.eu.mailgun.net/v3.
func (m *Mailgun) SetAPIBase(url string) {
	m.client.SetAPIBase(url)
}

func (m *Mailgun) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("mailgun: empty recipient")
	}
	out := m.client.NewMessage(m.Sender, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		out.SetHtml(msg.HTML)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := m.client.Send(c, out)
	return err
}
