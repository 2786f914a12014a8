package templates

import (
	"strings"
	"time"
)

type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithLoginURL(url string) Option {
	return func(d *EmailData) { d.LoginURL = strings.TrimSpace(url) }
}

// NewWelcomeData builds the data for the welcome email.
func NewWelcomeData(appName, name, email string, opts ...Option) EmailData {
	d := EmailData{Name: name, Email: email, AppName: appName}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
