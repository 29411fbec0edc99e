// Package mail abstracts outbound email delivery behind a narrow Sender
// interface so the reminder engine never depends on a concrete transport.
package mail

import "context"

// Message represents a single outbound email.
type Message struct {
	To       string // recipient email address
	Subject  string // email subject
	TextBody string // plain-text body
	HTMLBody string // HTML alternative body, optional
}

// Sender delivers a message to one recipient and returns a message ID for
// tracking. Implementations must honor ctx cancellation and deadlines.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}
