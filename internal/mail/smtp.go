package mail

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig holds the connection settings for an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // sender address, e.g. `Social Calendar <noreply@example.com>`
}

// SMTPSender delivers mail through an SMTP relay using wneessen/go-mail.
// A single client is reused across sends; go-mail handles reconnects.
type SMTPSender struct {
	cfg    SMTPConfig
	client *gomail.Client
}

// NewSMTPSender builds a sender from the given config. Port 465 selects
// implicit TLS; everything else uses opportunistic STARTTLS, which covers
// the common 587 submission setup.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Port == 465 {
		opts = append(opts, gomail.WithSSLPort(false))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &SMTPSender{cfg: cfg, client: client}, nil
}

// Send delivers one message and returns its Message-ID.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (string, error) {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return "", fmt.Errorf("set from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return "", fmt.Errorf("set to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
	if msg.HTMLBody != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)
	}

	id := uuid.NewString()
	m.SetMessageIDWithValue(id)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return "", fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return id, nil
}
