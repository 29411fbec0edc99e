package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTPSender_Validation(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{Port: 587, From: "a@b.c"})
	assert.Error(t, err, "host is required")

	_, err = NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587})
	assert.Error(t, err, "from is required")

	s, err := NewSMTPSender(SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "mailer",
		Password: "hunter2",
		From:     "Social Calendar <noreply@example.com>",
	})
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestCaptureSender(t *testing.T) {
	c := NewCaptureSender()
	ctx := context.Background()

	id, err := c.Send(ctx, Message{To: "a@b.c", Subject: "hi", TextBody: "body"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "a@b.c", msgs[0].To)

	c.Err = errors.New("boom")
	_, err = c.Send(ctx, Message{To: "x@y.z"})
	assert.Error(t, err)
	assert.Len(t, c.Messages(), 1)
}

func TestCaptureSender_HonorsContext(t *testing.T) {
	c := NewCaptureSender()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Send(ctx, Message{To: "a@b.c"})
	assert.ErrorIs(t, err, context.Canceled)
}
