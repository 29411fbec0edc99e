package mail

import (
	"context"
	"fmt"
	"sync"
)

// CaptureSender records messages instead of delivering them. It backs tests
// and the CLI's offline mode. Safe for concurrent use.
type CaptureSender struct {
	mu       sync.Mutex
	messages []Message

	// Err, when non-nil, is returned by every Send. Set it to simulate
	// transport failures.
	Err error
}

// NewCaptureSender returns an empty capturing sender.
func NewCaptureSender() *CaptureSender {
	return &CaptureSender{}
}

// Send records the message and returns a synthetic message ID.
func (c *CaptureSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return "", c.Err
	}
	c.messages = append(c.messages, msg)
	return fmt.Sprintf("capture-%d", len(c.messages)), nil
}

// Messages returns a copy of everything sent so far.
func (c *CaptureSender) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}
