// Package bridge implements the alternate-bot backends: fire-and-forget
// delivery of the user's text to a remote bot. The remote bot's actual
// reply, if any, arrives out-of-band and is never consumed here; a
// successful Send only means the message was acknowledged.
package bridge

import (
	"context"
	"errors"
)

// Common errors returned by bridge constructors and Send.
var (
	ErrEmptyText      = errors.New("message text cannot be empty")
	ErrMissingTarget  = errors.New("no target channel configured")
	ErrBridgeDisabled = errors.New("bridge is not configured")
)

// Bridge delivers text to a remote bot. channel optionally overrides the
// configured default target; pass "" to use the default.
type Bridge interface {
	// Send delivers text and returns once the remote side acknowledges
	// receipt.
	Send(ctx context.Context, text, channel string) error
	// Ack is the fixed user-visible acknowledgment line shown in place of
	// a reply.
	Ack() string
	// Name identifies the bridge in logs.
	Name() string
}

// MockBridge records sends for tests. FailWith, when set, is returned by
// every Send.
type MockBridge struct {
	Sent     []MockSend
	FailWith error
	AckText  string
}

// MockSend is one recorded Send call.
type MockSend struct {
	Text    string
	Channel string
}

func NewMockBridge() *MockBridge {
	return &MockBridge{AckText: "Message sent. Check the other app for a response!"}
}

func (m *MockBridge) Send(_ context.Context, text, channel string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Sent = append(m.Sent, MockSend{Text: text, Channel: channel})
	return nil
}

func (m *MockBridge) Ack() string  { return m.AckText }
func (m *MockBridge) Name() string { return "mock" }
