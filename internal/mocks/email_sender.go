package mocks

import (
	"context"
	"sync"

	"tourbook/pkg/email"
)

// EmailSender records messages instead of delivering them.
type EmailSender struct {
	mu   sync.Mutex
	Sent []*email.Message
	Err  error
}

var _ email.Sender = (*EmailSender)(nil)

func (m *EmailSender) Send(ctx context.Context, msg *email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// Last returns the most recently sent message, or nil.
func (m *EmailSender) Last() *email.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return m.Sent[len(m.Sent)-1]
}
