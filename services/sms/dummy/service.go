package dummysms

import (
	"sync"

	"github.com/edubridge/backend/core"
)

// service records sent messages for inspection in tests.
type service struct {
	mu   sync.Mutex
	sent []core.TextMessage
}

var _ core.SMSService = (*service)(nil)

func NewService() *service { //nolint:revive
	return &service{sent: make([]core.TextMessage, 0)}
}

func (svc *service) SendMessages(messages ...*core.TextMessage) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, msg := range messages {
		if msg == nil || msg.To == "" || msg.Body == "" {
			continue
		}
		svc.sent = append(svc.sent, *msg)
	}
}

// SentMessages returns a copy of everything sent so far.
func (svc *service) SentMessages() []core.TextMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]core.TextMessage, len(svc.sent))
	copy(out, svc.sent)
	return out
}
