package testutil

import (
	"context"
	"sync"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/delivery"
)

// RecordingObserver collects delivery results in arrival order.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type RecordingObserver struct {
	mu      sync.Mutex
	results []delivery.Result
}

// Delivered implements delivery.Observer.
func (o *RecordingObserver) Delivered(_ context.Context, r delivery.Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, r)
}

// Results returns a copy of the recorded results.
func (o *RecordingObserver) Results() []delivery.Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]delivery.Result(nil), o.results...)
}

// SentMessage is one call to FakeMessenger.SendText.
type SentMessage struct {
	To   string
	Text string
}

// FakeMessenger records messages and returns Err for every send.
type FakeMessenger struct {
	Err error

	mu   sync.Mutex
	sent []SentMessage
}

// SendText implements delivery.Messenger.
func (m *FakeMessenger) SendText(_ context.Context, to, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMessage{To: to, Text: text})
	return m.Err
}

// Sent returns a copy of the recorded messages.
func (m *FakeMessenger) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.sent...)
}
