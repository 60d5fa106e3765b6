package testutil

import (
	"context"
	"sync"

	"steampool/internal/domain"
)

// Call is one recorded transport call
type Call struct {
	Method     string
	ChatID     int64
	Ref        domain.MessageRef
	Text       string
	Keyboard   *domain.Keyboard
	CallbackID string
	Alert      bool
}

// FakeMessenger records transport calls and hands out message ids
type FakeMessenger struct {
	mu     sync.Mutex
	calls  []Call
	nextID int

	SendErr   error
	EditErr   error
	DeleteErr error
	// OnEdit runs before an edit is recorded
	OnEdit func()
}

// NewFakeMessenger creates a recording messenger
func NewFakeMessenger() *FakeMessenger {
	return &FakeMessenger{nextID: 100}
}

func (m *FakeMessenger) Send(_ context.Context, chatID int64, text string, kb *domain.Keyboard) (domain.MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Method: "send", ChatID: chatID, Text: text, Keyboard: kb})
	if m.SendErr != nil {
		return domain.MessageRef{}, m.SendErr
	}
	m.nextID++
	return domain.MessageRef{ChatID: chatID, MessageID: m.nextID}, nil
}

func (m *FakeMessenger) Edit(_ context.Context, ref domain.MessageRef, text string, kb *domain.Keyboard) error {
	if m.OnEdit != nil {
		m.OnEdit()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Method: "edit", ChatID: ref.ChatID, Ref: ref, Text: text, Keyboard: kb})
	return m.EditErr
}

func (m *FakeMessenger) Delete(_ context.Context, ref domain.MessageRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Method: "delete", ChatID: ref.ChatID, Ref: ref})
	return m.DeleteErr
}

func (m *FakeMessenger) Answer(_ context.Context, callbackID, text string, alert bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Method: "answer", CallbackID: callbackID, Text: text, Alert: alert})
	return nil
}

// Calls returns every recorded call
func (m *FakeMessenger) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Count returns the number of calls of a method
func (m *FakeMessenger) Count(method string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// LastShown returns the latest call that displayed text
func (m *FakeMessenger) LastShown() Call {
	calls := m.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == "send" || calls[i].Method == "edit" {
			return calls[i]
		}
	}
	return Call{}
}

// Reset forgets recorded calls
func (m *FakeMessenger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Keys returns the callback keys of a keyboard, row by row
func Keys(kb *domain.Keyboard) []string {
	if kb == nil {
		return nil
	}
	var keys []string
	for _, row := range kb.Rows {
		for _, b := range row {
			if b.Key != "" {
				keys = append(keys, b.Key)
			}
		}
	}
	return keys
}
