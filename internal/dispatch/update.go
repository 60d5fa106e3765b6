// Package dispatch routes inbound chat updates. Updates of one user are
// handled strictly in arrival order; different users run concurrently.
package dispatch

import (
	"context"

	"steampool/internal/conversation"
	"steampool/internal/domain"
)

// Kind is the kind of an inbound update
type Kind int

const (
	KindCommand Kind = iota + 1
	KindText
	KindCallback
)

// String returns the kind name used in logs
func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindText:
		return "text"
	case KindCallback:
		return "callback"
	default:
		return "unknown"
	}
}

// FlowKey is the callback key of buttons that answer the active step
// instead of starting something new.
const FlowKey = "flow"

// Update is one inbound update resolved to a user
type Update struct {
	// ID tags the update in logs
	ID       string
	Kind     Kind
	UserID   int64
	ChatID   int64
	Username string

	Text    string
	Command string
	// Message is the user's message for commands and text, and the message
	// carrying the pressed button for callbacks.
	Message domain.MessageRef

	CallbackID string
	Key        string
	Payload    string

	// Alert is shown to the user when the callback is answered
	Alert string
}

// Input converts the update into conversation input
func (u *Update) Input() conversation.Input {
	in := conversation.Input{
		UserID:   u.UserID,
		ChatID:   u.ChatID,
		Username: u.Username,
		Text:     u.Text,
	}
	if u.Kind == KindCallback {
		in.Choice = u.Payload
	} else {
		in.Message = u.Message
	}
	return in
}

// Panel is where a reply to this update is rendered. Callbacks edit the
// message carrying the button; anything else gets a fresh message.
func (u *Update) Panel() domain.MessageRef {
	if u.Kind == KindCallback && !u.Message.IsZero() {
		return u.Message
	}
	return domain.MessageRef{ChatID: u.ChatID}
}

// Supersedes reports whether the update cancels the active step
func (u *Update) Supersedes() bool {
	switch u.Kind {
	case KindCommand:
		return true
	case KindCallback:
		return u.Key != FlowKey
	default:
		return false
	}
}

// HandlerFunc handles one update
type HandlerFunc func(ctx context.Context, u *Update) error

// Middleware wraps a handler
type Middleware func(HandlerFunc) HandlerFunc
