package domain

// MessageRef identifies a chat message
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// IsZero reports whether the reference points nowhere
func (m MessageRef) IsZero() bool {
	return m.ChatID == 0 || m.MessageID == 0
}

// Button is an inline keyboard button. Either Key or URL is set.
type Button struct {
	Text    string
	Key     string
	Payload string
	URL     string
}

// Keyboard is an inline keyboard, row by row
type Keyboard struct {
	Rows [][]Button
}

// NewKeyboard creates a keyboard from rows
func NewKeyboard(rows ...[]Button) *Keyboard {
	return &Keyboard{Rows: rows}
}

// Row groups buttons into a keyboard row
func Row(buttons ...Button) []Button {
	return buttons
}

// Data creates a callback button
func Data(text, key string, payload ...string) Button {
	b := Button{Text: text, Key: key}
	if len(payload) > 0 {
		b.Payload = payload[0]
	}
	return b
}

// Link creates a URL button
func Link(text, url string) Button {
	return Button{Text: text, URL: url}
}
