package handler

import (
	"context"
	"strconv"
	"strings"

	"steampool/internal/conversation"
	"steampool/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Messenger sends, edits and deletes bot messages. The Bot API calls take
// no context; ctx is accepted for the interface only.
type Messenger struct {
	bot    *tele.Bot
	logger *zap.Logger
}

// NewMessenger creates a Telegram messenger
func NewMessenger(bot *tele.Bot, logger *zap.Logger) *Messenger {
	return &Messenger{bot: bot, logger: logger}
}

// Send sends a new message
func (m *Messenger) Send(_ context.Context, chatID int64, text string, kb *domain.Keyboard) (domain.MessageRef, error) {
	msg, err := m.bot.Send(&tele.Chat{ID: chatID}, text, options(kb)...)
	if err != nil {
		return domain.MessageRef{}, err
	}
	return domain.MessageRef{ChatID: chatID, MessageID: msg.ID}, nil
}

// Edit replaces the text and keyboard of a message
func (m *Messenger) Edit(_ context.Context, ref domain.MessageRef, text string, kb *domain.Keyboard) error {
	_, err := m.bot.Edit(stored(ref), text, options(kb)...)
	if err != nil && isNotModified(err) {
		return conversation.ErrNotModified
	}
	return err
}

// Delete deletes a message
func (m *Messenger) Delete(_ context.Context, ref domain.MessageRef) error {
	return m.bot.Delete(stored(ref))
}

// Answer acknowledges a callback query, optionally with an alert
func (m *Messenger) Answer(_ context.Context, callbackID, text string, alert bool) error {
	return m.bot.Respond(&tele.Callback{ID: callbackID}, &tele.CallbackResponse{
		Text:      text,
		ShowAlert: alert,
	})
}

func stored(ref domain.MessageRef) tele.StoredMessage {
	return tele.StoredMessage{
		MessageID: strconv.Itoa(ref.MessageID),
		ChatID:    ref.ChatID,
	}
}

func options(kb *domain.Keyboard) []interface{} {
	if kb == nil {
		return nil
	}
	return []interface{}{renderKeyboard(kb)}
}

// isNotModified reports whether Telegram refused an edit that changes nothing
func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}

// renderKeyboard converts a keyboard into inline markup
func renderKeyboard(kb *domain.Keyboard) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(kb.Rows))
	for _, r := range kb.Rows {
		btns := make([]tele.Btn, 0, len(r))
		for _, b := range r {
			switch {
			case b.URL != "":
				btns = append(btns, markup.URL(b.Text, b.URL))
			case b.Payload != "":
				btns = append(btns, markup.Data(b.Text, b.Key, b.Payload))
			default:
				btns = append(btns, markup.Data(b.Text, b.Key))
			}
		}
		rows = append(rows, markup.Row(btns...))
	}
	markup.Inline(rows...)
	return markup
}
