package conversation

import (
	"context"
	"errors"

	"steampool/internal/domain"

	"go.uber.org/zap"
)

// ErrNotModified is returned by Edit when the message already has that content
var ErrNotModified = errors.New("message is not modified")

// Messenger is the part of the chat transport conversations need
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string, kb *domain.Keyboard) (domain.MessageRef, error)
	Edit(ctx context.Context, ref domain.MessageRef, text string, kb *domain.Keyboard) error
	Delete(ctx context.Context, ref domain.MessageRef) error
}

// Present shows text in the panel message. When the panel cannot be edited
// a new message is sent and returned as the new panel. Transport failures
// are logged, never returned.
func Present(ctx context.Context, m Messenger, logger *zap.Logger, panel domain.MessageRef, text string, kb *domain.Keyboard) domain.MessageRef {
	if !panel.IsZero() {
		err := m.Edit(ctx, panel, text, kb)
		if err == nil {
			return panel
		}
		if errors.Is(err, ErrNotModified) {
			logger.Debug("Panel already shows this content",
				zap.Int64("chat_id", panel.ChatID),
				zap.Int("message_id", panel.MessageID),
			)
			return panel
		}
		logger.Warn("Failed to edit panel, sending new",
			zap.Int64("chat_id", panel.ChatID),
			zap.Int("message_id", panel.MessageID),
			zap.Error(err),
		)
	}

	ref, err := m.Send(ctx, panel.ChatID, text, kb)
	if err != nil {
		logger.Warn("Failed to send panel",
			zap.Int64("chat_id", panel.ChatID),
			zap.Error(err),
		)
		return panel
	}
	return ref
}

// Discard deletes a message, logging failures
func Discard(ctx context.Context, m Messenger, logger *zap.Logger, ref domain.MessageRef) {
	if ref.IsZero() {
		return
	}
	if err := m.Delete(ctx, ref); err != nil {
		logger.Debug("Failed to delete message",
			zap.Int64("chat_id", ref.ChatID),
			zap.Int("message_id", ref.MessageID),
			zap.Error(err),
		)
	}
}
