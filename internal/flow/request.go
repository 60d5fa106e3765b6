package flow

import (
	"context"
	"errors"
	"strings"

	"steampool/internal/conversation"
	"steampool/internal/domain"
	"steampool/internal/service"

	"go.uber.org/zap"
)

func (f *Flows) handleRequest(ctx context.Context, t *conversation.Turn, in conversation.Input) conversation.Transition {
	t.Consume(ctx, in)
	back := domain.NewKeyboard(backButton(keyBackToMenu))

	text := strings.TrimSpace(in.Text)
	if text == "" {
		t.Show(ctx, prompt(textEmptyInput, textEnterRequest), domain.NewKeyboard(cancelButton(keyBackToMenu)))
		return conversation.Next(t.Step)
	}
	if !t.Live() {
		return conversation.Done()
	}

	req, err := f.requests.Submit(ctx, t.UserID, displayName(in), text)
	if errors.Is(err, service.ErrDuplicateRequest) {
		t.Show(ctx, textDuplicateRequest, back)
		return conversation.Done()
	}
	if err != nil {
		return f.failTurn(ctx, t, "Failed to submit request", err)
	}

	f.logger.Info("Request submitted",
		zap.Int64("user_id", t.UserID),
		zap.String("id", req.ID),
	)
	t.Show(ctx, "✅ Заявка принята: "+req.Text, back)
	return conversation.Done()
}
