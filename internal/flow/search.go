package flow

import (
	"context"
	"strings"

	"steampool/internal/conversation"
	"steampool/internal/domain"
	"steampool/internal/probe"

	"go.uber.org/zap"
)

// handleSearch finds the accounts holding the requested game and probes
// them in store order until one logs in.
func (f *Flows) handleSearch(ctx context.Context, t *conversation.Turn, in conversation.Input) conversation.Transition {
	t.Consume(ctx, in)

	query := strings.TrimSpace(in.Text)
	if query == "" {
		t.Show(ctx, prompt(textEmptyInput, textEnterQuery), domain.NewKeyboard(cancelButton(keyBackToMenu)))
		return conversation.Next(t.Step)
	}

	game, candidates, err := f.accounts.SearchByGame(ctx, query)
	if err != nil {
		return f.failTurn(ctx, t, "Failed to search accounts", err)
	}
	f.logger.Info("Search resolved",
		zap.Int64("user_id", t.UserID),
		zap.String("query", query),
		zap.String("game", game),
		zap.Int("candidates", len(candidates)),
	)

	if len(candidates) == 0 {
		text, kb := searchEmptyScreen(game, false)
		t.Show(ctx, text, kb)
		return conversation.Done()
	}

	t.Show(ctx, textSearching, domain.NewKeyboard(cancelButton(keyBackToMenu)))
	for _, acc := range candidates {
		if !t.Live() || ctx.Err() != nil {
			return conversation.Done()
		}

		res := f.prober.Check(ctx, acc.Login, acc.Secret)
		f.logger.Debug("Search candidate probed",
			zap.String("login", acc.Login),
			zap.Stringer("outcome", res.Outcome),
		)
		if res.Outcome == probe.Valid {
			text, kb := searchFoundScreen(game, acc)
			t.Show(ctx, text, kb)
			return conversation.Done()
		}
	}

	text, kb := searchEmptyScreen(game, true)
	t.Show(ctx, text, kb)
	return conversation.Done()
}
