package conversation

import (
	"context"

	"steampool/internal/domain"

	"go.uber.org/zap"
)

// Turn is one step handler invocation. Draft is a working copy that is
// committed together with the transition.
type Turn struct {
	engine *Engine
	gen    uint64
	panel  domain.MessageRef

	UserID int64
	Step   domain.Step
	Draft  domain.Draft
}

// Live reports whether the turn still owns the user's session
func (t *Turn) Live() bool {
	return t.engine.current(t.UserID, t.gen)
}

// Panel returns the message the turn renders into
func (t *Turn) Panel() domain.MessageRef {
	return t.panel
}

// Show renders text into the panel unless the turn was superseded. A
// concurrent Cancel waits for an edit already under way.
func (t *Turn) Show(ctx context.Context, text string, kb *domain.Keyboard) bool {
	out := t.engine.outputLock(t.UserID)
	if out != nil {
		out.Lock()
		defer out.Unlock()
	}

	if out == nil || !t.Live() {
		t.engine.logger.Debug("Suppressed output of superseded turn",
			zap.Int64("user_id", t.UserID),
			zap.Uint64("generation", t.gen),
		)
		return false
	}
	ref := Present(ctx, t.engine.messenger, t.engine.logger, t.panel, text, kb)
	if ref != t.panel {
		t.panel = ref
		t.engine.setPanel(t.UserID, t.gen, ref)
	}
	return true
}

// Consume deletes the user's input message unless the turn was superseded
func (t *Turn) Consume(ctx context.Context, in Input) {
	out := t.engine.outputLock(t.UserID)
	if out == nil {
		return
	}
	out.Lock()
	defer out.Unlock()

	if !t.Live() {
		return
	}
	Discard(ctx, t.engine.messenger, t.engine.logger, in.Message)
}
