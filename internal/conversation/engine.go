// Package conversation keeps the per-user wizard state.
//
// Every user has at most one active step. Installing a step replaces the
// previous one and bumps a process-wide generation counter; a turn commits
// its transition, and talks to the transport, only while the generation it
// started with is still current. A superseded turn therefore has no effect.
package conversation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"steampool/internal/domain"

	"go.uber.org/zap"
)

// Input is one user message or flow button press delivered to the active step
type Input struct {
	UserID   int64
	ChatID   int64
	Username string
	Text     string
	// Message is the consumed chat message, zero for button presses
	Message domain.MessageRef
	// Choice is the payload of a flow button
	Choice string
}

// Transition is what a step handler decides
type Transition struct {
	next domain.Step
}

// Next moves to step, which may be the current one
func Next(step domain.Step) Transition {
	return Transition{next: step}
}

// Done ends the flow and discards the draft
func Done() Transition {
	return Transition{}
}

// HandlerFunc handles the input of one step
type HandlerFunc func(ctx context.Context, t *Turn, in Input) Transition

type session struct {
	// out is held while a turn talks to the transport so Cancel cannot
	// land between its liveness check and the call
	out sync.Mutex

	step    domain.Step
	draft   domain.Draft
	panel   domain.MessageRef
	gen     uint64
	touched time.Time
}

// Engine owns all user sessions
type Engine struct {
	mu       sync.RWMutex
	sessions map[int64]*session
	handlers map[domain.Step]HandlerFunc

	gen       atomic.Uint64
	messenger Messenger
	now       func() time.Time
	logger    *zap.Logger
}

// NewEngine creates a new conversation engine
func NewEngine(messenger Messenger, logger *zap.Logger) *Engine {
	return &Engine{
		sessions:  make(map[int64]*session),
		handlers:  make(map[domain.Step]HandlerFunc),
		messenger: messenger,
		now:       time.Now,
		logger:    logger,
	}
}

// Register binds a handler to a step
func (e *Engine) Register(step domain.Step, h HandlerFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[step] = h
}

// Messenger returns the transport the engine talks through
func (e *Engine) Messenger() Messenger {
	return e.messenger
}

// Start installs step as the user's only active step, replacing whatever was
// active, and returns a turn bound to it for rendering the first prompt.
func (e *Engine) Start(userID int64, panel domain.MessageRef, step domain.Step, draft domain.Draft) *Turn {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[userID]
	if !ok {
		s = &session{}
		e.sessions[userID] = s
	}
	s.step = step
	s.draft = draft.Clone()
	s.panel = panel
	s.gen = e.gen.Add(1)
	s.touched = e.now()

	e.logger.Debug("Step started",
		zap.Int64("user_id", userID),
		zap.Stringer("step", step),
		zap.Uint64("generation", s.gen),
	)

	return &Turn{
		engine: e,
		UserID: userID,
		Step:   step,
		Draft:  draft.Clone(),
		panel:  panel,
		gen:    s.gen,
	}
}

// Cancel clears the active step and draft, whatever they are.
// It reports whether a step was active.
func (e *Engine) Cancel(userID int64) bool {
	if out := e.outputLock(userID); out != nil {
		out.Lock()
		defer out.Unlock()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[userID]
	if !ok {
		return false
	}
	wasActive := !s.step.IsNone()
	s.step = domain.Step{}
	s.draft = domain.Draft{}
	s.gen = e.gen.Add(1)
	s.touched = e.now()

	if wasActive {
		e.logger.Debug("Step cancelled",
			zap.Int64("user_id", userID),
			zap.Uint64("generation", s.gen),
		)
	}
	return wasActive
}

// Active returns the user's active step
func (e *Engine) Active(userID int64) domain.Step {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if s, ok := e.sessions[userID]; ok {
		return s.step
	}
	return domain.Step{}
}

// Draft returns a copy of the user's draft
func (e *Engine) Draft(userID int64) domain.Draft {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if s, ok := e.sessions[userID]; ok {
		return s.draft.Clone()
	}
	return domain.Draft{}
}

// Deliver runs the active step's handler with in. It reports whether a step
// was active; input with no active step is ignored.
func (e *Engine) Deliver(ctx context.Context, in Input) bool {
	e.mu.Lock()
	s, ok := e.sessions[in.UserID]
	if !ok || s.step.IsNone() {
		e.mu.Unlock()
		return false
	}
	s.touched = e.now()
	h := e.handlers[s.step]
	t := &Turn{
		engine: e,
		UserID: in.UserID,
		Step:   s.step,
		Draft:  s.draft.Clone(),
		panel:  s.panel,
		gen:    s.gen,
	}
	e.mu.Unlock()

	if h == nil {
		e.logger.Error("No handler for step",
			zap.Int64("user_id", in.UserID),
			zap.Stringer("step", t.Step),
		)
		return false
	}

	tr := h(ctx, t, in)
	if !e.commit(t, tr) {
		e.logger.Debug("Discarded superseded turn",
			zap.Int64("user_id", in.UserID),
			zap.Stringer("step", t.Step),
			zap.Uint64("generation", t.gen),
		)
	}
	return true
}

// commit applies tr if the turn's generation is still current
func (e *Engine) commit(t *Turn, tr Transition) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[t.UserID]
	if !ok || s.gen != t.gen {
		return false
	}

	s.gen = e.gen.Add(1)
	s.touched = e.now()
	s.panel = t.panel
	if tr.next.IsNone() {
		s.step = domain.Step{}
		s.draft = domain.Draft{}
	} else {
		s.step = tr.next
		s.draft = t.Draft.Clone()
	}
	return true
}

func (e *Engine) current(userID int64, gen uint64) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s, ok := e.sessions[userID]
	return ok && s.gen == gen
}

// outputLock returns the user's output mutex, nil when there is no session.
// It is always taken before e.mu.
func (e *Engine) outputLock(userID int64) *sync.Mutex {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if s, ok := e.sessions[userID]; ok {
		return &s.out
	}
	return nil
}

func (e *Engine) setPanel(userID int64, gen uint64, panel domain.MessageRef) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.sessions[userID]; ok && s.gen == gen {
		s.panel = panel
	}
}

// Sweep forgets sessions idle for longer than idle and returns how many
func (e *Engine) Sweep(idle time.Duration) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-idle)
	n := 0
	for id, s := range e.sessions {
		if s.touched.Before(cutoff) {
			delete(e.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of known sessions
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.sessions)
}
