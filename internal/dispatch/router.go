package dispatch

import (
	"context"
	"sync"

	"steampool/internal/conversation"

	"go.uber.org/zap"
)

// Router sends commands and menu callbacks to their handlers and free text
// and flow callbacks to the user's active step.
type Router struct {
	engine *conversation.Engine
	logger *zap.Logger

	mu         sync.RWMutex
	commands   map[string]HandlerFunc
	actions    map[string]HandlerFunc
	middleware []Middleware
}

// NewRouter creates a router over the conversation engine
func NewRouter(engine *conversation.Engine, logger *zap.Logger) *Router {
	return &Router{
		engine:   engine,
		logger:   logger,
		commands: make(map[string]HandlerFunc),
		actions:  make(map[string]HandlerFunc),
	}
}

// Use appends middleware. The first one added runs outermost.
func (r *Router) Use(mw ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw...)
}

// Command registers a handler for a slash command, e.g. "/start"
func (r *Router) Command(name string, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[name] = h
}

// Action registers a handler for a callback key
func (r *Router) Action(key string, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[key] = h
}

// Preempt cancels the user's active step when u is a menu selection.
// It is called when the update is received, before it waits for earlier
// updates of the same user, so a turn still in flight is superseded.
func (r *Router) Preempt(u *Update) {
	if u.Supersedes() {
		r.engine.Cancel(u.UserID)
	}
}

// Handle runs u through the middleware chain and routes it
func (r *Router) Handle(ctx context.Context, u *Update) error {
	r.mu.RLock()
	h := HandlerFunc(r.route)
	for i := len(r.middleware) - 1; i >= 0; i-- {
		h = r.middleware[i](h)
	}
	r.mu.RUnlock()

	return h(ctx, u)
}

func (r *Router) route(ctx context.Context, u *Update) error {
	switch u.Kind {
	case KindText:
		if !r.engine.Deliver(ctx, u.Input()) {
			r.logger.Debug("Dropped text without active step", zap.Int64("user_id", u.UserID))
		}
		return nil

	case KindCallback:
		if u.Key == FlowKey {
			if !r.engine.Deliver(ctx, u.Input()) {
				r.logger.Debug("Dropped flow choice without active step",
					zap.Int64("user_id", u.UserID),
					zap.String("choice", u.Payload),
				)
			}
			return nil
		}
		r.engine.Cancel(u.UserID)
		if h := r.lookup(r.actions, u.Key); h != nil {
			return h(ctx, u)
		}
		r.logger.Debug("Unknown callback", zap.String("key", u.Key))
		return nil

	case KindCommand:
		r.engine.Cancel(u.UserID)
		if h := r.lookup(r.commands, u.Command); h != nil {
			return h(ctx, u)
		}
		r.logger.Debug("Unknown command", zap.String("command", u.Command))
		return nil
	}
	return nil
}

func (r *Router) lookup(m map[string]HandlerFunc, name string) HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return m[name]
}
