package dispatch

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Answerer acknowledges callback queries
type Answerer interface {
	Answer(ctx context.Context, callbackID, text string, alert bool) error
}

// Dispatcher is the entry point of every inbound update
type Dispatcher struct {
	ctx      context.Context
	loop     *Loop
	router   *Router
	answerer Answerer
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher. Handlers run with ctx, which should
// be cancelled on shutdown.
func NewDispatcher(ctx context.Context, loop *Loop, router *Router, answerer Answerer, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		ctx:      ctx,
		loop:     loop,
		router:   router,
		answerer: answerer,
		logger:   logger,
	}
}

// Dispatch queues u on its user's lane. It returns without waiting for
// the handler.
func (d *Dispatcher) Dispatch(u *Update) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	d.router.Preempt(u)
	return d.loop.Submit(u.UserID, func() {
		d.handle(u)
	})
}

func (d *Dispatcher) handle(u *Update) {
	if err := d.router.Handle(d.ctx, u); err != nil {
		d.logger.Error("Failed to handle update",
			zap.String("request_id", u.ID),
			zap.Int64("user_id", u.UserID),
			zap.Stringer("kind", u.Kind),
			zap.Error(err),
		)
	}

	if u.Kind != KindCallback || u.CallbackID == "" {
		return
	}
	if err := d.answerer.Answer(d.ctx, u.CallbackID, u.Alert, u.Alert != ""); err != nil {
		d.logger.Warn("Failed to answer callback",
			zap.String("request_id", u.ID),
			zap.Int64("user_id", u.UserID),
			zap.Error(err),
		)
	}
}
