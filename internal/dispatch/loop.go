package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrClosed is returned when submitting to a closed loop
var ErrClosed = errors.New("dispatch loop closed")

type lane struct {
	queue []func()
}

// Loop runs jobs in per-user lanes. Jobs of one user run one at a time in
// submission order; each busy lane has its own goroutine, which exits once
// the lane is empty.
type Loop struct {
	mu     sync.Mutex
	lanes  map[int64]*lane
	closed bool
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewLoop creates an empty loop
func NewLoop(logger *zap.Logger) *Loop {
	return &Loop{
		lanes:  make(map[int64]*lane),
		logger: logger,
	}
}

// Submit queues job on the user's lane
func (l *Loop) Submit(userID int64, job func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	if ln, ok := l.lanes[userID]; ok {
		ln.queue = append(ln.queue, job)
		return nil
	}

	ln := &lane{queue: []func(){job}}
	l.lanes[userID] = ln
	l.wg.Add(1)
	go l.drain(userID, ln)
	return nil
}

func (l *Loop) drain(userID int64, ln *lane) {
	defer l.wg.Done()

	for {
		l.mu.Lock()
		if len(ln.queue) == 0 {
			delete(l.lanes, userID)
			l.mu.Unlock()
			return
		}
		job := ln.queue[0]
		ln.queue[0] = nil
		ln.queue = ln.queue[1:]
		l.mu.Unlock()

		l.run(userID, job)
	}
}

func (l *Loop) run(userID int64, job func()) {
	defer func() {
		if rec := recover(); rec != nil {
			l.logger.Error("Job panicked",
				zap.Int64("user_id", userID),
				zap.Any("panic", rec),
			)
		}
	}()
	job()
}

// Busy returns the number of lanes with queued or running jobs
func (l *Loop) Busy() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lanes)
}

// Close stops accepting jobs and waits for queued ones to finish
func (l *Loop) Close(ctx context.Context) error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain lanes: %w", ctx.Err())
	}
}
