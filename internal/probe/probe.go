// Package probe checks credentials against the authentication platform.
//
// A probe opens exactly one session and races its signals against a timer.
// The first source to resolve decides the result; the session is closed
// exactly once before the result is returned.
package probe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"steampool/internal/platform"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds a single attempt
	DefaultTimeout = 10 * time.Second

	// DummySecret is used to test whether a login exists
	DummySecret = "dummy_password_for_check"
)

// Attempt describes one probe
type Attempt struct {
	Login string
	// Secret is empty for a login-existence probe
	Secret  string
	Timeout time.Duration
}

// Prober runs credential probes
type Prober struct {
	auth    platform.Authenticator
	codes   CodeTable
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Prober
type Option func(*Prober)

// WithTimeout overrides the default attempt timeout
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithCodes overrides the code table
func WithCodes(codes CodeTable) Option {
	return func(p *Prober) {
		p.codes = codes
	}
}

// NewProber creates a new prober
func NewProber(auth platform.Authenticator, logger *zap.Logger, opts ...Option) *Prober {
	p := &Prober{
		auth:    auth,
		codes:   DefaultCodes,
		timeout: DefaultTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Check probes a login and secret
func (p *Prober) Check(ctx context.Context, login, secret string) Result {
	return p.Probe(ctx, Attempt{Login: login, Secret: secret})
}

// Exists probes a login alone using the dummy secret
func (p *Prober) Exists(ctx context.Context, login string) (Existence, Result) {
	res := p.Probe(ctx, Attempt{Login: login})
	return ExistenceOf(res), res
}

// Probe runs one attempt and returns its single result
func (p *Prober) Probe(ctx context.Context, a Attempt) Result {
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = p.timeout
	}
	secret := a.Secret
	if secret == "" {
		secret = DummySecret
	}

	started := time.Now()
	r := newRace()

	timer := time.AfterFunc(timeout, func() {
		r.resolve(Result{Outcome: Timeout, Detail: fmt.Sprintf("no answer within %s", timeout)})
	})
	defer timer.Stop()

	openCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan struct{})
	defer close(stop)

	// Caller cancellation and the timer both unblock a pending Open
	go func() {
		select {
		case <-r.done:
			cancel()
		case <-ctx.Done():
			r.resolve(cancelled(ctx.Err()))
		case <-stop:
		}
	}()

	sess, err := p.auth.Open(openCtx, platform.Credentials{Login: a.Login, Secret: secret})
	if err != nil {
		r.resolve(Result{Outcome: UnknownError, Detail: err.Error()})
	} else {
		var closeOnce sync.Once
		release := func() {
			closeOnce.Do(func() {
				if err := sess.Close(); err != nil {
					p.logger.Warn("Failed to close probe session",
						zap.String("login", a.Login),
						zap.Error(err),
					)
				}
			})
		}
		defer release()

		go p.listen(sess, r)

		<-r.done
		release()
	}

	<-r.done
	res := r.result
	res.Elapsed = time.Since(started)

	p.logger.Info("Probe finished",
		zap.String("login", a.Login),
		zap.Bool("login_only", a.Secret == ""),
		zap.Stringer("outcome", res.Outcome),
		zap.Int("code", res.Code),
		zap.Duration("elapsed", res.Elapsed),
	)

	return res
}

// listen feeds session signals into the race until it is decided
func (p *Prober) listen(sess platform.Session, r *race) {
	signals := sess.Signals()
	for {
		select {
		case <-r.done:
			return
		case sig, ok := <-signals:
			if !ok {
				r.resolve(Result{Outcome: UnknownError, Detail: "session ended without a result"})
				return
			}
			r.resolve(p.classify(sig))
		}
	}
}

func (p *Prober) classify(sig platform.Signal) Result {
	switch sig.Kind {
	case platform.SignalLoggedOn:
		return Result{Outcome: Valid}
	case platform.SignalChallenge:
		return Result{Outcome: ChallengeRequired, Detail: sig.Detail}
	case platform.SignalError:
		detail := sig.Detail
		if detail == "" {
			detail = fmt.Sprintf("code %d", sig.Code)
		}
		return Result{Outcome: p.codes.Lookup(sig.Code), Code: sig.Code, Detail: detail}
	default:
		return Result{Outcome: UnknownError, Detail: fmt.Sprintf("unexpected signal %s", sig.Kind)}
	}
}

func cancelled(err error) Result {
	if errors.Is(err, context.DeadlineExceeded) {
		return Result{Outcome: Timeout, Detail: err.Error()}
	}
	return Result{Outcome: UnknownError, Detail: fmt.Sprintf("probe cancelled: %v", err)}
}

// race holds the first result; later resolutions are no-ops
type race struct {
	once   sync.Once
	done   chan struct{}
	result Result
}

func newRace() *race {
	return &race{done: make(chan struct{})}
}

// resolve records res if nothing was decided yet and reports whether it won
func (r *race) resolve(res Result) bool {
	won := false
	r.once.Do(func() {
		r.result = res
		won = true
		close(r.done)
	})
	return won
}
