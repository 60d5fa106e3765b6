package testutil

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"steampool/internal/platform"
)

// Script describes how a fake session behaves
type Script struct {
	// Signals are emitted in order once the session opens (or Hold is released)
	Signals []platform.Signal
	// Hold delays the signals until it is closed
	Hold chan struct{}
	// End closes the signal channel after the last signal
	End bool
	// OpenErr makes Open fail
	OpenErr error
}

// FakeAuthenticator is a scripted platform.Authenticator.
// Logins without a script open sessions that never answer.
type FakeAuthenticator struct {
	mu       sync.Mutex
	scripts  map[string]Script
	opened   []platform.Credentials
	sessions []*FakeSession
}

// NewFakeAuthenticator creates an authenticator with no scripts
func NewFakeAuthenticator() *FakeAuthenticator {
	return &FakeAuthenticator{scripts: make(map[string]Script)}
}

// On scripts a login and secret pair
func (f *FakeAuthenticator) On(login, secret string, s Script) *FakeAuthenticator {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[scriptKey(login, secret)] = s
	return f
}

// OnLogin scripts a login regardless of the secret
func (f *FakeAuthenticator) OnLogin(login string, s Script) *FakeAuthenticator {
	return f.On(login, "*", s)
}

// Open implements platform.Authenticator
func (f *FakeAuthenticator) Open(ctx context.Context, creds platform.Credentials) (platform.Session, error) {
	f.mu.Lock()
	s, ok := f.scripts[scriptKey(creds.Login, creds.Secret)]
	if !ok {
		s = f.scripts[scriptKey(creds.Login, "*")]
	}
	f.opened = append(f.opened, creds)
	f.mu.Unlock()

	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess := &FakeSession{
		signals: make(chan platform.Signal),
		closed:  make(chan struct{}),
	}
	go sess.play(s)

	f.mu.Lock()
	f.sessions = append(f.sessions, sess)
	f.mu.Unlock()

	return sess, nil
}

// Opened returns the credentials of every session opened so far
func (f *FakeAuthenticator) Opened() []platform.Credentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.Credentials(nil), f.opened...)
}

// Sessions returns every session opened so far
func (f *FakeAuthenticator) Sessions() []*FakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeSession(nil), f.sessions...)
}

func scriptKey(login, secret string) string {
	return strings.ToLower(login) + "\x00" + secret
}

// FakeSession is a platform.Session driven by a Script
type FakeSession struct {
	signals   chan platform.Signal
	closed    chan struct{}
	closeOnce sync.Once
	closes    atomic.Int32
}

// Signals implements platform.Session
func (s *FakeSession) Signals() <-chan platform.Signal {
	return s.signals
}

// Close implements platform.Session
func (s *FakeSession) Close() error {
	s.closes.Add(1)
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

// CloseCount returns how many times Close was called
func (s *FakeSession) CloseCount() int {
	return int(s.closes.Load())
}

// Closed is closed after the first Close
func (s *FakeSession) Closed() <-chan struct{} {
	return s.closed
}

func (s *FakeSession) play(script Script) {
	if script.Hold != nil {
		select {
		case <-script.Hold:
		case <-s.closed:
			return
		}
	}
	for _, sig := range script.Signals {
		select {
		case s.signals <- sig:
		case <-s.closed:
			return
		}
	}
	if script.End {
		close(s.signals)
	}
}

// LoggedOn is a success signal
func LoggedOn() platform.Signal {
	return platform.Signal{Kind: platform.SignalLoggedOn}
}

// Challenge is a second-factor signal
func Challenge() platform.Signal {
	return platform.Signal{Kind: platform.SignalChallenge, Detail: "steam guard"}
}

// Failure is an error signal with a result code
func Failure(code int) platform.Signal {
	return platform.Signal{Kind: platform.SignalError, Code: code}
}
