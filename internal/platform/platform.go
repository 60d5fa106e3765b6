// Package platform describes the external authentication platform that
// credential probes run against.
package platform

import "context"

// SignalKind is the kind of event a login session reports
type SignalKind int

const (
	SignalLoggedOn SignalKind = iota + 1
	SignalChallenge
	SignalError
)

// String returns the signal name
func (k SignalKind) String() string {
	switch k {
	case SignalLoggedOn:
		return "logged_on"
	case SignalChallenge:
		return "challenge"
	case SignalError:
		return "error"
	default:
		return "unknown"
	}
}

// Signal is one event reported by a login session
type Signal struct {
	Kind SignalKind
	// Code is the platform result code, set for SignalError
	Code   int
	Detail string
}

// Credentials are what a session logs in with
type Credentials struct {
	Login  string
	Secret string
}

// Session is one open authentication attempt.
// Signals may be closed when the session ends on its own. Close is called
// exactly once by the prober, whether or not a signal arrived.
type Session interface {
	Signals() <-chan Signal
	Close() error
}

// Authenticator opens login sessions against the platform.
// Open must return promptly when ctx is cancelled.
type Authenticator interface {
	Open(ctx context.Context, creds Credentials) (Session, error)
}
