package probe

import (
	"fmt"
	"time"
)

// Outcome is the single result of a probe attempt
type Outcome int

const (
	Valid Outcome = iota + 1
	ChallengeRequired
	InvalidCredential
	RateLimited
	Timeout
	UnknownError
)

// String returns the outcome name used in logs
func (o Outcome) String() string {
	switch o {
	case Valid:
		return "valid"
	case ChallengeRequired:
		return "challenge_required"
	case InvalidCredential:
		return "invalid_credential"
	case RateLimited:
		return "rate_limited"
	case Timeout:
		return "timeout"
	case UnknownError:
		return "unknown_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is what a probe resolves to
type Result struct {
	Outcome Outcome
	// Code is the platform result code when the outcome came from an error signal
	Code    int
	Detail  string
	Elapsed time.Duration
}

// Existence is how a login-only probe is interpreted
type Existence int

const (
	LoginUnknown Existence = iota
	LoginExists
	LoginNotFound
)

// ExistenceOf interprets the result of a login-only probe.
// A rejected password means the platform did not recognise the login;
// any other definitive answer means it did.
func ExistenceOf(r Result) Existence {
	switch r.Outcome {
	case InvalidCredential:
		return LoginNotFound
	case Timeout:
		return LoginUnknown
	default:
		return LoginExists
	}
}

// CodeTable maps platform result codes to outcomes
type CodeTable map[int]Outcome

// DefaultCodes is the code table for the Steam platform
var DefaultCodes = CodeTable{
	5:  InvalidCredential, // InvalidPassword
	50: RateLimited,
	63: ChallengeRequired, // AccountLogonDenied
	84: ChallengeRequired,
	85: ChallengeRequired, // AccountLoginDeniedNeedTwoFactor
}

// Lookup maps a code, falling back to UnknownError
func (t CodeTable) Lookup(code int) Outcome {
	if o, ok := t[code]; ok {
		return o
	}
	return UnknownError
}
