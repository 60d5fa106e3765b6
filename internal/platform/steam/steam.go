// Package steam implements platform.Authenticator on top of the Steam CM protocol.
package steam

import (
	"context"
	"sync"
	"time"

	"steampool/internal/platform"

	gosteam "github.com/Philipp15b/go-steam/v3"
	"github.com/Philipp15b/go-steam/v3/protocol/steamlang"
	"go.uber.org/zap"
)

// Authenticator opens one Steam client connection per session
type Authenticator struct {
	logger *zap.Logger
}

// NewAuthenticator creates a new Steam authenticator
func NewAuthenticator(logger *zap.Logger) *Authenticator {
	return &Authenticator{logger: logger}
}

// drainGrace bounds how long a closed session keeps reading client events
// while go-steam's read loop winds down
const drainGrace = 2 * time.Second

// Open starts a session. The connection is made in the background, so Open
// never waits on the network; a failed connect arrives as a SignalError.
func (a *Authenticator) Open(ctx context.Context, creds platform.Credentials) (platform.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosteam.NewClient()
	s := newSession(client, creds, func() error {
		_, err := client.Connect()
		return err
	}, a.logger)
	go s.run()

	return s, nil
}

type session struct {
	client  *gosteam.Client
	creds   platform.Credentials
	connect func() error
	signals chan platform.Signal
	// done is closed by Close, finished once the client is torn down
	done     chan struct{}
	finished chan struct{}
	once     sync.Once
	lastErr  string
	logger   *zap.Logger
}

func newSession(client *gosteam.Client, creds platform.Credentials, connect func() error, logger *zap.Logger) *session {
	return &session{
		client:   client,
		creds:    creds,
		connect:  connect,
		signals:  make(chan platform.Signal, 1),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		logger:   logger.With(zap.String("login", creds.Login)),
	}
}

func (s *session) Signals() <-chan platform.Signal {
	return s.signals
}

// Close ends the session without waiting for the network. The client is
// disconnected by run once its connect attempt has returned.
func (s *session) Close() error {
	s.once.Do(func() {
		close(s.done)
	})
	return nil
}

// run owns the client: it connects, waits for Close and disconnects. The
// events channel is read the whole time because go-steam blocks on a full
// channel, Disconnect included.
func (s *session) run() {
	defer close(s.finished)

	stop := make(chan struct{})
	pumped := make(chan struct{})
	go func() {
		defer close(pumped)
		s.pump(stop)
	}()

	if err := s.connect(); err != nil {
		s.emit(platform.Signal{Kind: platform.SignalError, Detail: "connect: " + err.Error()})
	}

	<-s.done
	s.client.Disconnect()
	close(stop)
	<-pumped
}

// pump translates client events into signals. After Close events are
// discarded; after stop it drains until the read loop reports its error.
func (s *session) pump(stop <-chan struct{}) {
	events := s.client.Events()
	for {
		select {
		case <-stop:
			s.drain(events)
			return
		case ev := <-events:
			if s.closed() {
				continue
			}
			if sig, ok := s.translate(ev); ok {
				s.emit(sig)
			}
		}
	}
}

func (s *session) drain(events <-chan interface{}) {
	grace := time.NewTimer(drainGrace)
	defer grace.Stop()

	for {
		select {
		case ev := <-events:
			if _, ok := ev.(error); ok {
				return
			}
		case <-grace.C:
			return
		}
	}
}

func (s *session) emit(sig platform.Signal) {
	select {
	case s.signals <- sig:
	case <-s.done:
	}
}

func (s *session) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// translate maps one client event. go-steam emits fatal and ordinary errors
// as plain error values, so errors are only remembered; the disconnect that
// follows a fatal error carries it.
func (s *session) translate(ev interface{}) (platform.Signal, bool) {
	switch e := ev.(type) {
	case *gosteam.ConnectedEvent:
		s.client.Auth.LogOn(&gosteam.LogOnDetails{
			Username: s.creds.Login,
			Password: s.creds.Secret,
		})
		return platform.Signal{}, false
	case *gosteam.LoggedOnEvent:
		return platform.Signal{Kind: platform.SignalLoggedOn}, true
	case *gosteam.LogOnFailedEvent:
		return failure(e.Result), true
	case *gosteam.DisconnectedEvent:
		detail := "disconnected"
		if s.lastErr != "" {
			detail += ": " + s.lastErr
		}
		return platform.Signal{Kind: platform.SignalError, Detail: detail}, true
	case error:
		s.lastErr = e.Error()
		s.logger.Debug("Steam client error", zap.Error(e))
		return platform.Signal{}, false
	default:
		return platform.Signal{}, false
	}
}

// failure maps a log-on failure to a signal. Steam asks for a second factor
// by refusing the log-on with one of the guard results.
func failure(result steamlang.EResult) platform.Signal {
	switch result {
	case steamlang.EResult_AccountLogonDenied, steamlang.EResult_AccountLoginDeniedNeedTwoFactor:
		return platform.Signal{Kind: platform.SignalChallenge, Code: int(result), Detail: result.String()}
	default:
		return platform.Signal{Kind: platform.SignalError, Code: int(result), Detail: result.String()}
	}
}
