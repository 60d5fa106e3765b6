package testutil

import (
	"steampool/internal/domain"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewObservedLogger creates a logger whose entries can be inspected
func NewObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

// NewTestAccount creates a test account
func NewTestAccount(login, secret string, addedBy int64, games ...string) domain.Account {
	return domain.Account{
		Login:   login,
		Secret:  secret,
		Games:   games,
		AddedBy: addedBy,
	}
}
