package repository

import (
	"context"
	"errors"

	"steampool/internal/domain"
)

var (
	// ErrDecodeFailed is returned when a stored collection cannot be parsed
	ErrDecodeFailed = errors.New("repository: decode failed")
	// ErrWriteFailed is returned when a collection cannot be persisted
	ErrWriteFailed = errors.New("repository: write failed")
)

// AccountRepository reads and writes the whole account collection
type AccountRepository interface {
	ReadAccounts(ctx context.Context) ([]domain.Account, error)
	WriteAccounts(ctx context.Context, accounts []domain.Account) error
}

// RequestRepository reads and writes the whole request collection
type RequestRepository interface {
	ReadRequests(ctx context.Context) ([]domain.Request, error)
	WriteRequests(ctx context.Context, requests []domain.Request) error
}
