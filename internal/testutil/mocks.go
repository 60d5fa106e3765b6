package testutil

import (
	"context"

	"steampool/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockMembershipChecker is a mock for subscription.MembershipChecker
type MockMembershipChecker struct {
	mock.Mock
}

func (m *MockMembershipChecker) IsMember(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// MockAccountRepository is a mock for repository.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) ReadAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) WriteAccounts(ctx context.Context, accounts []domain.Account) error {
	args := m.Called(ctx, accounts)
	return args.Error(0)
}

// MockRequestRepository is a mock for repository.RequestRepository
type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) ReadRequests(ctx context.Context) ([]domain.Request, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Request), args.Error(1)
}

func (m *MockRequestRepository) WriteRequests(ctx context.Context, requests []domain.Request) error {
	args := m.Called(ctx, requests)
	return args.Error(0)
}
