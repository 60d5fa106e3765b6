package service

import (
	"context"
	"errors"
	"testing"

	"steampool/internal/domain"
	"steampool/internal/games"
	"steampool/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func storedAccounts() []domain.Account {
	return []domain.Account{
		testutil.NewTestAccount("bob", "secret1", 1, "GameA", "GameB"),
		testutil.NewTestAccount("eve", "hunter2", 2, "God of War"),
	}
}

func TestAccountService_Find(t *testing.T) {
	tests := []struct {
		name          string
		login         string
		expectedError error
	}{
		{name: "exact", login: "bob"},
		{name: "different case", login: "BOB"},
		{name: "missing", login: "alice", expectedError: ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(testutil.MockAccountRepository)
			mockRepo.On("ReadAccounts", mock.Anything).Return(storedAccounts(), nil)

			service := NewAccountService(mockRepo, nil)

			acc, err := service.Find(context.Background(), tt.login)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, acc)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "bob", acc.Login)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAccountService_Add(t *testing.T) {
	t.Run("appends", func(t *testing.T) {
		mockRepo := new(testutil.MockAccountRepository)
		mockRepo.On("ReadAccounts", mock.Anything).Return(storedAccounts(), nil)

		added := testutil.NewTestAccount("carol", "pw", 3, "GameC")
		expected := append(storedAccounts(), added)
		mockRepo.On("WriteAccounts", mock.Anything, expected).Return(nil)

		service := NewAccountService(mockRepo, nil)

		assert.NoError(t, service.Add(context.Background(), added))
		mockRepo.AssertExpectations(t)
	})

	t.Run("duplicate login", func(t *testing.T) {
		mockRepo := new(testutil.MockAccountRepository)
		mockRepo.On("ReadAccounts", mock.Anything).Return(storedAccounts(), nil)

		service := NewAccountService(mockRepo, nil)

		err := service.Add(context.Background(), testutil.NewTestAccount("Bob", "x", 3))
		assert.ErrorIs(t, err, ErrAccountExists)
		mockRepo.AssertNotCalled(t, "WriteAccounts", mock.Anything, mock.Anything)
	})

	t.Run("empty login", func(t *testing.T) {
		mockRepo := new(testutil.MockAccountRepository)
		service := NewAccountService(mockRepo, nil)

		assert.Error(t, service.Add(context.Background(), domain.Account{Login: "  "}))
	})

	t.Run("read fails", func(t *testing.T) {
		mockRepo := new(testutil.MockAccountRepository)
		mockRepo.On("ReadAccounts", mock.Anything).Return(nil, errors.New("disk gone"))

		service := NewAccountService(mockRepo, nil)

		assert.Error(t, service.Add(context.Background(), testutil.NewTestAccount("carol", "pw", 3)))
	})
}

func TestAccountService_Replace(t *testing.T) {
	tests := []struct {
		name          string
		target        string
		replacement   domain.Account
		expectedError error
	}{
		{
			name:        "change secret",
			target:      "bob",
			replacement: testutil.NewTestAccount("bob", "new", 1, "GameA"),
		},
		{
			name:        "rename",
			target:      "bob",
			replacement: testutil.NewTestAccount("robert", "secret1", 1, "GameA"),
		},
		{
			name:          "rename onto another account",
			target:        "bob",
			replacement:   testutil.NewTestAccount("eve", "secret1", 1),
			expectedError: ErrAccountExists,
		},
		{
			name:          "missing target",
			target:        "alice",
			replacement:   testutil.NewTestAccount("alice", "x", 1),
			expectedError: ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(testutil.MockAccountRepository)
			mockRepo.On("ReadAccounts", mock.Anything).Return(storedAccounts(), nil)

			if tt.expectedError == nil {
				expected := storedAccounts()
				expected[0] = tt.replacement
				mockRepo.On("WriteAccounts", mock.Anything, expected).Return(nil)
			}

			service := NewAccountService(mockRepo, nil)

			err := service.Replace(context.Background(), tt.target, tt.replacement)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAccountService_Delete(t *testing.T) {
	mockRepo := new(testutil.MockAccountRepository)
	mockRepo.On("ReadAccounts", mock.Anything).Return(storedAccounts(), nil)
	mockRepo.On("WriteAccounts", mock.Anything, storedAccounts()[1:]).Return(nil)

	service := NewAccountService(mockRepo, nil)

	assert.NoError(t, service.Delete(context.Background(), "BOB"))
	assert.ErrorIs(t, service.Delete(context.Background(), "nobody"), ErrAccountNotFound)
	mockRepo.AssertExpectations(t)
}

func TestAccountService_Page(t *testing.T) {
	var accounts []domain.Account
	for _, login := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		accounts = append(accounts, testutil.NewTestAccount(login, "x", 1))
	}

	mockRepo := new(testutil.MockAccountRepository)
	mockRepo.On("ReadAccounts", mock.Anything).Return(accounts, nil)

	service := NewAccountService(mockRepo, nil)

	page, err := service.Page(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.Number)
	assert.Len(t, page.Items, 2)
}

func TestAccountService_SearchByGame(t *testing.T) {
	stored := []domain.Account{
		testutil.NewTestAccount("bob", "secret1", 1, "God of War", "GameB"),
		testutil.NewTestAccount("eve", "hunter2", 2, "gow"),
		testutil.NewTestAccount("mallory", "x", 3, "Hades"),
		testutil.NewTestAccount("BOB", "dup", 4, "God of War"),
	}

	mockRepo := new(testutil.MockAccountRepository)
	mockRepo.On("ReadAccounts", mock.Anything).Return(stored, nil)

	catalog := games.NewCatalog(map[string][]string{"God of War": {"гов"}})
	service := NewAccountService(mockRepo, catalog)

	canonical, matched, err := service.SearchByGame(context.Background(), "гов")

	require.NoError(t, err)
	assert.Equal(t, "God of War", canonical)
	require.Len(t, matched, 2)
	assert.Equal(t, "bob", matched[0].Login)
	assert.Equal(t, "eve", matched[1].Login)
}
