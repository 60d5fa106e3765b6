package postgres

import (
	"context"
	"errors"
	"testing"

	"steampool/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestAccountRepo_ReadAccounts(t *testing.T) {
	tests := []struct {
		name          string
		mockRows      *sqlmock.Rows
		mockError     error
		expected      []domain.Account
		expectedError bool
	}{
		{
			name: "two accounts",
			mockRows: sqlmock.NewRows([]string{"login", "secret", "games", "added_by"}).
				AddRow("bob", "secret1", "{GameA,GameB}", int64(1)).
				AddRow("eve", "hunter2", "{}", int64(2)),
			expected: []domain.Account{
				{Login: "bob", Secret: "secret1", Games: []string{"GameA", "GameB"}, AddedBy: 1},
				{Login: "eve", Secret: "hunter2", Games: []string{}, AddedBy: 2},
			},
		},
		{
			name:     "empty table",
			mockRows: sqlmock.NewRows([]string{"login", "secret", "games", "added_by"}),
			expected: []domain.Account{},
		},
		{
			name:          "query fails",
			mockError:     errors.New("connection reset"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewAccountRepo(db)

			query := "SELECT login, secret, games, added_by FROM accounts ORDER BY position"
			if tt.mockError != nil {
				mock.ExpectQuery(query).WillReturnError(tt.mockError)
			} else {
				mock.ExpectQuery(query).WillReturnRows(tt.mockRows)
			}

			accounts, err := repo.ReadAccounts(context.Background())

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, accounts)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAccountRepo_WriteAccounts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepo(db)

	accounts := []domain.Account{
		{Login: "bob", Secret: "secret1", Games: []string{"GameA"}, AddedBy: 1},
		{Login: "eve", Secret: "hunter2", Games: []string{"GameB"}, AddedBy: 2},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM accounts").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(0, "bob", "secret1", sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(1, "eve", "hunter2", sqlmock.AnyArg(), int64(2)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := repo.WriteAccounts(context.Background(), accounts)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_WriteAccountsRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM accounts").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO accounts").WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := repo.WriteAccounts(context.Background(), []domain.Account{{Login: "bob"}})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
