package postgres

import (
	"context"
	"fmt"

	"steampool/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// AccountRepo implements repository.AccountRepository
type AccountRepo struct {
	db *sqlx.DB
}

// NewAccountRepo creates a new account repository
func NewAccountRepo(db *sqlx.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

type accountRow struct {
	Login   string         `db:"login"`
	Secret  string         `db:"secret"`
	Games   pq.StringArray `db:"games"`
	AddedBy int64          `db:"added_by"`
}

// ReadAccounts returns all accounts in insertion order
func (r *AccountRepo) ReadAccounts(ctx context.Context) ([]domain.Account, error) {
	var rows []accountRow
	query := `SELECT login, secret, games, added_by FROM accounts ORDER BY position`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}

	accounts := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, domain.Account{
			Login:   row.Login,
			Secret:  row.Secret,
			Games:   []string(row.Games),
			AddedBy: row.AddedBy,
		})
	}
	return accounts, nil
}

// WriteAccounts replaces the whole collection in one transaction
func (r *AccountRepo) WriteAccounts(ctx context.Context, accounts []domain.Account) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("clear accounts: %w", err)
	}

	query := `
		INSERT INTO accounts (position, login, secret, games, added_by)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i, a := range accounts {
		if _, err := tx.ExecContext(ctx, query, i, a.Login, a.Secret, pq.Array(a.Games), a.AddedBy); err != nil {
			return fmt.Errorf("insert account %q: %w", a.Login, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
