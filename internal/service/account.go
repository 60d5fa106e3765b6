package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"steampool/internal/domain"
	"steampool/internal/games"
	"steampool/internal/repository"
)

var (
	// ErrAccountExists is returned when a login is already stored
	ErrAccountExists = errors.New("account already exists")
	// ErrAccountNotFound is returned when no account has the login
	ErrAccountNotFound = errors.New("account not found")
)

// AccountsPerPage is the page size of account listings
const AccountsPerPage = 5

// AccountService handles account records. Every change is a whole-collection
// read-modify-write, serialized inside the service.
type AccountService struct {
	repo    repository.AccountRepository
	catalog *games.Catalog
	mu      sync.Mutex
}

// NewAccountService creates a new account service
func NewAccountService(repo repository.AccountRepository, catalog *games.Catalog) *AccountService {
	if catalog == nil {
		catalog = games.NewCatalog(nil)
	}
	return &AccountService{repo: repo, catalog: catalog}
}

// Find returns the account with login, ignoring case
func (s *AccountService) Find(ctx context.Context, login string) (*domain.Account, error) {
	accounts, err := s.repo.ReadAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(accounts, login); i >= 0 {
		acc := accounts[i]
		return &acc, nil
	}
	return nil, ErrAccountNotFound
}

// Add appends a new account
func (s *AccountService) Add(ctx context.Context, acc domain.Account) error {
	if strings.TrimSpace(acc.Login) == "" {
		return fmt.Errorf("login cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.repo.ReadAccounts(ctx)
	if err != nil {
		return err
	}
	if indexOf(accounts, acc.Login) >= 0 {
		return ErrAccountExists
	}

	return s.repo.WriteAccounts(ctx, append(accounts, acc))
}

// Replace swaps the account stored under target for acc. Changing the
// login to one that another account uses is refused.
func (s *AccountService) Replace(ctx context.Context, target string, acc domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.repo.ReadAccounts(ctx)
	if err != nil {
		return err
	}
	i := indexOf(accounts, target)
	if i < 0 {
		return ErrAccountNotFound
	}
	if j := indexOf(accounts, acc.Login); j >= 0 && j != i {
		return ErrAccountExists
	}

	accounts[i] = acc
	return s.repo.WriteAccounts(ctx, accounts)
}

// Delete removes the account with login
func (s *AccountService) Delete(ctx context.Context, login string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.repo.ReadAccounts(ctx)
	if err != nil {
		return err
	}
	i := indexOf(accounts, login)
	if i < 0 {
		return ErrAccountNotFound
	}

	remaining := make([]domain.Account, 0, len(accounts)-1)
	remaining = append(remaining, accounts[:i]...)
	remaining = append(remaining, accounts[i+1:]...)
	return s.repo.WriteAccounts(ctx, remaining)
}

// Page returns one page of all accounts
func (s *AccountService) Page(ctx context.Context, page int) (domain.Page[domain.Account], error) {
	accounts, err := s.repo.ReadAccounts(ctx)
	if err != nil {
		return domain.Page[domain.Account]{}, err
	}
	return domain.Paginate(accounts, page, AccountsPerPage), nil
}

// SearchByGame resolves query to a canonical game and returns the accounts
// holding it, one per login, in store order.
func (s *AccountService) SearchByGame(ctx context.Context, query string) (string, []domain.Account, error) {
	canonical := s.catalog.Resolve(query)

	accounts, err := s.repo.ReadAccounts(ctx)
	if err != nil {
		return canonical, nil, err
	}

	seen := make(map[string]bool)
	var matched []domain.Account
	for _, acc := range accounts {
		key := strings.ToLower(acc.Login)
		if seen[key] {
			continue
		}
		for _, game := range acc.Games {
			if s.catalog.Matches(game, canonical) {
				seen[key] = true
				matched = append(matched, acc)
				break
			}
		}
	}
	return canonical, matched, nil
}

func indexOf(accounts []domain.Account, login string) int {
	for i, acc := range accounts {
		if acc.SameLogin(login) {
			return i
		}
	}
	return -1
}
