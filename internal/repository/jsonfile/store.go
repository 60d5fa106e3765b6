// Package jsonfile stores collections as JSON arrays in plain files.
// Files are created as empty arrays when missing and replaced atomically.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"steampool/internal/domain"
	"steampool/internal/repository"
)

const (
	filePerm = 0o644
	dirPerm  = 0o755
)

// Store keeps accounts and requests in two JSON files
type Store struct {
	accountsPath string
	requestsPath string
}

// NewStore creates a store and makes sure both files exist
func NewStore(accountsPath, requestsPath string) (*Store, error) {
	s := &Store{accountsPath: accountsPath, requestsPath: requestsPath}
	for _, path := range []string{accountsPath, requestsPath} {
		if err := ensureFile(path); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ReadAccounts implements repository.AccountRepository
func (s *Store) ReadAccounts(_ context.Context) ([]domain.Account, error) {
	accounts := []domain.Account{}
	if err := readJSON(s.accountsPath, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// WriteAccounts implements repository.AccountRepository
func (s *Store) WriteAccounts(_ context.Context, accounts []domain.Account) error {
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return writeJSON(s.accountsPath, accounts)
}

// ReadRequests implements repository.RequestRepository
func (s *Store) ReadRequests(_ context.Context) ([]domain.Request, error) {
	requests := []domain.Request{}
	if err := readJSON(s.requestsPath, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// WriteRequests implements repository.RequestRepository
func (s *Store) WriteRequests(_ context.Context, requests []domain.Request) error {
	if requests == nil {
		requests = []domain.Request{}
	}
	return writeJSON(s.requestsPath, requests)
}

// Close implements io.Closer for symmetry with the database store
func (s *Store) Close() error {
	return nil
}

func ensureFile(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return writeAtomic(path, []byte("[]"))
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", repository.ErrDecodeFailed, path, err)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", repository.ErrWriteFailed, path, err)
	}
	return writeAtomic(path, data)
}

// writeAtomic replaces path with content via a synced temp file and rename
func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("%w: create dir for %s: %v", repository.ErrWriteFailed, path, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", repository.ErrWriteFailed, path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("%w: write temp for %s: %v", repository.ErrWriteFailed, path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync temp for %s: %v", repository.ErrWriteFailed, path, err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return fmt.Errorf("%w: chmod temp for %s: %v", repository.ErrWriteFailed, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp for %s: %v", repository.ErrWriteFailed, path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: rename temp for %s: %v", repository.ErrWriteFailed, path, err)
	}
	return nil
}
