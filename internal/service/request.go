package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"steampool/internal/domain"
	"steampool/internal/repository"

	"github.com/google/uuid"
)

// ErrDuplicateRequest is returned when the user already sent the same request
var ErrDuplicateRequest = errors.New("duplicate request")

// RequestsPerPage is the page size of request listings
const RequestsPerPage = 5

// RequestService handles user requests
type RequestService struct {
	repo repository.RequestRepository
	now  func() time.Time
	mu   sync.Mutex
}

// NewRequestService creates a new request service
func NewRequestService(repo repository.RequestRepository) *RequestService {
	return &RequestService{repo: repo, now: time.Now}
}

// Submit stores a request unless the same user already sent the same text
func (s *RequestService) Submit(ctx context.Context, userID int64, user, text string) (*domain.Request, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("request cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	requests, err := s.repo.ReadRequests(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range requests {
		if r.UserID == userID && r.Text == text {
			return nil, ErrDuplicateRequest
		}
	}

	req := domain.Request{
		ID:        uuid.NewString(),
		User:      user,
		UserID:    userID,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.WriteRequests(ctx, append(requests, req)); err != nil {
		return nil, err
	}
	return &req, nil
}

// Page returns one page of all requests
func (s *RequestService) Page(ctx context.Context, page int) (domain.Page[domain.Request], error) {
	requests, err := s.repo.ReadRequests(ctx)
	if err != nil {
		return domain.Page[domain.Request]{}, err
	}
	return domain.Paginate(requests, page, RequestsPerPage), nil
}
