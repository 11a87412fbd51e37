package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines user storage for the auth flow.
type Repository interface {
	Create(ctx context.Context, req *RegisterRequest) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
	MarkVerified(ctx context.Context, userID string) error
}

// InMemoryRepository keeps users in process memory.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byPhone map[string]*User
	now     func() time.Time
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byPhone: make(map[string]*User),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new unverified user.
func (r *InMemoryRepository) Create(ctx context.Context, req *RegisterRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byPhone[req.Phone]; ok {
		return nil, ErrUserExists
	}
	user := &User{
		ID:        uuid.NewString(),
		Phone:     req.Phone,
		Name:      req.Name,
		Language:  req.Language,
		CreatedAt: r.now(),
	}
	r.byPhone[req.Phone] = user
	cp := *user
	return &cp, nil
}

// GetByPhone looks a user up by phone number.
func (r *InMemoryRepository) GetByPhone(ctx context.Context, phone string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byPhone[phone]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

// MarkVerified flips the verified flag.
func (r *InMemoryRepository) MarkVerified(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byPhone {
		if u.ID == userID {
			u.Verified = true
			return nil
		}
	}
	return ErrUserNotFound
}

var _ Repository = (*InMemoryRepository)(nil)
