package risk

import (
	"context"
	"sort"
	"sync"
)

// Repository defines storage for the assessment history.
type Repository interface {
	Save(ctx context.Context, assessments []Assessment) error
	ListByUser(ctx context.Context, userID string) ([]Assessment, error)
}

// InMemoryRepository keeps assessments in process memory.
type InMemoryRepository struct {
	mu     sync.RWMutex
	byUser map[string][]Assessment
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byUser: make(map[string][]Assessment)}
}

// Save appends to the history. Assessments are never edited.
func (r *InMemoryRepository) Save(ctx context.Context, assessments []Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range assessments {
		if a.UserID == "" {
			return ErrMissingUserID
		}
		r.byUser[a.UserID] = append(r.byUser[a.UserID], a)
	}
	return nil
}

// ListByUser returns the history, newest first.
func (r *InMemoryRepository) ListByUser(ctx context.Context, userID string) ([]Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.byUser[userID]
	out := make([]Assessment, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AssessmentDate.After(out[j].AssessmentDate)
	})
	return out, nil
}

var _ Repository = (*InMemoryRepository)(nil)
