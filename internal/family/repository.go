package family

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines storage for family relations and hereditary history.
type Repository interface {
	AddMember(ctx context.Context, userID string, req *AddMemberRequest) (*Member, error)
	ListMembers(ctx context.Context, userID string) ([]Member, error)

	AddHistory(ctx context.Context, userID string, req *AddHistoryRequest) (*HistoryEntry, error)
	ListHistory(ctx context.Context, userID string) ([]HistoryEntry, error)
}

// InMemoryRepository keeps family data in process memory.
type InMemoryRepository struct {
	mu      sync.RWMutex
	members map[string][]Member       // userID -> relations
	history map[string][]HistoryEntry // userID -> entries
	now     func() time.Time
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		members: make(map[string][]Member),
		history: make(map[string][]HistoryEntry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// AddMember validates and stores a relation. One relation per relative.
func (r *InMemoryRepository) AddMember(ctx context.Context, userID string, req *AddMemberRequest) (*Member, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members[userID] {
		if m.RelativeID == req.RelativeID {
			return nil, ErrDuplicateRelation
		}
	}
	member := Member{
		UserID:       userID,
		RelativeID:   req.RelativeID,
		Name:         req.Name,
		Relationship: req.RelationshipType,
		AccessLevel:  req.AccessLevel,
	}
	r.members[userID] = append(r.members[userID], member)
	return &member, nil
}

// ListMembers returns relations in insertion order.
func (r *InMemoryRepository) ListMembers(ctx context.Context, userID string) ([]Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.members[userID]
	out := make([]Member, len(src))
	copy(out, src)
	return out, nil
}

// AddHistory appends a hereditary-condition entry.
func (r *InMemoryRepository) AddHistory(ctx context.Context, userID string, req *AddHistoryRequest) (*HistoryEntry, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entry := HistoryEntry{
		ID:             uuid.NewString(),
		UserID:         userID,
		ConditionName:  req.ConditionName,
		Relationship:   req.Relationship,
		AgeAtDiagnosis: req.AgeAtDiagnosis,
		Notes:          req.Notes,
		CreatedAt:      r.now(),
	}
	r.mu.Lock()
	r.history[userID] = append(r.history[userID], entry)
	r.mu.Unlock()
	return &entry, nil
}

// ListHistory returns entries in insertion order.
func (r *InMemoryRepository) ListHistory(ctx context.Context, userID string) ([]HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.history[userID]
	out := make([]HistoryEntry, len(src))
	copy(out, src)
	return out, nil
}

var _ Repository = (*InMemoryRepository)(nil)
