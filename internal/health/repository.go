package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for health-log storage.
type Repository interface {
	AddMetrics(ctx context.Context, userID string, reqs []AddMetricRequest) ([]MetricSample, error)
	ListMetrics(ctx context.Context, userID string, window TimeWindow) ([]MetricSample, error)

	CreateSymptom(ctx context.Context, userID string, req *CreateSymptomRequest) (*SymptomRecord, error)
	ListSymptoms(ctx context.Context, userID string, window TimeWindow) ([]SymptomRecord, error)
	DeleteSymptom(ctx context.Context, userID, recordID string) error

	ListCatalog(ctx context.Context) ([]CatalogSymptom, error)

	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpsertProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*Profile, error)
}

// InMemoryRepository keeps health logs in process memory. Used in tests and
// when no database is configured.
type InMemoryRepository struct {
	mu       sync.RWMutex
	metrics  map[string][]MetricSample  // userID -> samples
	symptoms map[string][]SymptomRecord // userID -> records
	profiles map[string]*Profile
	catalog  []CatalogSymptom
	now      func() time.Time
}

// NewInMemoryRepository creates an empty in-memory repository seeded with the
// default symptom catalog.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		metrics:  make(map[string][]MetricSample),
		symptoms: make(map[string][]SymptomRecord),
		profiles: make(map[string]*Profile),
		catalog:  DefaultCatalog(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// DefaultCatalog returns the built-in symptom catalog.
func DefaultCatalog() []CatalogSymptom {
	return []CatalogSymptom{
		{ID: "fever", Name: "Fever", Category: "general"},
		{ID: "headache", Name: "Headache", Category: "neurological"},
		{ID: "cough", Name: "Cough", Category: "respiratory"},
		{ID: "sore_throat", Name: "Sore Throat", Category: "respiratory"},
		{ID: "shortness_of_breath", Name: "Shortness of Breath", Category: "respiratory"},
		{ID: "fatigue", Name: "Fatigue", Category: "general"},
		{ID: "nausea", Name: "Nausea", Category: "digestive"},
		{ID: "diarrhea", Name: "Diarrhea", Category: "digestive"},
		{ID: "chest_pain", Name: "Chest Pain", Category: "cardiac"},
		{ID: "dizziness", Name: "Dizziness", Category: "neurological"},
		{ID: "joint_pain", Name: "Joint Pain", Category: "musculoskeletal"},
		{ID: "rash", Name: "Rash", Category: "dermatological"},
	}
}

// AddMetrics validates and appends samples.
func (r *InMemoryRepository) AddMetrics(ctx context.Context, userID string, reqs []AddMetricRequest) ([]MetricSample, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	for i := range reqs {
		if err := reqs[i].Validate(); err != nil {
			return nil, err
		}
	}

	created := make([]MetricSample, 0, len(reqs))
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range reqs {
		recordedAt := req.RecordedAt
		if recordedAt.IsZero() {
			recordedAt = r.now()
		}
		sample := MetricSample{
			ID:         uuid.NewString(),
			UserID:     userID,
			MetricType: req.MetricType,
			Value:      req.Value,
			Unit:       req.Unit,
			Source:     req.Source,
			RecordedAt: recordedAt,
		}
		r.metrics[userID] = append(r.metrics[userID], sample)
		created = append(created, sample)
	}
	return created, nil
}

// ListMetrics returns samples within the window, oldest first.
func (r *InMemoryRepository) ListMetrics(ctx context.Context, userID string, window TimeWindow) ([]MetricSample, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []MetricSample
	for _, s := range r.metrics[userID] {
		if window.Contains(s.RecordedAt) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

// CreateSymptom validates and stores a symptom record.
func (r *InMemoryRepository) CreateSymptom(ctx context.Context, userID string, req *CreateSymptomRequest) (*SymptomRecord, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	recordedAt := req.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = r.now()
	}
	name := req.SymptomName
	if name == "" {
		for _, c := range r.catalog {
			if c.ID == req.SymptomID {
				name = c.Name
				break
			}
		}
	}
	record := &SymptomRecord{
		ID:              uuid.NewString(),
		UserID:          userID,
		SymptomID:       req.SymptomID,
		SymptomName:     name,
		Severity:        req.Severity,
		Notes:           req.Notes,
		MedicationTaken: req.MedicationTaken,
		DoctorVisited:   req.DoctorVisited,
		RecordedAt:      recordedAt,
	}

	r.mu.Lock()
	r.symptoms[userID] = append(r.symptoms[userID], *record)
	r.mu.Unlock()
	return record, nil
}

// ListSymptoms returns records within the window, newest first.
func (r *InMemoryRepository) ListSymptoms(ctx context.Context, userID string, window TimeWindow) ([]SymptomRecord, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []SymptomRecord
	for _, s := range r.symptoms[userID] {
		if window.Contains(s.RecordedAt) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	return out, nil
}

// DeleteSymptom removes a record. Deletion is terminal; there is no
// soft-delete visible to callers.
func (r *InMemoryRepository) DeleteSymptom(ctx context.Context, userID, recordID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.symptoms[userID]
	for i, s := range records {
		if s.ID == recordID {
			r.symptoms[userID] = append(records[:i:i], records[i+1:]...)
			return nil
		}
	}
	return ErrSymptomNotFound
}

// ListCatalog returns the symptom catalog.
func (r *InMemoryRepository) ListCatalog(ctx context.Context) ([]CatalogSymptom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CatalogSymptom, len(r.catalog))
	copy(out, r.catalog)
	return out, nil
}

// GetProfile returns the user's health profile.
func (r *InMemoryRepository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

// UpsertProfile creates or patches the user's health profile. Zero-valued
// request fields leave the stored value untouched.
func (r *InMemoryRepository) UpsertProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*Profile, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		p = &Profile{UserID: userID}
		r.profiles[userID] = p
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Age > 0 {
		p.Age = req.Age
	}
	if req.Gender != "" {
		p.Gender = req.Gender
	}
	if req.HeightCM > 0 {
		p.HeightCM = req.HeightCM
	}
	if req.WeightKG > 0 {
		p.WeightKG = req.WeightKG
	}
	if req.BloodType != "" {
		p.BloodType = req.BloodType
	}
	p.UpdatedAt = r.now()
	cp := *p
	return &cp, nil
}

var _ Repository = (*InMemoryRepository)(nil)
