package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestRepo(now time.Time) *InMemoryRepository {
	repo := NewInMemoryRepository()
	repo.now = func() time.Time { return now }
	return repo
}

func TestInMemoryRepositoryMetrics(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	repo := newTestRepo(now)
	ctx := context.Background()

	created, err := repo.AddMetrics(ctx, "user-1", []AddMetricRequest{
		{MetricType: "heart_rate", Value: 72, Unit: "bpm", RecordedAt: now.Add(-48 * time.Hour)},
		{MetricType: "heart_rate", Value: 80, Unit: "bpm"},
	})
	if err != nil {
		t.Fatalf("AddMetrics() error = %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("AddMetrics() created %d samples, want 2", len(created))
	}
	if created[1].RecordedAt != now {
		t.Errorf("zero RecordedAt should default to now, got %v", created[1].RecordedAt)
	}

	all, err := repo.ListMetrics(ctx, "user-1", TimeWindow{})
	if err != nil {
		t.Fatalf("ListMetrics() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListMetrics() returned %d, want 2", len(all))
	}
	if !all[0].RecordedAt.Before(all[1].RecordedAt) {
		t.Error("metrics should be ordered oldest first")
	}

	start := now.Add(-time.Hour)
	windowed, err := repo.ListMetrics(ctx, "user-1", TimeWindow{Start: &start})
	if err != nil {
		t.Fatalf("ListMetrics() windowed error = %v", err)
	}
	if len(windowed) != 1 {
		t.Errorf("windowed list returned %d, want 1", len(windowed))
	}
}

func TestInMemoryRepositoryAddMetricsValidation(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	if _, err := repo.AddMetrics(ctx, "", []AddMetricRequest{{MetricType: "weight", Value: 70}}); err != ErrMissingUserID {
		t.Errorf("missing user id: got %v, want ErrMissingUserID", err)
	}
	if _, err := repo.AddMetrics(ctx, "user-1", []AddMetricRequest{{Value: 70}}); err != ErrMissingMetricType {
		t.Errorf("missing metric type: got %v, want ErrMissingMetricType", err)
	}

	// Batches are all-or-nothing: a bad entry rejects the whole batch.
	if _, err := repo.AddMetrics(ctx, "user-1", []AddMetricRequest{
		{MetricType: "weight", Value: 70},
		{Value: 80},
	}); err != ErrMissingMetricType {
		t.Errorf("mixed batch: got %v, want ErrMissingMetricType", err)
	}
	stored, _ := repo.ListMetrics(ctx, "user-1", TimeWindow{})
	if len(stored) != 0 {
		t.Errorf("rejected batch should store nothing, found %d samples", len(stored))
	}
}

func TestInMemoryRepositorySymptoms(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	repo := newTestRepo(now)
	ctx := context.Background()

	first, err := repo.CreateSymptom(ctx, "user-1", &CreateSymptomRequest{
		SymptomName: "Headache", Severity: 4, RecordedAt: now.Add(-24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateSymptom() error = %v", err)
	}
	second, err := repo.CreateSymptom(ctx, "user-1", &CreateSymptomRequest{
		SymptomID: "fever", Severity: 7,
	})
	if err != nil {
		t.Fatalf("CreateSymptom() error = %v", err)
	}
	if second.SymptomName != "Fever" {
		t.Errorf("catalog lookup: got name %q, want Fever", second.SymptomName)
	}

	records, err := repo.ListSymptoms(ctx, "user-1", TimeWindow{})
	if err != nil {
		t.Fatalf("ListSymptoms() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ListSymptoms() returned %d, want 2", len(records))
	}
	if records[0].ID != second.ID {
		t.Error("symptoms should be ordered newest first")
	}

	if err := repo.DeleteSymptom(ctx, "user-1", first.ID); err != nil {
		t.Fatalf("DeleteSymptom() error = %v", err)
	}
	if err := repo.DeleteSymptom(ctx, "user-1", first.ID); !errors.Is(err, ErrSymptomNotFound) {
		t.Errorf("repeat delete: got %v, want ErrSymptomNotFound", err)
	}
	if err := repo.DeleteSymptom(ctx, "user-2", second.ID); !errors.Is(err, ErrSymptomNotFound) {
		t.Errorf("cross-user delete: got %v, want ErrSymptomNotFound", err)
	}
}

func TestInMemoryRepositoryProfile(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	repo := newTestRepo(now)
	ctx := context.Background()

	if _, err := repo.GetProfile(ctx, "user-1"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("missing profile: got %v, want ErrProfileNotFound", err)
	}

	created, err := repo.UpsertProfile(ctx, "user-1", &UpdateProfileRequest{
		Name: "Asha", Age: 34, HeightCM: 165, WeightKG: 60,
	})
	if err != nil {
		t.Fatalf("UpsertProfile() error = %v", err)
	}
	if created.UpdatedAt != now {
		t.Errorf("UpdatedAt = %v, want %v", created.UpdatedAt, now)
	}

	// Zero-valued fields leave stored values alone.
	patched, err := repo.UpsertProfile(ctx, "user-1", &UpdateProfileRequest{WeightKG: 62})
	if err != nil {
		t.Fatalf("UpsertProfile() patch error = %v", err)
	}
	if patched.Name != "Asha" || patched.Age != 34 || patched.HeightCM != 165 {
		t.Errorf("patch clobbered fields: %+v", patched)
	}
	if patched.WeightKG != 62 {
		t.Errorf("WeightKG = %v, want 62", patched.WeightKG)
	}
}

func TestInMemoryRepositoryCatalog(t *testing.T) {
	repo := NewInMemoryRepository()
	catalog, err := repo.ListCatalog(context.Background())
	if err != nil {
		t.Fatalf("ListCatalog() error = %v", err)
	}
	if len(catalog) == 0 {
		t.Fatal("default catalog should not be empty")
	}
	for _, c := range catalog {
		if c.ID == "" || c.Name == "" {
			t.Errorf("catalog entry missing id or name: %+v", c)
		}
	}
}
