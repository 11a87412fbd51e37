package health

import (
	"testing"
	"time"
)

func TestBuildTimeline(t *testing.T) {
	day := func(d int, hour int) time.Time {
		return time.Date(2025, 3, d, hour, 0, 0, 0, time.UTC)
	}
	records := []SymptomRecord{
		{ID: "r3", SymptomName: "Fever", SymptomID: "fever", Severity: 6, RecordedAt: day(3, 9)},
		{ID: "r1", SymptomName: "Headache", SymptomID: "headache", Severity: 4, RecordedAt: day(1, 8)},
		{ID: "r2", SymptomName: "Headache", SymptomID: "headache", Severity: 7, RecordedAt: day(2, 20)},
		{ID: "r4", SymptomName: "Mystery Ache", Severity: 3, RecordedAt: day(3, 10)},
	}
	catalog := DefaultCatalog()

	timeline := BuildTimeline(records, catalog)

	wantLabels := []string{"2025-03-01", "2025-03-02", "2025-03-03"}
	if len(timeline.Labels) != len(wantLabels) {
		t.Fatalf("labels = %v, want %v", timeline.Labels, wantLabels)
	}
	for i, l := range wantLabels {
		if timeline.Labels[i] != l {
			t.Errorf("labels[%d] = %q, want %q", i, timeline.Labels[i], l)
		}
	}

	if len(timeline.Datasets) != 3 {
		t.Fatalf("got %d datasets, want 3", len(timeline.Datasets))
	}
	// Datasets appear in first-seen chronological order.
	if timeline.Datasets[0].Label != "Headache" || timeline.Datasets[1].Label != "Fever" {
		t.Errorf("dataset order wrong: %q, %q", timeline.Datasets[0].Label, timeline.Datasets[1].Label)
	}
	if timeline.Datasets[0].SymptomCategory != "neurological" {
		t.Errorf("Headache category = %q, want neurological", timeline.Datasets[0].SymptomCategory)
	}
	if timeline.Datasets[2].SymptomCategory != "general" {
		t.Errorf("uncataloged symptom category = %q, want general", timeline.Datasets[2].SymptomCategory)
	}

	headache := timeline.Datasets[0].Data
	if len(headache) != 2 {
		t.Fatalf("Headache has %d points, want 2", len(headache))
	}
	if headache[0].RecordID != "r1" || headache[1].RecordID != "r2" {
		t.Errorf("points within a dataset should be ascending by time: %+v", headache)
	}
	if headache[1].Y != 7 {
		t.Errorf("point severity = %d, want 7", headache[1].Y)
	}
}

func TestBuildTimelineEmpty(t *testing.T) {
	timeline := BuildTimeline(nil, DefaultCatalog())
	if len(timeline.Labels) != 0 || len(timeline.Datasets) != 0 {
		t.Errorf("empty input should produce empty timeline: %+v", timeline)
	}
}
