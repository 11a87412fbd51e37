package health

import (
	"sort"
	"time"
)

// TimelinePoint is a single plotted symptom occurrence.
type TimelinePoint struct {
	X        string `json:"x"`
	Y        int    `json:"y"`
	RecordID string `json:"record_id"`
	Notes    string `json:"notes,omitempty"`
}

// TimelineDataset is one symptom's series across the window.
type TimelineDataset struct {
	Label           string          `json:"label"`
	SymptomCategory string          `json:"symptom_category"`
	Data            []TimelinePoint `json:"data"`
}

// Timeline is the chart-ready payload of GET /api/users/{id}/timeline.
type Timeline struct {
	Labels   []string          `json:"labels"`
	Datasets []TimelineDataset `json:"datasets"`
}

// BuildTimeline turns flat symptom records into date labels and one dataset
// per symptom. Labels are distinct record dates ascending; points within a
// dataset are ascending by time; datasets appear in first-seen chronological
// order.
func BuildTimeline(records []SymptomRecord, catalog []CatalogSymptom) Timeline {
	categories := make(map[string]string, len(catalog))
	for _, c := range catalog {
		categories[c.ID] = c.Category
		categories[c.Name] = c.Category
	}

	sorted := make([]SymptomRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RecordedAt.Before(sorted[j].RecordedAt)
	})

	var labels []string
	seenDates := make(map[string]struct{})
	datasetIndex := make(map[string]int)
	var datasets []TimelineDataset

	for _, rec := range sorted {
		day := rec.RecordedAt.UTC().Format(time.DateOnly)
		if _, ok := seenDates[day]; !ok {
			seenDates[day] = struct{}{}
			labels = append(labels, day)
		}

		idx, ok := datasetIndex[rec.SymptomName]
		if !ok {
			category := categories[rec.SymptomID]
			if category == "" {
				category = categories[rec.SymptomName]
			}
			if category == "" {
				category = "general"
			}
			idx = len(datasets)
			datasetIndex[rec.SymptomName] = idx
			datasets = append(datasets, TimelineDataset{
				Label:           rec.SymptomName,
				SymptomCategory: category,
			})
		}
		datasets[idx].Data = append(datasets[idx].Data, TimelinePoint{
			X:        rec.RecordedAt.UTC().Format(time.RFC3339),
			Y:        rec.Severity,
			RecordID: rec.ID,
			Notes:    rec.Notes,
		})
	}

	return Timeline{Labels: labels, Datasets: datasets}
}
