package devices

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/swasthya/healthlog-platform/internal/health"
)

// MetricWriter receives the generated samples. Satisfied by the health
// repository.
type MetricWriter interface {
	AddMetrics(ctx context.Context, userID string, reqs []health.AddMetricRequest) ([]health.MetricSample, error)
}

// Syncer simulates a device sync: it generates a plausible sample batch for
// the device type and appends it to the user's metrics. There is no real
// device transport behind it.
type Syncer struct {
	repo    Repository
	metrics MetricWriter
	rand    *rand.Rand
	now     func() time.Time
}

// NewSyncer creates a syncer with its own PRNG.
func NewSyncer(repo Repository, metrics MetricWriter) *Syncer {
	return &Syncer{
		repo:    repo,
		metrics: metrics,
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Sync generates and stores a batch for an active device, then stamps the
// sync time. Disconnected devices refuse to sync.
func (s *Syncer) Sync(ctx context.Context, userID, deviceID string) ([]health.MetricSample, error) {
	device, err := s.repo.Get(ctx, userID, deviceID)
	if err != nil {
		return nil, err
	}
	if !device.IsActive {
		return nil, ErrDeviceInactive
	}

	now := s.now()
	reqs := s.generate(device, now)
	created, err := s.metrics.AddMetrics(ctx, userID, reqs)
	if err != nil {
		return nil, fmt.Errorf("devices: store synced metrics: %w", err)
	}
	if err := s.repo.MarkSynced(ctx, userID, deviceID, now); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Syncer) generate(device *WearableDevice, now time.Time) []health.AddMetricRequest {
	source := "device:" + device.DeviceType
	switch device.DeviceType {
	case TypeBPMonitor:
		return []health.AddMetricRequest{
			{MetricType: "blood_pressure_systolic", Value: float64(105 + s.rand.Intn(30)), Unit: "mmHg", Source: source, RecordedAt: now},
			{MetricType: "blood_pressure_diastolic", Value: float64(65 + s.rand.Intn(25)), Unit: "mmHg", Source: source, RecordedAt: now},
		}
	case TypeGlucoseMeter:
		return []health.AddMetricRequest{
			{MetricType: "blood_glucose", Value: float64(80 + s.rand.Intn(60)), Unit: "mg/dL", Source: source, RecordedAt: now},
		}
	default:
		// Bands and watches report the same vitals.
		return []health.AddMetricRequest{
			{MetricType: "heart_rate", Value: float64(58 + s.rand.Intn(45)), Unit: "bpm", Source: source, RecordedAt: now},
			{MetricType: "steps", Value: float64(s.rand.Intn(12000)), Unit: "steps", Source: source, RecordedAt: now},
			{MetricType: "sleep_hours", Value: 4 + s.rand.Float64()*5, Unit: "hours", Source: source, RecordedAt: now},
		}
	}
}
