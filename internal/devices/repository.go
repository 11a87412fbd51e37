package devices

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines storage for wearable devices.
type Repository interface {
	Connect(ctx context.Context, userID string, req *ConnectRequest) (*WearableDevice, error)
	List(ctx context.Context, userID string) ([]WearableDevice, error)
	Get(ctx context.Context, userID, deviceID string) (*WearableDevice, error)
	Disconnect(ctx context.Context, userID, deviceID string) error
	MarkSynced(ctx context.Context, userID, deviceID string, at time.Time) error
}

// InMemoryRepository keeps devices in process memory.
type InMemoryRepository struct {
	mu      sync.RWMutex
	devices map[string][]WearableDevice // userID -> devices
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{devices: make(map[string][]WearableDevice)}
}

// Connect validates and stores an active device.
func (r *InMemoryRepository) Connect(ctx context.Context, userID string, req *ConnectRequest) (*WearableDevice, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	device := WearableDevice{
		ID:         uuid.NewString(),
		UserID:     userID,
		DeviceType: req.DeviceType,
		DeviceID:   deviceID,
		IsActive:   true,
	}
	r.mu.Lock()
	r.devices[userID] = append(r.devices[userID], device)
	r.mu.Unlock()
	return &device, nil
}

// List returns the user's devices, active and disconnected.
func (r *InMemoryRepository) List(ctx context.Context, userID string) ([]WearableDevice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.devices[userID]
	out := make([]WearableDevice, len(src))
	copy(out, src)
	return out, nil
}

// Get returns a single device.
func (r *InMemoryRepository) Get(ctx context.Context, userID, deviceID string) (*WearableDevice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.devices[userID] {
		if d.ID == deviceID {
			cp := d
			return &cp, nil
		}
	}
	return nil, ErrDeviceNotFound
}

// Disconnect deactivates the device. The row stays for history.
func (r *InMemoryRepository) Disconnect(ctx context.Context, userID, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.devices[userID] {
		if d.ID == deviceID {
			if !d.IsActive {
				return ErrDeviceInactive
			}
			r.devices[userID][i].IsActive = false
			return nil
		}
	}
	return ErrDeviceNotFound
}

// MarkSynced stamps the last sync time.
func (r *InMemoryRepository) MarkSynced(ctx context.Context, userID, deviceID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.devices[userID] {
		if d.ID == deviceID {
			r.devices[userID][i].LastSyncedAt = &at
			return nil
		}
	}
	return ErrDeviceNotFound
}

var _ Repository = (*InMemoryRepository)(nil)
