package devices

import (
	"strings"
	"time"
)

// Device types the simulated sync knows how to generate samples for.
const (
	TypeFitnessBand  = "fitness_band"
	TypeSmartwatch   = "smartwatch"
	TypeBPMonitor    = "bp_monitor"
	TypeGlucoseMeter = "glucose_meter"
)

// WearableDevice is a connected device record. Disconnecting deactivates the
// row; the sync history stays attached to the user's metrics.
type WearableDevice struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	DeviceType   string     `json:"device_type"`
	DeviceID     string     `json:"device_id"`
	IsActive     bool       `json:"is_active"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// ConnectRequest is the body for POST /api/users/{id}/wearable-devices.
type ConnectRequest struct {
	DeviceType string `json:"device_type"`
	DeviceID   string `json:"device_id,omitempty"`
}

// Validate enforces required connect fields.
func (r *ConnectRequest) Validate() error {
	if strings.TrimSpace(r.DeviceType) == "" {
		return ErrMissingDeviceType
	}
	return nil
}
