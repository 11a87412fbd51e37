package devices

import "errors"

var (
	ErrMissingUserID     = errors.New("user id is required")
	ErrMissingDeviceType = errors.New("device type is required")
	ErrDeviceNotFound    = errors.New("device not found")
	ErrDeviceInactive    = errors.New("device is disconnected")
)
