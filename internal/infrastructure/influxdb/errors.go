package influxdb

import "errors"

// Domain-specific errors for InfluxDB operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrDisabled is returned when the InfluxDB client is disabled in config.
	ErrDisabled = errors.New("influxdb: client disabled in configuration")

	// ErrNotConnected is returned when attempting writes on a disconnected client.
	ErrNotConnected = errors.New("influxdb: client not connected")

	// ErrConnectionFailed is returned when the initial ping fails.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrWriteFailed is returned when a record cannot be queued for writing.
	ErrWriteFailed = errors.New("influxdb: write failed")
)
