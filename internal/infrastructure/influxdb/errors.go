package influxdb

import "errors"

var (
	// ErrNotConnected indicates there is no live session with InfluxDB.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the startup ping or health check failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled indicates the integration is switched off in configuration.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
