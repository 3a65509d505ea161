package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// RecordHubCall writes one hub_call point: the household, the
// operation (states, template, service, ping), the HTTP status, the
// wall-clock duration, and whether the call errored.
//
// Implements the hub client's CallRecorder. Non-blocking; drops the
// point silently when disconnected.
func (c *Client) RecordHubCall(householdID int64, operation string, status int, duration time.Duration, err error) {
	if !c.IsConnected() {
		return
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}

	point := write.NewPoint(
		"hub_call",
		map[string]string{
			"household_id": strconv.FormatInt(householdID, 10),
			"operation":    operation,
			"outcome":      outcome,
		},
		map[string]interface{}{
			"status":      status,
			"duration_ms": float64(duration.Microseconds()) / 1000.0,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and
// fields. Used for one-off operational metrics.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}
