// Package influxdb records hub-call telemetry in InfluxDB v2.
//
// Every Home Assistant HTTP call made by the hub client lands as one
// point in the hub_call measurement: which household, which operation,
// how long it took, and how it ended. Writes are batched and
// non-blocking, so a slow or absent InfluxDB never slows a request.
//
// The integration is optional. When disabled in config the hub client
// simply runs without a recorder.
package influxdb
