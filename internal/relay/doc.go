// Package relay wires MQTT ingest to the line-protocol encoder and the
// InfluxDB writer.
//
// Each configured route subscribes to one MQTT topic filter. Incoming
// payloads are classified (raw line protocol text or JSON), encoded
// through lineprotocol.Encoder with the route's measurement and integer
// hints, and queued on the writer for the route's database.
//
// Failures are contained per message: an unencodable payload or a
// rejected write increments the route's counters and is logged, without
// touching the subscription or other routes. Counters are exposed
// through Stats for the status API.
//
// A Relay without a writer runs in dry-run mode, logging encoded
// records instead of writing them. This mirrors the influxdb.enabled
// config switch.
package relay
