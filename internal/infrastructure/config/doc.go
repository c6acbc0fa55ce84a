// Package config loads and validates Metric Relay configuration.
//
// Configuration comes from a YAML file with environment variable
// overrides layered on top (METRICRELAY_SECTION_KEY). Defaults are
// applied before the file is read, so a minimal config only needs the
// broker, the InfluxDB target and at least one route.
//
// # Example
//
//	service:
//	  id: "relay-01"
//	mqtt:
//	  broker:
//	    host: "localhost"
//	    port: 1883
//	influxdb:
//	  url: "http://localhost:8086"
//	  org: "home"
//	  bucket: "telemetry"
//	routes:
//	  - topic: "sensors/+/climate"
//	    measurement: "climate"
//	    integer_fields: ["count"]
//
// Secrets (broker password, InfluxDB token) should come from the
// environment rather than the file in production.
package config
