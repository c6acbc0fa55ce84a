// Package influxdb provides the buffered write client for Metric Relay.
//
// It wraps influxdata/influxdb-client-go with the relay's write routing:
// one non-blocking write API per target database, created lazily, with
// asynchronous failures surfaced through an error callback instead of
// blocking the ingest path.
//
// # Usage
//
//	writer, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer writer.Close()
//
//	writer.SetOnError(func(database string, err error) {
//	    logger.Error("write failed", "database", database, "error", err)
//	})
//
//	err = writer.WriteRecord("cpu,host=a usage=0.64", "telemetry")
//
// A nil return from WriteRecord means the record was queued; delivery is
// confirmed only by the absence of an error callback.
package influxdb
