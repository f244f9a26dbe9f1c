// Package influxdb connects Gray Logic Remote to an InfluxDB v2 server for
// feedback telemetry.
//
// It wraps influxdb-client-go v2: Connect pings the server and sets up the
// non-blocking, batched write API; WritePoint queues one point. Write
// failures surface asynchronously through SetOnError.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	client.WritePoint("feedback", tags, fields, ts)
//
// All methods are safe for concurrent use.
package influxdb
