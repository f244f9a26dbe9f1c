package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePoint queues one point. It is dropped when the client is closed.
//
// Example:
//
//	client.WritePoint("feedback",
//	    map[string]string{"kind": "ushort", "id": "4"},
//	    map[string]any{"value": 75.0},
//	    entry.Timestamp)
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any, ts time.Time) {
	if !c.IsConnected() {
		return
	}
	if ts.IsZero() {
		ts = time.Now()
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, ts))
}
