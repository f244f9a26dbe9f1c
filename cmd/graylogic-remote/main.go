// Gray Logic Remote - zone control surface for a remote feedback source.
//
// graylogic-remote keeps one WebSocket connection per selected zone to the
// installation's remote source, mirrors its digital/ushort/string feedback
// and drives lights, blinds, audio and climate devices through it. The run
// command also journals feedback to SQLite, exports numeric feedback to
// InfluxDB, bridges device state to MQTT and serves a local HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
