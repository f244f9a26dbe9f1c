// Package mqtt provides the MQTT client used by the state bridge.
//
// It wraps paho.mqtt.golang with:
//   - auto-reconnect with exponential backoff and subscription restore
//   - a retained availability message and a Last Will so other clients see
//     when Gray Logic Remote goes away
//   - publish/subscribe with input validation and bounded waits
//   - handler panic recovery
//
// Topics live under a configurable prefix (default "graylogic/remote"):
//
//	{prefix}/availability               online/offline (retained, LWT)
//	{prefix}/status                     connection status events
//	{prefix}/{zone}/{device}/state      device projection (retained)
//	{prefix}/{zone}/{device}/command    inbound device commands
//
// All methods are safe for concurrent use.
package mqtt
