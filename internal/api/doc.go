// Package api implements the local HTTP API and WebSocket feed of Gray Logic
// Remote.
//
// It lets a local UI or script drive the same session the control surface
// uses:
//   - connection, zone and feedback status
//   - zone listing, selection and light presets
//   - per-device feedback and commands (ops or control actions)
//   - journalled feedback history
//
// The WebSocket hub at /api/v1/ws broadcasts three channels a client can
// subscribe to: "status" (connection events), "zone.changed" and
// "device.feedback" (projection changes of the active zone's devices).
//
// There is no authentication: the server is meant to listen on loopback or a
// trusted LAN.
package api
