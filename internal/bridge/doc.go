// Package bridge mirrors the active zone onto an MQTT broker.
//
// For every device of the active zone the bridge publishes a retained state
// document whenever the device's feedback projection changes, and it accepts
// commands on the zone's command topics:
//
//	{prefix}/{zone}/{device}/state     {"zone":..,"device":..,"feedback":{"ushort":{"intensity":50}},..}
//	{prefix}/{zone}/{device}/command   {"op":"intensity","value":50} or {"action":"toggle"}
//	{prefix}/status                    connection status events
//
// An "op" command is resolved through the device's command table and sent as
// is. An "action" command is handed to the device's control, so local state
// and gesture guards behave as for any other user input.
//
// Publishing happens on the Run goroutine; store notifications only queue.
package bridge
