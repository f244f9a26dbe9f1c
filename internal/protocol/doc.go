// Package protocol translates between semantic commands and the JSON wire
// messages exchanged with the remote feedback source.
//
// Outbound, one message shape:
//
//	{"action":"action_command","id":19,"type":"boolean","value":true}
//
// Digital commands always assert true on the wire; on/off effects use
// distinct ids. UShort and string commands carry their value unchanged.
//
// Inbound, two shapes discriminated by "action":
//
//	{"action":"action_onopen","type":"ushort","feedback":{"10":75,"11":0}}
//	{"action":"action_feedback","id":10,"type":"ushort","value":80}
//
// A snapshot (action_onopen) is applied to the store as a single batch; an
// incremental message (action_feedback) as a single update. The wire type
// "boolean" maps to feedback.KindDigital; WireType and KindFromWire are the
// only places that mapping is spelled out.
//
// The codec is stateless and safe for concurrent use.
package protocol
