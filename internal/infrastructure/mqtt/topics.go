package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when the configured prefix is empty.
const DefaultTopicPrefix = "graylogic/remote"

// Topics builds the topic names under one prefix.
//
//	topics := mqtt.NewTopics("graylogic/remote")
//	topics.DeviceState("salon", "plafonnier")
//	// "graylogic/remote/salon/plafonnier/state"
type Topics struct {
	Prefix string
}

// NewTopics returns topic builders for prefix, trimming slashes.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{Prefix: prefix}
}

// Availability is the retained online/offline topic.
func (t Topics) Availability() string {
	return t.Prefix + "/availability"
}

// Status carries connection status events for the remote source.
func (t Topics) Status() string {
	return t.Prefix + "/status"
}

// DeviceState carries a device's retained projection.
func (t Topics) DeviceState(zone, device string) string {
	return fmt.Sprintf("%s/%s/%s/state", t.Prefix, zone, device)
}

// DeviceCommand receives commands for one device.
func (t Topics) DeviceCommand(zone, device string) string {
	return fmt.Sprintf("%s/%s/%s/command", t.Prefix, zone, device)
}

// ZoneCommands matches the command topic of every device in zone.
func (t Topics) ZoneCommands(zone string) string {
	return fmt.Sprintf("%s/%s/+/command", t.Prefix, zone)
}

// ParseDeviceTopic extracts zone and device from a state or command topic.
// kind is "state" or "command".
func (t Topics) ParseDeviceTopic(topic string) (zone, device, kind string, err error) {
	rest, ok := strings.CutPrefix(topic, t.Prefix+"/")
	if !ok {
		return "", "", "", fmt.Errorf("%w: %q outside prefix %q", ErrInvalidTopic, topic, t.Prefix)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	switch parts[2] {
	case "state", "command":
		return parts[0], parts[1], parts[2], nil
	default:
		return "", "", "", fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
}
