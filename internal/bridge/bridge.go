package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-remote/internal/connection"
	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/feedback"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-remote/internal/site"
)

// Logger defines the logging interface used by the Bridge.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Broker is the MQTT surface the bridge needs. *mqtt.Client satisfies it.
type Broker interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	Topics() mqtt.Topics
	QoS() byte
}

// Executor runs commands against the active zone. *site.Session satisfies it.
type Executor interface {
	Execute(key string, cmd site.Command) error
}

// StateDocument is the retained payload of a device state topic.
type StateDocument struct {
	Zone      string                           `json:"zone"`
	Device    string                           `json:"device"`
	Name      string                           `json:"name"`
	Category  device.Category                  `json:"category"`
	Feedback  map[feedback.Kind]map[string]any `json:"feedback"`
	Timestamp time.Time                        `json:"timestamp"`
}

// StatusDocument is the payload of the status topic.
type StatusDocument struct {
	Status    string    `json:"status"`
	Address   string    `json:"address,omitempty"`
	Message   string    `json:"message"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type message struct {
	topic    string
	payload  []byte
	retained bool
}

const defaultQueueSize = 256

// Bridge publishes zone state and consumes zone commands.
type Bridge struct {
	broker  Broker
	store   device.Source
	session Executor
	topics  mqtt.Topics
	queue   chan message
	now     func() time.Time

	// zoneMu serialises SetZone.
	zoneMu sync.Mutex

	mu           sync.RWMutex
	zone         string
	commandTopic string
	projectors   []*device.Projector
	logger       Logger

	dropped atomic.Uint64
}

// New creates a bridge. Call Run to start publishing and SetZone (usually
// via site.Session.OnZoneChange) to follow the active zone.
func New(broker Broker, store device.Source, session Executor) *Bridge {
	return &Bridge{
		broker:  broker,
		store:   store,
		session: session,
		topics:  broker.Topics(),
		queue:   make(chan message, defaultQueueSize),
		now:     time.Now,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the bridge.
func (b *Bridge) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	b.mu.Lock()
	b.logger = logger
	b.mu.Unlock()
}

// SetZone follows zone: projectors of the previous zone are closed, its
// command subscription dropped, and every device of zone gets a projector
// and an initial retained state. A nil zone only tears down.
func (b *Bridge) SetZone(zone *site.Zone) {
	b.zoneMu.Lock()
	defer b.zoneMu.Unlock()

	b.mu.Lock()
	old := b.projectors
	oldTopic := b.commandTopic
	b.projectors = nil
	b.commandTopic = ""
	b.zone = ""
	if zone != nil {
		b.zone = zone.Slug
	}
	logger := b.logger
	b.mu.Unlock()

	for _, p := range old {
		p.Close()
	}
	if oldTopic != "" {
		if err := b.broker.Unsubscribe(oldTopic); err != nil {
			logger.Warn("bridge unsubscribe failed", "topic", oldTopic, "error", err)
		}
	}
	if zone == nil {
		return
	}

	projectors := make([]*device.Projector, 0, len(zone.All()))
	for _, dev := range zone.All() {
		p := device.NewProjector(b.store, dev, func(projection device.Projection) {
			b.publishState(zone.Slug, dev, projection)
		})
		projectors = append(projectors, p)
		b.publishState(zone.Slug, dev, p.Current())
	}

	topic := b.topics.ZoneCommands(zone.Slug)
	if err := b.broker.Subscribe(topic, b.broker.QoS(), b.handleCommand); err != nil {
		logger.Error("bridge subscribe failed", "topic", topic, "error", err)
		topic = ""
	}

	b.mu.Lock()
	b.projectors = projectors
	b.commandTopic = topic
	b.mu.Unlock()

	logger.Info("bridge following zone", "zone", zone.Name, "devices", len(projectors))
}

// Notify publishes a connection status event. It makes the Bridge a
// connection.StatusNotifier.
func (b *Bridge) Notify(status connection.Status) {
	doc := StatusDocument{
		Status:    status.Kind.String(),
		Address:   status.Address,
		Message:   status.Message(),
		Timestamp: status.At,
	}
	if status.Err != nil {
		doc.Error = status.Err.Error()
	}
	b.enqueue(b.topics.Status(), doc, true)
}

func (b *Bridge) publishState(zone string, dev device.Device, projection device.Projection) {
	b.enqueue(b.topics.DeviceState(zone, dev.Slug), StateDocument{
		Zone:      zone,
		Device:    dev.Slug,
		Name:      dev.Name,
		Category:  dev.Category,
		Feedback:  projection.ByOp(dev.Commands),
		Timestamp: b.now().UTC(),
	}, true)
}

func (b *Bridge) enqueue(topic string, v any, retained bool) {
	payload, err := json.Marshal(v)
	if err != nil {
		b.log().Error("bridge payload encoding failed", "topic", topic, "error", err)
		return
	}
	select {
	case b.queue <- message{topic: topic, payload: payload, retained: retained}:
	default:
		b.dropped.Add(1)
		b.log().Warn("bridge queue full, dropping message", "topic", topic)
	}
}

// Run publishes queued messages until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-b.queue:
			if err := b.broker.Publish(msg.topic, msg.payload, b.broker.QoS(), msg.retained); err != nil {
				b.log().Warn("bridge publish failed", "topic", msg.topic, "error", err)
			}
		}
	}
}

// Close tears down the current zone.
func (b *Bridge) Close() {
	b.SetZone(nil)
}

// Dropped returns the number of messages lost to a full queue.
func (b *Bridge) Dropped() uint64 {
	return b.dropped.Load()
}

// handleCommand is the MQTT handler for the active zone's command topics.
func (b *Bridge) handleCommand(topic string, payload []byte) error {
	zone, deviceKey, _, err := b.topics.ParseDeviceTopic(topic)
	if err != nil {
		return err
	}

	b.mu.RLock()
	active := b.zone
	b.mu.RUnlock()
	if zone != active {
		return fmt.Errorf("%w: %s", ErrWrongZone, zone)
	}

	var cmd site.Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	if err := b.session.Execute(deviceKey, cmd); err != nil {
		return err
	}
	b.log().Debug("bridge command applied", "zone", zone, "device", deviceKey)
	return nil
}

func (b *Bridge) log() Logger {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.logger
}
