package control

import (
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/feedback"
	"github.com/nerrad567/gray-logic-remote/internal/protocol"
)

const defaultAudioLevel = 50

// AudioControl drives an audio zone: volume, subwoofer level and mute.
type AudioControl struct {
	dev       device.Device
	sender    Sender
	projector *device.Projector

	mu     sync.Mutex
	volume *slider
	bass   *slider
	muted  bool
	track  tracker
}

// NewAudio creates an audio control.
func NewAudio(source device.Source, dev device.Device, sender Sender) *AudioControl {
	c := &AudioControl{
		dev:    dev,
		sender: sender,
		volume: newSlider(dev.Commands, device.OpVolume, 0, 100, defaultAudioLevel),
		bass:   newSlider(dev.Commands, device.OpSubwooferLevel, 0, 100, defaultAudioLevel),
	}
	c.projector = device.NewProjector(source, dev, func(p device.Projection) { c.observe(p, false) })
	c.observe(c.projector.Current(), true)
	return c
}

// Device returns the controlled device.
func (c *AudioControl) Device() device.Device { return c.dev }

// Muted reports the mute state.
func (c *AudioControl) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// ToggleMute flips mute and sends mute_on or mute_off.
func (c *AudioControl) ToggleMute() error {
	c.mu.Lock()
	c.muted = !c.muted
	op := device.OpMuteOff
	if c.muted {
		op = device.OpMuteOn
	}
	var cmds []protocol.Command
	if id, ok := c.dev.Commands.ID(feedback.KindDigital, op); ok {
		cmds = append(cmds, protocol.Digital(id))
	}
	c.mu.Unlock()
	return sendAll(c.sender, cmds)
}

// State implements Control.
func (c *AudioControl) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{"muted": c.muted}
	if c.volume != nil {
		s[device.OpVolume] = c.volume.value
	}
	if c.bass != nil {
		s[device.OpSubwooferLevel] = c.bass.value
	}
	return s
}

// Handle accepts mute, plus set, begin, move and end on the volume (default)
// or subwoofer_level operation.
func (c *AudioControl) Handle(action Action) error {
	if action.Name == ActionMute {
		return c.ToggleMute()
	}

	c.mu.Lock()
	s := c.volume
	if action.Op == device.OpSubwooferLevel {
		s = c.bass
	} else if action.Op != "" && action.Op != device.OpVolume {
		s = nil
	}
	if s == nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s has no %q level", ErrUnsupportedAction, c.dev.Name, action.Op)
	}
	cmd, err := s.gesture(action)
	c.mu.Unlock()
	if err != nil || cmd == nil {
		return err
	}
	return sendAll(c.sender, []protocol.Command{*cmd})
}

// Close releases the store subscription.
func (c *AudioControl) Close() {
	c.projector.Close()
}

func (c *AudioControl) observe(p device.Projection, initial bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.track.prime(initial) {
		return
	}

	for _, s := range []*slider{c.volume, c.bass} {
		if s == nil {
			continue
		}
		if e, ok := c.track.pending(p, feedback.KindUShort, s.id); ok && s.observe(e.Value) {
			c.track.apply(e)
		}
	}
	if id, ok := c.dev.Commands.ID(feedback.KindDigital, device.OpMuteOn); ok {
		if e, ok := c.track.pending(p, feedback.KindDigital, id); ok {
			c.track.apply(e)
			if b, ok := e.Value.(bool); ok {
				c.muted = b
			}
		}
	}
	if id, ok := c.dev.Commands.ID(feedback.KindDigital, device.OpMuteOff); ok {
		if e, ok := c.track.pending(p, feedback.KindDigital, id); ok {
			c.track.apply(e)
			if b, ok := e.Value.(bool); ok {
				c.muted = !b
			}
		}
	}
}
