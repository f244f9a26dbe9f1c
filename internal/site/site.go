package site

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/config"
)

// Site is the set of zones of an installation.
type Site struct {
	Zones []Zone `yaml:"zones" json:"zones"`
}

// Zone is one room or area served by a single remote source.
type Zone struct {
	Name string `yaml:"name" json:"name"`
	Slug string `yaml:"slug,omitempty" json:"slug"`

	// URL is the WebSocket address of the zone's remote source. A zone
	// without one can be selected but stays disconnected.
	URL string `yaml:"ws_url" json:"ws_url,omitempty"`

	Devices DeviceGroups `yaml:"devices" json:"devices"`
	Presets *Presets     `yaml:"light_presets,omitempty" json:"light_presets,omitempty"`
}

// DeviceGroups holds a zone's devices by category. The group a device is
// listed under sets its category.
type DeviceGroups struct {
	Lights     []device.Device `yaml:"lights,omitempty" json:"lights,omitempty"`
	Blinds     []device.Device `yaml:"blinds,omitempty" json:"blinds,omitempty"`
	AudioZones []device.Device `yaml:"audio_zones,omitempty" json:"audio_zones,omitempty"`
	ACs        []device.Device `yaml:"acs,omitempty" json:"acs,omitempty"`
}

// Presets are the zone-wide light scenes.
type Presets struct {
	// Commands maps a preset name to the digital id the remote source
	// runs it with.
	Commands map[string]int `yaml:"commands" json:"commands"`

	// Levels is the intensity applied to every light when the preset is
	// chosen while disconnected. Missing names use DefaultPresetLevels.
	Levels map[string]float64 `yaml:"levels,omitempty" json:"levels,omitempty"`
}

// DefaultPresetLevels are the offline intensities of the standard presets.
var DefaultPresetLevels = map[string]float64{
	"Morning":   80,
	"Afternoon": 60,
	"Evening":   20,
	"Off":       0,
}

// Level returns the offline intensity for preset name.
func (p *Presets) Level(name string) (float64, bool) {
	if level, ok := p.Levels[name]; ok {
		return level, true
	}
	level, ok := DefaultPresetLevels[name]
	return level, ok
}

// Names returns the preset names in sorted order.
func (p *Presets) Names() []string {
	names := make([]string, 0, len(p.Commands))
	for name := range p.Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every device of the zone in category order: lights, blinds,
// audio zones, ACs.
func (z *Zone) All() []device.Device {
	var all []device.Device
	all = append(all, z.Devices.Lights...)
	all = append(all, z.Devices.Blinds...)
	all = append(all, z.Devices.AudioZones...)
	all = append(all, z.Devices.ACs...)
	return all
}

// Device finds a device by slug or name.
func (z *Zone) Device(key string) (device.Device, error) {
	for _, d := range z.All() {
		if d.Slug == key || d.Name == key {
			return d, nil
		}
	}
	return device.Device{}, fmt.Errorf("%w: %q in zone %s", device.ErrDeviceNotFound, key, z.Name)
}

// Zone finds a zone by slug or name.
func (s *Site) Zone(key string) (*Zone, error) {
	for i := range s.Zones {
		if s.Zones[i].Slug == key || s.Zones[i].Name == key {
			return &s.Zones[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrZoneNotFound, key)
}

// Load reads, normalises and validates a site file.
func Load(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading site file: %w", err)
	}
	return Parse(data)
}

// Parse decodes, normalises and validates a site document.
func Parse(data []byte) (*Site, error) {
	var s Site
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: parsing: %w", ErrInvalidSite, err)
	}
	s.normalise()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Site) normalise() {
	for i := range s.Zones {
		z := &s.Zones[i]
		z.Name = strings.TrimSpace(z.Name)
		if z.Slug == "" {
			z.Slug = device.GenerateSlug(z.Name)
		}
		normaliseGroup(z.Devices.Lights, device.CategoryLighting)
		normaliseGroup(z.Devices.Blinds, device.CategoryBlinds)
		normaliseGroup(z.Devices.AudioZones, device.CategoryAudio)
		normaliseGroup(z.Devices.ACs, device.CategoryClimate)
	}
}

func normaliseGroup(devices []device.Device, category device.Category) {
	for i := range devices {
		devices[i].Category = category
		devices[i].Normalise()
	}
}

// Validate checks every zone and device, collecting all problems.
func (s *Site) Validate() error {
	var errs []string

	zoneSlugs := make(map[string]struct{}, len(s.Zones))
	for _, z := range s.Zones {
		if z.Name == "" {
			errs = append(errs, "zone name cannot be empty")
			continue
		}
		if err := device.ValidateSlug(z.Slug); err != nil {
			errs = append(errs, fmt.Sprintf("zone %s: %v", z.Name, err))
		}
		if _, dup := zoneSlugs[z.Slug]; dup {
			errs = append(errs, fmt.Sprintf("zone %s: duplicate slug %q", z.Name, z.Slug))
		}
		zoneSlugs[z.Slug] = struct{}{}

		if z.URL != "" {
			if err := config.ValidateWebSocketURL(z.URL); err != nil {
				errs = append(errs, fmt.Sprintf("zone %s: ws_url %v", z.Name, err))
			}
		}

		deviceSlugs := make(map[string]struct{})
		for _, d := range z.All() {
			if err := device.ValidateDevice(&d); err != nil {
				errs = append(errs, fmt.Sprintf("zone %s: %v", z.Name, err))
				continue
			}
			if _, dup := deviceSlugs[d.Slug]; dup {
				errs = append(errs, fmt.Sprintf("zone %s: duplicate device slug %q", z.Name, d.Slug))
			}
			deviceSlugs[d.Slug] = struct{}{}
		}

		if z.Presets != nil {
			for name, id := range z.Presets.Commands {
				if id <= 0 {
					errs = append(errs, fmt.Sprintf("zone %s: preset %s has id %d, must be positive", z.Name, name, id))
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSite, strings.Join(errs, "; "))
	}
	return nil
}
