package device

// Device is one controllable device of a zone.
type Device struct {
	Name string `json:"name" yaml:"name"`

	// Slug identifies the device in URLs and MQTT topics.
	// Generated from Name when empty.
	Slug string `json:"slug" yaml:"slug,omitempty"`

	Category Category     `json:"category" yaml:"category"`
	Commands CommandTable `json:"commands" yaml:"commands"`
}

// Category groups devices by the control surface that drives them.
type Category string

// Category constants.
const (
	CategoryLighting Category = "lighting"
	CategoryBlinds   Category = "blinds"
	CategoryAudio    Category = "audio"
	CategoryClimate  Category = "climate"
)

// AllCategories returns all valid category values.
func AllCategories() []Category {
	return []Category{CategoryLighting, CategoryBlinds, CategoryAudio, CategoryClimate}
}

// Well-known operation names used by the built-in controls.
const (
	OpPowerOn            = "power_on"
	OpPowerOff           = "power_off"
	OpIntensity          = "intensity"
	OpUp                 = "power_up"
	OpDown               = "power_down"
	OpStop               = "stop"
	OpTemperature        = "temperature"
	OpCurrentTemperature = "current_temperature"
	OpVolume             = "volume"
	OpSubwooferLevel     = "subwoofer_level"
	OpMuteOn             = "mute_on"
	OpMuteOff            = "mute_off"
)
