package device

import "strings"

// Category is a fixed device category derived from hub labels.
type Category string

// Label categories recognised by the catalog.
const (
	CategoryLight        Category = "LIGHT"
	CategoryBlind        Category = "BLIND"
	CategoryMotionSensor Category = "MOTION_SENSOR"
	CategorySpotify      Category = "SPOTIFY"
	CategoryBoiler       Category = "BOILER"
	CategoryDoorbell     Category = "DOORBELL"
	CategorySecurity     Category = "SECURITY"
	CategoryTV           Category = "TV"
	CategorySpeaker      Category = "SPEAKER"
)

// AllCategories lists every category in presentation order.
var AllCategories = []Category{
	CategoryLight,
	CategoryBlind,
	CategoryMotionSensor,
	CategorySpotify,
	CategoryBoiler,
	CategoryDoorbell,
	CategorySecurity,
	CategoryTV,
	CategorySpeaker,
}

// synonym maps one lowercase label onto a category. The table is a
// slice, not a map: when a device carries labels matching several
// categories the first table entry wins, and that tie-break must be
// deterministic.
type synonym struct {
	label    string
	category Category
}

var synonyms = []synonym{
	{"light", CategoryLight},
	{"lights", CategoryLight},
	{"blind", CategoryBlind},
	{"blinds", CategoryBlind},
	{"motion sensor", CategoryMotionSensor},
	{"motion", CategoryMotionSensor},
	{"spotify", CategorySpotify},
	{"boiler", CategoryBoiler},
	{"doorbell", CategoryDoorbell},
	{"home security", CategorySecurity},
	{"security", CategorySecurity},
	{"tv", CategoryTV},
	{"television", CategoryTV},
	{"speaker", CategorySpeaker},
	{"speakers", CategorySpeaker},
}

// Classify maps a device's labels onto a category. Matching is
// case-insensitive. Returns false when no label is in the catalog.
func Classify(labels []string) (Category, bool) {
	lower := make(map[string]bool, len(labels))
	for _, l := range labels {
		lower[strings.ToLower(l)] = true
	}
	for _, s := range synonyms {
		if lower[s.label] {
			return s.category, true
		}
	}
	return "", false
}

var displayNames = map[Category]string{
	CategoryLight:        "Light",
	CategoryBlind:        "Blind",
	CategoryMotionSensor: "Motion Sensor",
	CategorySpotify:      "Spotify",
	CategoryBoiler:       "Boiler",
	CategoryDoorbell:     "Doorbell",
	CategorySecurity:     "Home Security",
	CategoryTV:           "TV",
	CategorySpeaker:      "Speaker",
}

// DisplayName returns the human-readable name for a category. Unknown
// categories render as their raw value.
func (c Category) DisplayName() string {
	if name, ok := displayNames[c]; ok {
		return name
	}
	return string(c)
}

// CategoryOption pairs a category with its display name for filter
// pickers.
type CategoryOption struct {
	ID   Category `json:"id"`
	Name string   `json:"name"`
}

// CategoryOptions lists every catalog category with its display name in
// presentation order.
func CategoryOptions() []CategoryOption {
	opts := make([]CategoryOption, 0, len(AllCategories))
	for _, c := range AllCategories {
		opts = append(opts, CategoryOption{ID: c, Name: c.DisplayName()})
	}
	return opts
}

// AlexaDisplayCategory maps hub labels onto an Alexa display category
// for discovery responses. "lamp" and "curtain" are accepted as
// aliases beyond the main catalog.
func AlexaDisplayCategory(labels []string) string {
	lower := make(map[string]bool, len(labels))
	for _, l := range labels {
		lower[strings.ToLower(l)] = true
	}
	switch {
	case lower["light"] || lower["lamp"]:
		return "LIGHT"
	case lower["blind"] || lower["curtain"]:
		return "INTERIOR_BLIND"
	case lower["tv"]:
		return "TV"
	case lower["speaker"]:
		return "SPEAKER"
	default:
		return "OTHER"
	}
}

// GoogleDeviceType maps hub labels onto a Google Smart Home device
// type for SYNC responses.
func GoogleDeviceType(labels []string) string {
	lower := make(map[string]bool, len(labels))
	for _, l := range labels {
		lower[strings.ToLower(l)] = true
	}
	switch {
	case lower["light"] || lower["lamp"]:
		return "action.devices.types.LIGHT"
	case lower["blind"] || lower["curtain"]:
		return "action.devices.types.BLINDS"
	case lower["speaker"]:
		return "action.devices.types.SPEAKER"
	case lower["tv"]:
		return "action.devices.types.TV"
	default:
		return "action.devices.types.SWITCH"
	}
}
