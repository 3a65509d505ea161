package mqtt

// Topic prefixes for the Dinodia event bus.
//
// The scheme is flat: dinodia/{category}/{name}. Core publishes, it
// never subscribes.
const (
	// TopicPrefix is the base for all Dinodia topics.
	TopicPrefix = "dinodia"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "dinodia/system"
)

// Topics provides builders for Dinodia MQTT topics. Using these
// helpers keeps topic naming consistent across the codebase.
type Topics struct{}

// SystemStatus returns the retained online/offline status topic.
//
// Example: dinodia/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// EventCommand returns the topic carrying one JSON event per
// attempted control command.
//
// Example: dinodia/event/command
func (Topics) EventCommand() string {
	return TopicPrefix + "/event/command"
}
