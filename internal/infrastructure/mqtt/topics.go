package mqtt

import (
	"fmt"
	"strings"
)

// TopicPrefixSystem is the base for the relay's own system topics.
const TopicPrefixSystem = "metricrelay/system"

// Topics provides builders for Metric Relay MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
type Topics struct{}

// SystemStatus returns the retained status topic for the relay itself.
// Online/offline payloads (including the LWT) are published here.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// ValidateFilter checks an MQTT topic filter for structural problems
// before it reaches the broker: an empty filter, a '#' anywhere but alone
// in the final level, or a '+' sharing a level with other characters.
//
// Route topics come from user configuration, so malformed filters are a
// config mistake worth reporting at startup rather than a silent broker
// rejection at subscribe time.
func ValidateFilter(filter string) error {
	if filter == "" {
		return ErrInvalidTopic
	}

	levels := strings.Split(filter, "/")
	for i, level := range levels {
		if strings.Contains(level, "#") && (level != "#" || i != len(levels)-1) {
			return fmt.Errorf("%w: '#' must stand alone in the final level: %q", ErrInvalidFilter, filter)
		}
		if strings.Contains(level, "+") && level != "+" {
			return fmt.Errorf("%w: '+' must occupy a whole level: %q", ErrInvalidFilter, filter)
		}
	}
	return nil
}
