package pipeline

import (
	"fmt"
	"time"

	"go.yaml.in/yaml/v3"
)

// Duration wraps time.Duration with YAML support for strings like "5m" or "90s".
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String renders the duration in time.Duration notation.
func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalYAML parses either a duration string or a plain number of seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("pipeline: invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var secs int64
	if err := value.Decode(&secs); err != nil {
		return fmt.Errorf("pipeline: invalid duration value on line %d", value.Line)
	}
	*d = Duration(time.Duration(secs) * time.Second)
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}
