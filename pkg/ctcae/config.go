package ctcae

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is wrapped by every configuration contract violation.
var ErrInvalidConfig = errors.New("invalid grading configuration")

// ConfigError points at the part of the configuration that cannot be used.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Config is the read-only grading configuration: default references, lab
// definitions and the keyword table.
type Config struct {
	Refs    References
	Labs    []LabDefinition
	MapKeys []MapKey
}

// Validate checks the structural contract the grader relies on.
func (c *Config) Validate() error {
	if c == nil {
		return &ConfigError{Field: "config", Reason: "missing"}
	}
	if c.Refs == nil {
		return &ConfigError{Field: "refs", Reason: "missing"}
	}
	if len(c.Labs) == 0 {
		return &ConfigError{Field: "labs", Reason: "missing"}
	}
	if len(c.MapKeys) == 0 {
		return &ConfigError{Field: "map_keys", Reason: "missing"}
	}

	seen := make(map[string]struct{}, len(c.Labs))
	for i, lab := range c.Labs {
		field := fmt.Sprintf("labs[%d]", i)
		if lab.ID == "" {
			return &ConfigError{Field: field + ".id", Reason: "empty"}
		}
		if _, dup := seen[lab.ID]; dup {
			return &ConfigError{Field: field + ".id", Reason: fmt.Sprintf("duplicate id %q", lab.ID)}
		}
		seen[lab.ID] = struct{}{}

		switch lab.Interval {
		case "", ClosedOpen, OpenClosed:
		default:
			return &ConfigError{Field: field + ".interval", Reason: fmt.Sprintf("unknown interval %q", lab.Interval)}
		}

		if lab.Method == MethodRatioULN && lab.Reference == "" {
			return &ConfigError{Field: field + ".reference", Reason: "required for " + string(MethodRatioULN)}
		}

		for j, cp := range lab.Cutpoints {
			cpField := fmt.Sprintf("%s.cutpoints[%d]", field, j)
			if !cp.Grade.Valid() {
				return &ConfigError{Field: cpField + ".grade", Reason: fmt.Sprintf("%d outside 0..%d", cp.Grade, MaxGrade)}
			}
			if math.IsNaN(cp.Min) || math.IsNaN(cp.Max) || cp.Min > cp.Max {
				return &ConfigError{Field: cpField, Reason: fmt.Sprintf("bad range [%v, %v]", cp.Min, cp.Max)}
			}
		}
	}

	for i, mk := range c.MapKeys {
		if mk.Target == "" {
			return &ConfigError{Field: fmt.Sprintf("map_keys[%d].target", i), Reason: "empty"}
		}
		if len(mk.Keys) == 0 {
			return &ConfigError{Field: fmt.Sprintf("map_keys[%d].keys", i), Reason: "empty"}
		}
	}

	return nil
}

// Lab returns the definition with the given id.
func (c *Config) Lab(id string) (LabDefinition, bool) {
	for _, lab := range c.Labs {
		if lab.ID == id {
			return lab, true
		}
	}
	return LabDefinition{}, false
}
