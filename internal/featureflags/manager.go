// Package featureflags evaluates switches configured through FEATURE_FLAGS.
package featureflags

import "strings"

// DerivedReadTime computes readTime from word count when the client omits it.
const DerivedReadTime = "derived_read_time"

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "derived_read_time=on,legacy_admin_login=off"
type Manager struct {
	flags map[string]bool
}

// NewManager creates a feature-flag manager from a comma-separated config
// string. Unrecognised values leave the flag off.
func NewManager(raw string) *Manager {
	out := make(map[string]bool)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key, value = normalize(key), normalize(value)
		if !ok || key == "" {
			continue
		}
		switch value {
		case "on", "true", "1", "yes":
			out[key] = true
		default:
			out[key] = false
		}
	}

	return &Manager{flags: out}
}

// Enabled reports whether name is switched on. A nil manager has every flag off.
func (m *Manager) Enabled(name string) bool {
	if m == nil {
		return false
	}
	return m.flags[normalize(name)]
}


// Snapshot returns the evaluated state of every configured flag.
func (m *Manager) Snapshot() map[string]bool {
	out := make(map[string]bool)
	if m == nil {
		return out
	}
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
