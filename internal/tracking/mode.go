package tracking

import "fmt"

// Mode selects where a run's records go.
type Mode int

// Tracker modes. The zero value is ModeOffline.
const (
	// ModeOffline writes the run directory only.
	ModeOffline Mode = iota
	// ModeOnline writes the run directory and posts every record to Config.Endpoint.
	ModeOnline
	// ModeDisabled turns every Run method into a no-op.
	ModeDisabled
)

// String returns the configuration spelling of the mode.
func (m Mode) String() string {
	switch m {
	case ModeOffline:
		return "offline"
	case ModeOnline:
		return "online"
	case ModeDisabled:
		return "disabled"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "online", "offline" or "disabled".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "offline", "":
		return ModeOffline, nil
	case "online":
		return ModeOnline, nil
	case "disabled":
		return ModeDisabled, nil
	}
	return 0, fmt.Errorf("unknown tracking mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
