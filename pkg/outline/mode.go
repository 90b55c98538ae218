package outline

import (
	"fmt"
	"strings"
)

// Mode controls whether outlines are generated for a loaded asset.
type Mode int

const (
	ModeOff              Mode = 0 // Never generate outlines
	ModeOn               Mode = 1 // Always generate, ignoring hints stored in the asset
	ModeUseModelSettings Mode = 2 // Generate, honoring thresholds stored in the asset
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeOn:
		return "on"
	case ModeUseModelSettings:
		return "model"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ParseMode parses a mode name as produced by String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "false":
		return ModeOff, nil
	case "on", "true":
		return ModeOn, nil
	case "model", "use_model_settings", "gltf":
		return ModeUseModelSettings, nil
	default:
		return ModeOff, fmt.Errorf("unknown outline mode %q", s)
	}
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

// ResolveThreshold picks the angle threshold: an explicit override wins, then
// a hint stored in the asset (only in ModeUseModelSettings), then
// DefaultMinimumAngle.
func ResolveThreshold(override *float64, hint float64, hasHint bool, mode Mode) float64 {
	if override != nil {
		return *override
	}
	if hasHint && mode == ModeUseModelSettings {
		return hint
	}
	return DefaultMinimumAngle
}
