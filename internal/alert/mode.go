// Package alert translates "prayer reached" into the configured user-visible
// effect and reports completion so the engine can advance.
package alert

// Mode is how the kiosk alerts when a prayer time arrives.
type Mode string

const (
	// ModeAdhan plays the full adhan audio.
	ModeAdhan Mode = "adhan"
	// ModeNotification shows a visual banner only, no sound.
	ModeNotification Mode = "notification"
	// ModeSilent produces no alert at all.
	ModeSilent Mode = "silent"
)

// ParseMode validates a raw mode string.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeAdhan, ModeNotification, ModeSilent:
		return Mode(s), true
	}
	return "", false
}
