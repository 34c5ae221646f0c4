package console

import "fmt"

// ANSI escape code constants for terminal styling.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	White  = "\033[37m"

	BrightCyan   = "\033[96m"
	BrightYellow = "\033[93m"
	BrightWhite  = "\033[97m"

	// clearLine erases from the cursor to the end of the line.
	clearLine = "\033[K"
)

// Palette applies colors when enabled and passes text through unchanged otherwise,
// so output piped to a file carries no escape sequences.
type Palette struct {
	enabled bool
}

// NewPalette returns a Palette that colors output only when enabled is true.
func NewPalette(enabled bool) Palette {
	return Palette{enabled: enabled}
}

// Enabled reports whether the palette emits escape sequences.
func (p Palette) Enabled() bool {
	return p.enabled
}

// Colorize wraps text with the given ANSI color code and a reset suffix.
//
// Precondition: color must be a valid ANSI escape sequence.
// Postcondition: Returns text unchanged when the palette is disabled.
func (p Palette) Colorize(color, text string) string {
	if !p.enabled {
		return text
	}
	return color + text + Reset
}

// Colorf wraps a formatted string with the given ANSI color code.
//
// Precondition: color must be a valid ANSI escape sequence.
// Postcondition: Returns the formatted text, wrapped only when the palette is enabled.
func (p Palette) Colorf(color, format string, args ...any) string {
	return p.Colorize(color, fmt.Sprintf(format, args...))
}

// StripANSI removes all ANSI CSI escape sequences from a string.
//
// Postcondition: Returns s with every \033[...<final byte> sequence removed.
func StripANSI(s string) string {
	result := make([]byte, 0, len(s))
	i := 0
	for i < len(s) {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			// A CSI sequence ends at the first byte in 0x40..0x7E.
			j := i + 2
			for j < len(s) && (s[j] < 0x40 || s[j] > 0x7e) {
				j++
			}
			if j < len(s) {
				i = j + 1
				continue
			}
		}
		result = append(result, s[i])
		i++
	}
	return string(result)
}
