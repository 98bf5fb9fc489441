package display

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// UnknownStamp is shown when an entry has no parseable event id.
const UnknownStamp = "--:--:--"

// HumanTime converts an event id, a unix timestamp with optional fractional
// part, into a local HH:MM:SS stamp. Anything unparseable maps to
// UnknownStamp.
func HumanTime(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return UnknownStamp
	}
	secs, err := strconv.ParseFloat(id, 64)
	if err != nil || secs <= 0 {
		return UnknownStamp
	}
	return time.Unix(int64(secs), 0).Local().Format("15:04:05")
}

// StampColor maps a stamp string to a stable color, so the same second is
// always tinted the same way across redraws and sessions. A 32-bit FNV-1a
// hash of the stamp picks a hue; chroma and the lightness floor are fixed so
// every stamp stays readable on the dark panel.
func StampColor(stamp string) string {
	hash := uint32(2166136261)
	for _, r := range stamp {
		hash ^= uint32(r)
		hash *= 16777619
	}
	hue := float64(hash%360) / 60.0
	const c = 0.74
	x := c * (1.0 - math.Abs(math.Mod(hue, 2.0)-1.0))
	var r, g, b float64
	switch {
	case hue < 1:
		r, g = c, x
	case hue < 2:
		r, g = x, c
	case hue < 3:
		g, b = c, x
	case hue < 4:
		g, b = x, c
	case hue < 5:
		r, b = x, c
	default:
		r, b = c, x
	}
	const m = 0.22
	return colorful.Color{R: r + m, G: g + m, B: b + m}.Hex()
}

// FormatStamp renders a stamp the way the scrollback column shows it.
func FormatStamp(stamp string) string {
	return fmt.Sprintf("[%s] ", stamp)
}
