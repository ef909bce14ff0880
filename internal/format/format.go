// Package format renders raw backend fields as display strings. Everything
// here is pure; unknown or missing inputs degrade to placeholders instead
// of failing a render.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

// Unknown is rendered for fields the backend left empty.
const Unknown = "—"

// Minutes renders a minutes-played total with thousands separators.
func Minutes(n int) string {
	return thousands(n)
}

// Percent renders a 0-100 value with one decimal.
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Decimal renders a fixed two-decimal value.
func Decimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// PerNinety normalizes a season total to a per-90-minutes rate, rounded to
// two decimals. Zero minutes yields zero rather than a division.
func PerNinety(metric float64, minutes int) float64 {
	if minutes <= 0 {
		return 0
	}
	return math.Round(metric/float64(minutes)*90*100) / 100
}

// Date renders a calendar date, "02 Jan 2006".
func Date(t time.Time) string {
	if t.IsZero() {
		return Unknown
	}
	return t.Format("02 Jan 2006")
}

// DateTime renders a timestamp to the minute, "02 Jan 2006 15:04".
func DateTime(t time.Time) string {
	if t.IsZero() {
		return Unknown
	}
	return t.Format("02 Jan 2006 15:04")
}

// FileSize renders a byte count in the nearest unit with one decimal.
func FileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMG"[exp])
}

// StatusLabel is the display label for a tracking status. Values outside
// the enum render as the default label.
func StatusLabel(s statsapi.TrackingStatus) string {
	switch s {
	case statsapi.StatusInteresting:
		return "Interesting"
	case statsapi.StatusToWatch:
		return "To watch"
	case statsapi.StatusMyPlayer:
		return "My player"
	default:
		return "Non interesting"
	}
}

// Age renders a player age, or the placeholder when unknown.
func Age(years int) string {
	if years <= 0 {
		return Unknown
	}
	return strconv.Itoa(years)
}

// HeightCm renders a height in centimetres, or the placeholder when unknown.
func HeightCm(cm int) string {
	if cm <= 0 {
		return Unknown
	}
	return fmt.Sprintf("%d cm", cm)
}

// WeightKg renders a weight in kilograms, or the placeholder when unknown.
func WeightKg(kg int) string {
	if kg <= 0 {
		return Unknown
	}
	return fmt.Sprintf("%d kg", kg)
}

func thousands(n int) string {
	s := strconv.Itoa(n)
	start := 0
	if n < 0 {
		start = 1
	}
	digits := len(s) - start
	if digits <= 3 {
		return s
	}

	var b strings.Builder
	b.WriteString(s[:start])
	first := start + digits%3
	if first == start {
		first += 3
	}
	b.WriteString(s[start:first])
	for i := first; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
