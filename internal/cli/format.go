// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/odash/internal/model"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatCompact abbreviates large counts for narrow cards.
// e.g., 1234 -> "1.2K", 1234567 -> "1.2M"
func FormatCompact(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case abs >= 10_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return FormatNumber(n)
	}
}

// FormatPercentString appends a percent sign to a preformatted value such
// as a summary's AverageReplyRate or Utilization. Empty input renders "-".
func FormatPercentString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	if strings.HasSuffix(s, "%") {
		return s
	}
	return s + "%"
}

// FormatDecimalPercent renders a server-side decimal with two places.
func FormatDecimalPercent(d model.Decimal) string {
	return model.FormatFixed(d.Float(), 2) + "%"
}

// FormatCountPercent renders a count with its share, e.g. "1,024 (3.20%)".
func FormatCountPercent(cp model.CountPercent) string {
	return fmt.Sprintf("%s (%s)", FormatNumber(cp.Count), FormatDecimalPercent(cp.Percentage))
}

// FormatAge renders how long ago t was, e.g. "45s ago", "3m ago", "2h 5m ago".
func FormatAge(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	secs := int64(now.Sub(t).Seconds())
	if secs < 1 {
		return "just now"
	}
	return FormatDuration(secs) + " ago"
}

// FormatDuration formats seconds into a human-readable duration.
// e.g., 3725 -> "1h 2m", 125 -> "2m", 45 -> "45s"
func FormatDuration(secs int64) string {
	if secs <= 0 {
		return "0s"
	}

	hours := secs / 3600
	mins := (secs % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	if mins > 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatMonth renders a year/month pair as "2025-03".
func FormatMonth(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
