package game

import (
	"fmt"
	"time"
)

// FormatHashRate renders a hash rate with a scaled unit for display.
func FormatHashRate(rate float64) string {
	switch {
	case rate >= 1e9:
		return fmt.Sprintf("%.2f GH/s", rate/1e9)
	case rate >= 1e6:
		return fmt.Sprintf("%.2f MH/s", rate/1e6)
	case rate >= 1e3:
		return fmt.Sprintf("%.2f KH/s", rate/1e3)
	default:
		return fmt.Sprintf("%.1f H/s", rate)
	}
}

// FormatDuration renders an elapsed mining time as h/m/s text.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// MiningTime reports how long the snapshot has been mining as of now.
func MiningTime(s State, now time.Time) time.Duration {
	if !s.IsMining || s.MiningStartTime == nil {
		return 0
	}
	return now.Sub(*s.MiningStartTime)
}
