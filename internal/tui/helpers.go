package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/existflow/projtrack/internal/model"
)

// truncate shortens s to max terminal cells with ellipsis
func truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	return runewidth.Truncate(s, max, "...")
}

// repeat creates a string by repeating s n times
func repeat(s string, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(s, n)
}

// parseDate accepts YYYY-MM-DD; empty means fallback
func parseDate(s string, fallback time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, model.NewValidationError("date must look like 2024-12-31")
	}
	return t, nil
}

// parseProgress accepts a number in [0,100], with an optional % suffix
func parseProgress(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, model.NewValidationError("progress must be a number")
	}
	if err := model.ValidateProgress(v); err != nil {
		return 0, err
	}
	return v, nil
}

// categoryIndex returns the position of key in the fixed list, or 0
func categoryIndex(key string) int {
	for i, c := range model.Categories() {
		if c.Key == key {
			return i
		}
	}
	return 0
}
