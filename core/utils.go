package core

import (
	"strings"
	"time"
)

// NowFunc returns the current time. Tests replace it to pin timestamps.
var NowFunc = func() time.Time { return time.Now().UTC() } // mockable

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// SameEmail compares two email addresses case-insensitively, ignoring surrounding whitespace.
func SameEmail(a, b string) bool {
	return CleanString(a, true) == CleanString(b, true)
}
