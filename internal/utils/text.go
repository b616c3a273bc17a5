package utils

import "strings"

// TrimText removes surrounding whitespace from user supplied text. The
// content itself is stored as typed; clients render it as plain text.
func TrimText(s string) string {
	return strings.TrimSpace(s)
}

// OptionalText returns nil when the trimmed text is empty.
func OptionalText(s string) *string {
	trimmed := TrimText(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
