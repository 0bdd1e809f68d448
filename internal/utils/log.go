package utils

import "strings"

// TruncateForLog flattens s to a single line and cuts it to limit runes, appending an ellipsis when cut.
// Model output is often multi-line, which breaks console log lines.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
