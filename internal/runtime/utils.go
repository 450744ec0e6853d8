package runtime

import "strings"

func formatOrNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "<none>"
	}
	return s
}

func emoji(b bool) string {
	if b {
		return "✅"
	}
	return "❌"
}
