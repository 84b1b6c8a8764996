package util

// MaxTextLength bounds every free-text field accepted from clients.
const MaxTextLength = 500

// Truncate cuts s to at most max characters (runes, not bytes).
func Truncate(s string, max int) string {
	if max < 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// Coalesce returns s, or def when s is empty.
func Coalesce(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
