package workflow

import (
	"regexp"
	"strings"
)

var (
	orderIDPattern = regexp.MustCompile(`(?i)\bXRD\d{4,6}\b`)
	emailPattern   = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
)

// ExtractOrderID finds an XRD order token in free text, normalized to
// uppercase. Reports false when no token is present.
func ExtractOrderID(text string) (string, bool) {
	m := orderIDPattern.FindString(text)
	if m == "" {
		return "", false
	}
	return strings.ToUpper(m), true
}

// StripOrderID removes any order token from the text, leaving the
// surrounding complaint prose.
func StripOrderID(text string) string {
	return strings.TrimSpace(orderIDPattern.ReplaceAllString(text, ""))
}

// ExtractEmail finds an email-shaped token in free text.
func ExtractEmail(text string) (string, bool) {
	m := emailPattern.FindString(text)
	if m == "" {
		return "", false
	}
	return m, true
}

// ValidEmail reports whether s contains a syntactically plausible
// mailbox. Deliberately loose; the mail server has the final word.
func ValidEmail(s string) bool {
	return s != "" && emailPattern.MatchString(s)
}
