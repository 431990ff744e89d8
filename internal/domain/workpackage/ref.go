package workpackage

import "regexp"

// refPattern recognizes the two work-package reference syntaxes used across
// branch names and titles: "[op-42]" and "op/42", case-insensitive.
var refPattern = regexp.MustCompile(`(?i)\[op-(\d+)\]|op/(\d+)`)

// ParseRef extracts a work-package reference from free text. Returns the
// digits of the first match and false when neither syntax is present; the
// absence of a reference is not an error.
func ParseRef(text string) (string, bool) {
	m := refPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return m[1], true
	}
	return m[2], true
}
