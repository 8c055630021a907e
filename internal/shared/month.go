package shared

import "regexp"

var monthRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidMonth reports whether s is a "YYYY-MM" reference month.
func ValidMonth(s string) bool {
	return monthRegex.MatchString(s)
}
