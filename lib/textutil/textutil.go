package textutil

import "strings"

// NormalizeActivity folds an activity name into its identity form.
// The site is inconsistent about casing and padding between the booking
// calendar and the reservations table, so comparisons go through this.
func NormalizeActivity(name string) string {
	return strings.ToLower(strings.Trim(name, " \n\t"))
}

// EqualActivity reports whether two activity names refer to the same
// class.
func EqualActivity(a, b string) bool {
	return NormalizeActivity(a) == NormalizeActivity(b)
}
