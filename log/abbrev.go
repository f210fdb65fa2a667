package log

import "fmt"

// Abbreviate renders a collection for a log line without dumping every
// element: "" for none, "(a)" for one, "(a and b)" for two and
// "N elements (from a to b)" otherwise.
func Abbreviate[T any](items []T) string {
	switch n := len(items); n {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("(%v)", items[0])
	case 2:
		return fmt.Sprintf("(%v and %v)", items[0], items[1])
	default:
		return fmt.Sprintf("%d elements (from %v to %v)", n, items[0], items[n-1])
	}
}
