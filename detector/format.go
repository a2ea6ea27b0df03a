package detector

import (
	"fmt"
	"strings"
)

// FormatForPrompt renders detected elements as a text block for the model
// context, one line per element with a 1-based index:
//
//	Detected UI Elements:
//	- [1] Button "Send" at grid (95, 92)
//	- [2] Input "Search" at grid (12, 8)
//
// An empty element list renders as an empty string, not an empty header.
func FormatForPrompt(elements []DetectedElement) string {
	if len(elements) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Detected UI Elements:")
	for i, elem := range elements {
		fmt.Fprintf(&b, "\n- [%d] %s %q at grid (%d, %d)",
			i+1, titleCase(string(elem.ElementType)), elem.Caption,
			elem.GridCenter.X, elem.GridCenter.Y)
	}

	return b.String()
}

// titleCase upper-cases the first letter of an element type. Types are plain
// ASCII words, so no locale handling is needed.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
