package detector

import "strings"

// typeKeywords maps element types to the caption keywords that identify them.
// Order matters: the first matching category wins.
var typeKeywords = []struct {
	elementType ElementType
	keywords    []string
}{
	{ElementTypeButton, []string{"button", "btn"}},
	{ElementTypeInput, []string{"input", "field", "textbox"}},
	{ElementTypeIcon, []string{"icon", "symbol"}},
	{ElementTypeSearch, []string{"search"}},
	{ElementTypeLink, []string{"link", "hyperlink"}},
	{ElementTypeImage, []string{"image", "img", "photo"}},
}

// ClassifyCaption derives an element type from a caption by case-insensitive
// keyword matching. Captions that match no category are classified as text.
func ClassifyCaption(caption string) ElementType {
	lower := strings.ToLower(caption)

	for _, entry := range typeKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.elementType
			}
		}
	}

	return ElementTypeText
}
