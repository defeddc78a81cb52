package form

import "strings"

// Hint joins the name, id, placeholder, aria-label and associated label
// text of el and lowercases the result.
func Hint(el Element) string {
	parts := []string{
		el.Attr("name"),
		el.Attr("id"),
		el.Attr("placeholder"),
		el.Attr("aria-label"),
		el.LabelText(),
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Classify returns the first category in t whose patterns occur in hint or
// whose input type equals inputType. Matching is plain substring
// containment with no word boundaries.
func (t PatternTable) Classify(hint, inputType string) Category {
	hint = strings.ToLower(hint)
	inputType = strings.ToLower(inputType)
	for _, r := range t {
		if r.matches(hint, inputType) {
			return r.Category
		}
	}
	return CategoryNone
}

func (r Rule) matches(hint, inputType string) bool {
	for _, p := range r.Patterns {
		if strings.Contains(hint, p) {
			return true
		}
	}
	return r.InputType != "" && r.InputType == inputType
}

// ClassifyElement classifies el by its hint and declared type.
func (t PatternTable) ClassifyElement(el Element) Category {
	typ, _ := el.Type()
	return t.Classify(Hint(el), typ)
}

func isResumeUpload(el Element) bool {
	key := strings.ToLower(el.Attr("name") + " " + el.Attr("id"))
	for _, tok := range resumeTokens {
		if strings.Contains(key, tok) {
			return true
		}
	}
	return false
}
