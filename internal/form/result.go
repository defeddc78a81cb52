package form

import "fmt"

// Result summarises one fill pass.
type Result struct {
	FilledFields      []string `json:"filledFields"`
	FieldsFilledCount int      `json:"fieldsFilledCount"`
}

func (r *Result) add(label string) {
	r.FilledFields = append(r.FilledFields, label)
	r.FieldsFilledCount = len(r.FilledFields)
}

// Empty reports whether the pass filled or highlighted nothing.
func (r Result) Empty() bool { return len(r.FilledFields) == 0 }

// Message is the notification text shown on the page after a pass.
func (r Result) Message() string {
	if r.Empty() {
		return "⚠️ No matching fields found on this page"
	}
	return fmt.Sprintf("✅ Filled %d fields!", r.FieldsFilledCount)
}
