package form

import "time"

// Element is a single form control on a page.
type Element interface {
	// Attr returns the attribute value, or "" when absent.
	Attr(name string) string
	// Type returns the lowercased type attribute and whether it is present.
	Type() (string, bool)
	Value() string
	SetValue(v string)
	// LabelText returns the text of the label associated with the element.
	LabelText() string
	// SetStyle sets one inline style property; an empty value clears it.
	SetStyle(prop, value string)
	// Dispatch fires a synthetic bubbling event such as "input".
	Dispatch(event string)
}

// Notice is a transient notification shown on the page.
type Notice interface {
	SetStyle(prop, value string)
	Remove()
}

// Page provides the input elements of a document in document order.
type Page interface {
	Inputs() []Element
	Notify(message string) Notice
}

// Scheduler runs cosmetic callbacks after a delay. Fill results never
// depend on a callback having run.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// TimerScheduler schedules callbacks on runtime timers.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }
