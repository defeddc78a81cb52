package form

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kalambet/jobfill/internal/profile"
)

// --- fakes ---

type fakeElement struct {
	attrs  map[string]string
	label  string
	styles map[string]string
	events []string
}

func newInput(attrs map[string]string) *fakeElement {
	return &fakeElement{attrs: attrs, styles: map[string]string{}}
}

func (e *fakeElement) Attr(name string) string { return e.attrs[name] }

func (e *fakeElement) Type() (string, bool) {
	v, ok := e.attrs["type"]
	return strings.ToLower(v), ok
}

func (e *fakeElement) Value() string     { return e.attrs["value"] }
func (e *fakeElement) SetValue(v string) { e.attrs["value"] = v }
func (e *fakeElement) LabelText() string { return e.label }

func (e *fakeElement) SetStyle(prop, value string) {
	if value == "" {
		delete(e.styles, prop)
		return
	}
	e.styles[prop] = value
}

func (e *fakeElement) Dispatch(event string) { e.events = append(e.events, event) }

type fakeNotice struct {
	message string
	styles  map[string]string
	removed bool
}

func (n *fakeNotice) SetStyle(prop, value string) { n.styles[prop] = value }
func (n *fakeNotice) Remove()                     { n.removed = true }

type fakePage struct {
	inputs  []*fakeElement
	notices []*fakeNotice
}

func (p *fakePage) Inputs() []Element {
	out := make([]Element, len(p.inputs))
	for i, in := range p.inputs {
		out[i] = in
	}
	return out
}

func (p *fakePage) Notify(message string) Notice {
	n := &fakeNotice{message: message, styles: map[string]string{}}
	p.notices = append(p.notices, n)
	return n
}

// manualScheduler queues callbacks until Flush is called.
type manualScheduler struct {
	mu      sync.Mutex
	pending []scheduled
}

type scheduled struct {
	d time.Duration
	f func()
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, scheduled{d, f})
}

// Flush runs queued callbacks, including ones scheduled by callbacks.
func (s *manualScheduler) Flush() []time.Duration {
	var ran []time.Duration
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return ran
		}
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()
		ran = append(ran, next.d)
		next.f()
	}
}

func newTestFiller() (*Filler, *manualScheduler) {
	sched := &manualScheduler{}
	return NewFiller(Options{Scheduler: sched}), sched
}

// --- classifier ---

func TestClassify(t *testing.T) {
	tests := []struct {
		hint, typ string
		want      Category
	}{
		{"candidate_name", "text", CategoryName},
		{"full-name", "", CategoryName},
		{"contact_email", "text", CategoryEmail},
		{"e-mail", "", CategoryEmail},
		{"email_address", "", CategoryEmail},
		{"mobile", "", CategoryPhone},
		{"current_city", "", CategoryLocation},
		{"linkedin-url", "", CategoryLinkedIn},
		{"portfolio", "", CategoryGitHub},
		{"visa_status", "", CategoryWorkAuth},
		{"authorized_to_work", "", CategoryWorkAuth},
		{"given_name", "", CategoryName},
		{"EMAIL", "", CategoryEmail},
		{"q1", "email", CategoryEmail},
		{"q2", "tel", CategoryPhone},
		{"q3", "TEL", CategoryPhone},
		{"favourite colour", "text", CategoryNone},
		{"", "", CategoryNone},
	}
	for _, tt := range tests {
		if got := DefaultPatterns.Classify(tt.hint, tt.typ); got != tt.want {
			t.Errorf("Classify(%q, %q) = %v, want %v", tt.hint, tt.typ, got, tt.want)
		}
	}
}

// The generic name rule runs before firstName/lastName and every first and
// last name token contains "name", so all of them are claimed by Name.
func TestClassify_NameClaimsFirstAndLastName(t *testing.T) {
	var hints []string
	hints = append(hints, DefaultPatterns[1].Patterns...)
	hints = append(hints, DefaultPatterns[2].Patterns...)
	for _, hint := range hints {
		if got := DefaultPatterns.Classify(hint, "text"); got != CategoryName {
			t.Errorf("Classify(%q) = %v, want name", hint, got)
		}
	}
}

func TestClassify_SpecificFirstWhenReordered(t *testing.T) {
	table := specificFirst()
	tests := map[string]Category{
		"firstname": CategoryFirstName,
		"fname":     CategoryFirstName,
		"surname":   CategoryLastName,
		"full_name": CategoryName,
	}
	for hint, want := range tests {
		if got := table.Classify(hint, ""); got != want {
			t.Errorf("Classify(%q) = %v, want %v", hint, got, want)
		}
	}
}

// specificFirst moves the firstName and lastName rules ahead of name.
func specificFirst() PatternTable {
	t := make(PatternTable, 0, len(DefaultPatterns))
	t = append(t, DefaultPatterns[1], DefaultPatterns[2], DefaultPatterns[0])
	return append(t, DefaultPatterns[3:]...)
}

func TestClassify_EmailTypeOverridesHint(t *testing.T) {
	for _, hint := range []string{"", "contact", "how should we reach you"} {
		if got := DefaultPatterns.Classify(hint, "email"); got != CategoryEmail {
			t.Errorf("Classify(%q, email) = %v, want email", hint, got)
		}
	}
	// Every email token classifies as email when no earlier rule claims it.
	for _, tok := range DefaultPatterns[3].Patterns {
		if got := DefaultPatterns.Classify(tok, "text"); got != CategoryEmail {
			t.Errorf("Classify(%q) = %v, want email", tok, got)
		}
	}
}

func TestClassify_EarlierRuleBeatsType(t *testing.T) {
	if got := DefaultPatterns.Classify("your_name", "email"); got != CategoryName {
		t.Errorf("Classify(your_name, email) = %v, want name", got)
	}
}

func TestHint(t *testing.T) {
	el := newInput(map[string]string{
		"name":        "Q_Email",
		"id":          "f1",
		"placeholder": "You@Example.com",
		"aria-label":  "Contact",
	})
	el.label = "Work Address"

	got := Hint(el)
	want := "q_email f1 you@example.com contact work address"
	if got != want {
		t.Errorf("Hint = %q, want %q", got, want)
	}
}

func TestClassifyElement_UsesLabel(t *testing.T) {
	el := newInput(map[string]string{"id": "field-7"})
	el.label = "LinkedIn Profile"
	if got := DefaultPatterns.ClassifyElement(el); got != CategoryLinkedIn {
		t.Errorf("ClassifyElement = %v, want linkedin", got)
	}
}

func TestLabel(t *testing.T) {
	if got := DefaultPatterns.Label(CategoryWorkAuth); got != "Visa Status" {
		t.Errorf("Label(workAuth) = %q", got)
	}
	if got := DefaultPatterns.Label(CategoryNone); got != "" {
		t.Errorf("Label(none) = %q, want empty", got)
	}
}

// --- filler ---

func TestFill_EndToEnd(t *testing.T) {
	f, _ := newTestFiller()
	name := newInput(map[string]string{"type": "text", "name": "candidate_name"})
	email := newInput(map[string]string{"type": "email", "name": "contact_email"})
	page := &fakePage{inputs: []*fakeElement{name, email}}

	res := f.Fill(page, profile.Profile{Name: "Jane Doe", Email: "jane@x.com"})

	if got := strings.Join(res.FilledFields, ","); got != "Name,Email" {
		t.Errorf("FilledFields = %v, want [Name Email]", res.FilledFields)
	}
	if res.FieldsFilledCount != 2 {
		t.Errorf("FieldsFilledCount = %d, want 2", res.FieldsFilledCount)
	}
	if name.Value() != "Jane Doe" {
		t.Errorf("name value = %q", name.Value())
	}
	if email.Value() != "jane@x.com" {
		t.Errorf("email value = %q", email.Value())
	}
}

func TestFill_ResumeUploadHighlighted(t *testing.T) {
	f, sched := newTestFiller()
	upload := newInput(map[string]string{"type": "file", "name": "resume_upload"})
	page := &fakePage{inputs: []*fakeElement{upload}}

	res := f.Fill(page, profile.Default())

	if len(res.FilledFields) != 1 || res.FilledFields[0] != ResumeLabel {
		t.Fatalf("FilledFields = %v, want [%s]", res.FilledFields, ResumeLabel)
	}
	if _, ok := upload.attrs["value"]; ok {
		t.Error("file input value must never be set")
	}
	if upload.styles["border"] != "2px solid #4caf50" {
		t.Errorf("border = %q", upload.styles["border"])
	}
	if len(upload.events) != 0 {
		t.Errorf("file input received events %v", upload.events)
	}

	sched.Flush()
	if _, ok := upload.styles["border"]; ok {
		t.Error("border should revert after the highlight delay")
	}
}

func TestFill_ResumeMatchesByID(t *testing.T) {
	f, _ := newTestFiller()
	cv := newInput(map[string]string{"type": "file", "id": "uploadCV"})
	other := newInput(map[string]string{"type": "file", "name": "cover_letter"})
	page := &fakePage{inputs: []*fakeElement{cv, other}}

	res := f.Fill(page, profile.Default())
	if res.FieldsFilledCount != 1 {
		t.Errorf("FieldsFilledCount = %d, want 1", res.FieldsFilledCount)
	}
	if _, ok := other.styles["border"]; ok {
		t.Error("non-resume file input should not be highlighted")
	}
}

func TestFill_NeverOverwrites(t *testing.T) {
	f, _ := newTestFiller()
	el := newInput(map[string]string{"name": "email", "value": "mine@me.com"})
	page := &fakePage{inputs: []*fakeElement{el}}

	res := f.Fill(page, profile.Default())

	if el.Value() != "mine@me.com" {
		t.Errorf("value = %q, want user value kept", el.Value())
	}
	if !res.Empty() {
		t.Errorf("FilledFields = %v, want none", res.FilledFields)
	}
	if len(el.events) != 0 || len(el.styles) != 0 {
		t.Errorf("untouched element got events %v styles %v", el.events, el.styles)
	}
}

func TestFill_SecondPassFillsNothing(t *testing.T) {
	f, _ := newTestFiller()
	page := &fakePage{inputs: []*fakeElement{
		newInput(map[string]string{"name": "full_name"}),
		newInput(map[string]string{"name": "phone"}),
		newInput(map[string]string{"name": "linkedin"}),
	}}

	first := f.Fill(page, profile.Default())
	if first.FieldsFilledCount != 3 {
		t.Fatalf("first pass filled %d, want 3", first.FieldsFilledCount)
	}
	values := make([]string, len(page.inputs))
	for i, in := range page.inputs {
		values[i] = in.Value()
	}

	second := f.Fill(page, profile.Profile{Name: "Other", Phone: "0", LinkedIn: "other"})
	if !second.Empty() {
		t.Errorf("second pass filled %v", second.FilledFields)
	}
	for i, in := range page.inputs {
		if in.Value() != values[i] {
			t.Errorf("input %d changed from %q to %q", i, values[i], in.Value())
		}
	}
}

func TestFill_CountMatchesFields(t *testing.T) {
	f, _ := newTestFiller()
	page := &fakePage{inputs: []*fakeElement{
		newInput(map[string]string{"name": "name"}),
		newInput(map[string]string{"name": "mail"}),
		newInput(map[string]string{"name": "tel"}),
		newInput(map[string]string{"name": "city"}),
		newInput(map[string]string{"name": "github"}),
		newInput(map[string]string{"name": "visa"}),
		newInput(map[string]string{"name": "other"}),
		newInput(map[string]string{"type": "file", "name": "cv"}),
	}}

	res := f.Fill(page, profile.Default())
	if res.FieldsFilledCount != len(res.FilledFields) {
		t.Errorf("count %d != len %d", res.FieldsFilledCount, len(res.FilledFields))
	}
	want := "Name,Email,Phone,Location,GitHub,Visa Status," + ResumeLabel
	if got := strings.Join(res.FilledFields, ","); got != want {
		t.Errorf("FilledFields = %q, want %q", got, want)
	}
}

func TestFill_ComposesProfileURLs(t *testing.T) {
	f, _ := newTestFiller()
	li := newInput(map[string]string{"name": "linkedin_url"})
	gh := newInput(map[string]string{"name": "github_profile"})
	page := &fakePage{inputs: []*fakeElement{li, gh}}

	f.Fill(page, profile.Profile{LinkedIn: "jdoe", GitHub: "jdoe-gh"})

	if li.Value() != "https://linkedin.com/in/jdoe" {
		t.Errorf("linkedin = %q", li.Value())
	}
	if gh.Value() != "https://github.com/jdoe-gh" {
		t.Errorf("github = %q", gh.Value())
	}
}

func TestFill_FirstAndLastNameValues(t *testing.T) {
	f := NewFiller(Options{Patterns: specificFirst(), Scheduler: &manualScheduler{}})
	first := newInput(map[string]string{"name": "fname"})
	last := newInput(map[string]string{"name": "surname"})
	page := &fakePage{inputs: []*fakeElement{first, last}}

	res := f.Fill(page, profile.Profile{Name: "Jane Q Doe"})

	if first.Value() != "Jane" || last.Value() != "Doe" {
		t.Errorf("first=%q last=%q", first.Value(), last.Value())
	}
	if got := strings.Join(res.FilledFields, ","); got != "First Name,Last Name" {
		t.Errorf("FilledFields = %v", res.FilledFields)
	}
}

func TestFill_VisaStatusDefault(t *testing.T) {
	f, _ := newTestFiller()
	el := newInput(map[string]string{"name": "work_permit"})
	f.Fill(&fakePage{inputs: []*fakeElement{el}}, profile.Profile{})

	if el.Value() != profile.DefaultVisaStatus {
		t.Errorf("value = %q, want %q", el.Value(), profile.DefaultVisaStatus)
	}
}

func TestFill_SkipsEmptyProfileValue(t *testing.T) {
	f, _ := newTestFiller()
	el := newInput(map[string]string{"name": "phone"})
	res := f.Fill(&fakePage{inputs: []*fakeElement{el}}, profile.Profile{Name: "Jane"})

	if el.Value() != "" || !res.Empty() {
		t.Errorf("value = %q, fields = %v; want untouched", el.Value(), res.FilledFields)
	}
}

func TestFill_CandidateTypes(t *testing.T) {
	f, _ := newTestFiller()
	page := &fakePage{inputs: []*fakeElement{
		newInput(map[string]string{"type": "hidden", "name": "email"}),
		newInput(map[string]string{"type": "checkbox", "name": "email_opt_in"}),
		newInput(map[string]string{"type": "password", "name": "email_password"}),
		newInput(map[string]string{"type": "TEXT", "name": "email"}),
		newInput(map[string]string{"type": "tel", "name": "x"}),
	}}

	res := f.Fill(page, profile.Default())

	for _, in := range page.inputs[:3] {
		if in.Value() != "" {
			t.Errorf("%s input was filled", in.attrs["type"])
		}
	}
	if got := strings.Join(res.FilledFields, ","); got != "Email,Phone" {
		t.Errorf("FilledFields = %v, want [Email Phone]", res.FilledFields)
	}
}

func TestFill_DispatchesEventsAndHighlights(t *testing.T) {
	f, sched := newTestFiller()
	el := newInput(map[string]string{"name": "email"})
	page := &fakePage{inputs: []*fakeElement{el}}

	f.Fill(page, profile.Default())

	if got := strings.Join(el.events, ","); got != "input,change,blur" {
		t.Errorf("events = %q, want input,change,blur", got)
	}
	if el.styles["background-color"] != "#e8f5e9" {
		t.Errorf("background = %q", el.styles["background-color"])
	}

	ran := sched.Flush()
	if _, ok := el.styles["background-color"]; ok {
		t.Error("highlight should revert")
	}
	if len(ran) == 0 || ran[0] != DefaultHighlight {
		t.Errorf("first scheduled delay = %v, want %v", ran, DefaultHighlight)
	}
}

func TestFill_NotificationLifecycle(t *testing.T) {
	f, sched := newTestFiller()
	page := &fakePage{}

	res := f.Fill(page, profile.Default())
	if !res.Empty() {
		t.Fatalf("unexpected fields %v", res.FilledFields)
	}
	if len(page.notices) != 1 {
		t.Fatalf("notices = %d, want 1", len(page.notices))
	}
	n := page.notices[0]
	if n.message != "⚠️ No matching fields found on this page" {
		t.Errorf("message = %q", n.message)
	}
	if n.removed {
		t.Error("notice removed before its timer fired")
	}

	ran := sched.Flush()
	if !n.removed {
		t.Error("notice should be removed after fade-out")
	}
	if n.styles["animation"] != "slideOut 0.3s ease-out" {
		t.Errorf("animation = %q", n.styles["animation"])
	}
	if len(ran) != 2 || ran[0] != DefaultNotify || ran[1] != 300*time.Millisecond {
		t.Errorf("scheduled delays = %v", ran)
	}
}

func TestFill_ResultIndependentOfTimers(t *testing.T) {
	f, _ := newTestFiller()
	el := newInput(map[string]string{"name": "email"})
	page := &fakePage{inputs: []*fakeElement{el}}

	res := f.Fill(page, profile.Default())
	if res.FieldsFilledCount != 1 || el.Value() == "" {
		t.Errorf("fill should complete without any timer firing: %+v", res)
	}
	if page.notices[0].message != "✅ Filled 1 fields!" {
		t.Errorf("message = %q", page.notices[0].message)
	}
}

func TestNewFiller_Defaults(t *testing.T) {
	f := NewFiller(Options{})
	if f.highlight != DefaultHighlight || f.resumeHighlight != DefaultResumeHighlight || f.notify != DefaultNotify {
		t.Errorf("durations = %v %v %v", f.highlight, f.resumeHighlight, f.notify)
	}
	if _, ok := f.sched.(TimerScheduler); !ok {
		t.Errorf("scheduler = %T, want TimerScheduler", f.sched)
	}
}
